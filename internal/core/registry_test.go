package core

import (
	"sync"
	"testing"
)

func TestRegistryOnlineTransitions(t *testing.T) {
	reg := NewRegistry()

	first := NewSession(1)
	second := NewSession(1)

	if reg.IsOnline(1) {
		t.Fatalf("user should start offline")
	}

	if !reg.Register(first) {
		t.Fatalf("first session should bring the user online")
	}
	if reg.Register(second) {
		t.Fatalf("second session must not report a fresh online transition")
	}
	if !reg.IsOnline(1) {
		t.Fatalf("user should be online with two sessions")
	}
	if got := len(reg.Lookup(1)); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}

	if reg.Deregister(first) {
		t.Fatalf("removing one of two sessions must not report offline")
	}
	if !reg.IsOnline(1) {
		t.Fatalf("user should stay online with one session left")
	}
	if !reg.Deregister(second) {
		t.Fatalf("removing the last session should report offline")
	}
	if reg.IsOnline(1) {
		t.Fatalf("user should be offline")
	}
	if got := len(reg.Lookup(1)); got != 0 {
		t.Fatalf("expected no sessions, got %d", got)
	}
}

func TestRegistryDuplicateRegisterIsNoop(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(7)

	if !reg.Register(s) {
		t.Fatalf("expected online transition")
	}
	if reg.Register(s) {
		t.Fatalf("duplicate register must be a no-op")
	}
	if got := len(reg.Lookup(7)); got != 1 {
		t.Fatalf("expected 1 session after duplicate register, got %d", got)
	}
}

func TestRegistryDeregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(7)

	// Deregistering something never registered must not panic or transition.
	if reg.Deregister(s) {
		t.Fatalf("unknown session must not report offline")
	}

	reg.Register(s)
	if !reg.Deregister(s) {
		t.Fatalf("expected offline transition")
	}
	if reg.Deregister(s) {
		t.Fatalf("second deregister must be a no-op")
	}
}

func TestRegistryOnlineUsersSorted(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []int64{42, 3, 17} {
		reg.Register(NewSession(id))
	}

	users := reg.OnlineUsers()
	if len(users) != 3 {
		t.Fatalf("expected 3 online users, got %d", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i-1] >= users[i] {
			t.Fatalf("online set not sorted: %v", users)
		}
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := NewSession(userID)
				reg.Register(s)
				reg.Lookup(userID)
				reg.OnlineUsers()
				reg.Deregister(s)
			}
		}(int64(i % 4))
	}
	wg.Wait()

	if got := len(reg.OnlineUsers()); got != 0 {
		t.Fatalf("expected empty registry after churn, got %d users", got)
	}
}
