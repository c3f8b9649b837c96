package core

import (
	"testing"

	"github.com/chatify/chatify-server/internal/store"
)

func TestHubBroadcastsPresenceOnFirstAttach(t *testing.T) {
	hub := NewHub(testLogger())

	alice := NewSession(1)
	hub.Attach(alice)

	ev := mustEvent(t, alice, EventOnlineUsers)
	if len(ev.OnlineUserIDs) != 1 || ev.OnlineUserIDs[0] != 1 {
		t.Fatalf("unexpected online set: %v", ev.OnlineUserIDs)
	}

	bob := NewSession(2)
	hub.Attach(bob)

	// Both sessions see the updated set, the new one included.
	for _, s := range []*Session{alice, bob} {
		ev := mustEvent(t, s, EventOnlineUsers)
		if len(ev.OnlineUserIDs) != 2 {
			t.Fatalf("expected 2 online users, got %v", ev.OnlineUserIDs)
		}
	}
}

func TestHubSecondSessionDoesNotBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	first := NewSession(1)
	hub.Attach(first)
	drain(first)

	second := NewSession(1)
	hub.Attach(second)

	mustNoEvent(t, first, EventOnlineUsers)
	mustNoEvent(t, second, EventOnlineUsers)
}

func TestHubDetachLastSessionBroadcastsOffline(t *testing.T) {
	hub := NewHub(testLogger())

	alice := NewSession(1)
	bob := NewSession(2)
	hub.Attach(alice)
	hub.Attach(bob)
	drain(alice)

	hub.Detach(bob)

	ev := mustEvent(t, alice, EventOnlineUsers)
	if len(ev.OnlineUserIDs) != 1 || ev.OnlineUserIDs[0] != 1 {
		t.Fatalf("expected only user 1 online, got %v", ev.OnlineUserIDs)
	}
}

func TestHubDoubleDetachBroadcastsOnce(t *testing.T) {
	hub := NewHub(testLogger())

	alice := NewSession(1)
	observer := NewSession(2)
	hub.Attach(alice)
	hub.Attach(observer)
	drain(observer)

	// Explicit logout and transport close can both end up here.
	hub.Detach(alice)
	hub.Detach(alice)

	mustEvent(t, observer, EventOnlineUsers)
	mustNoEvent(t, observer, EventOnlineUsers)
}

func TestHubRouterSkipsClosedSessions(t *testing.T) {
	hub := NewHub(testLogger())

	receiverA := NewSession(2)
	receiverB := NewSession(2)
	hub.Attach(receiverA)
	hub.Attach(receiverB)

	receiverB.Close()

	msg := &store.Message{ID: 10, SenderID: 1, ReceiverID: 2, Text: "hi"}
	hub.Router().RouteMessage(msg)

	ev := mustEvent(t, receiverA, EventNewMessage)
	if ev.Message.ID != 10 {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
}
