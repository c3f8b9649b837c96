package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chatify/chatify-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createVerifiedUser(t *testing.T, st *SQLiteStore, name, email string) *store.User {
	t.Helper()
	ctx := context.Background()
	user, err := st.CreateUser(ctx, name, email, "hash", "123456", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := st.MarkVerified(ctx, user.ID); err != nil {
		t.Fatalf("failed to verify user: %v", err)
	}
	user, err = st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return user
}

func sendMessage(t *testing.T, st *SQLiteStore, from, to int64, text string) *store.Message {
	t.Helper()
	msg := &store.Message{SenderID: from, ReceiverID: to, Text: text}
	if err := st.SaveMessage(context.Background(), msg); err != nil {
		t.Fatalf("failed to save message: %v", err)
	}
	return msg
}

func TestUserLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "Alice", "alice@example.com", "hash", "123456", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned user ID")
	}
	if user.IsVerified {
		t.Fatalf("new user must be unverified")
	}
	if user.OTP != "123456" || user.OTPExpiresAt == nil {
		t.Fatalf("expected pending OTP, got %q", user.OTP)
	}

	if _, err := st.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := st.MarkVerified(ctx, user.ID); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}
	user, err = st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !user.IsVerified {
		t.Fatalf("expected verified user")
	}
	if user.OTP != "" || user.OTPExpiresAt != nil {
		t.Fatalf("verification must clear the OTP, got %q", user.OTP)
	}
}

func TestResetPassword_ClearsResetOTP(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createVerifiedUser(t, st, "Alice", "alice@example.com")

	if err := st.SetResetOTP(ctx, user.ID, "654321", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("set reset otp failed: %v", err)
	}
	if err := st.ResetPassword(ctx, user.ID, "newhash"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	user, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if user.PasswordHash != "newhash" {
		t.Fatalf("expected new password hash, got %q", user.PasswordHash)
	}
	if user.ResetOTP != "" || user.ResetExpires != nil {
		t.Fatalf("reset must clear the reset OTP, got %q", user.ResetOTP)
	}
}

func TestListUsers_OnlyVerifiedExcludingSelf(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createVerifiedUser(t, st, "Alice", "alice@example.com")
	bob := createVerifiedUser(t, st, "Bob", "bob@example.com")
	if _, err := st.CreateUser(ctx, "Pending", "pending@example.com", "hash", "123456", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("create pending user failed: %v", err)
	}

	users, err := st.ListUsers(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != bob.ID {
		t.Fatalf("expected only bob, got %d users", len(users))
	}
}

func TestListConversation_BothDirectionsOrdered(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createVerifiedUser(t, st, "Alice", "alice@example.com")
	bob := createVerifiedUser(t, st, "Bob", "bob@example.com")
	carol := createVerifiedUser(t, st, "Carol", "carol@example.com")

	m1 := sendMessage(t, st, alice.ID, bob.ID, "hi bob")
	m2 := sendMessage(t, st, bob.ID, alice.ID, "hi alice")
	m3 := sendMessage(t, st, alice.ID, bob.ID, "how are you")
	sendMessage(t, st, alice.ID, carol.ID, "unrelated")

	msgs, err := st.ListConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list conversation failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []int64{m1.ID, m2.ID, m3.ID} {
		if msgs[i].ID != want {
			t.Fatalf("message %d: expected id %d, got %d", i, want, msgs[i].ID)
		}
	}

	// Argument order must not matter.
	reversed, err := st.ListConversation(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("list conversation failed: %v", err)
	}
	if len(reversed) != 3 || reversed[0].ID != m1.ID {
		t.Fatalf("expected same conversation regardless of argument order")
	}
}

func TestSaveMessage_FillsIDAndTimestamp(t *testing.T) {
	st := newTestStore(t)

	alice := createVerifiedUser(t, st, "Alice", "alice@example.com")
	bob := createVerifiedUser(t, st, "Bob", "bob@example.com")

	msg := sendMessage(t, st, alice.ID, bob.ID, "hello")
	if msg.ID == 0 {
		t.Fatalf("expected assigned message ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatalf("expected assigned timestamp")
	}
}

func TestListChatPartnerIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createVerifiedUser(t, st, "Alice", "alice@example.com")
	bob := createVerifiedUser(t, st, "Bob", "bob@example.com")
	carol := createVerifiedUser(t, st, "Carol", "carol@example.com")
	createVerifiedUser(t, st, "Dave", "dave@example.com")

	sendMessage(t, st, alice.ID, bob.ID, "one")
	sendMessage(t, st, bob.ID, alice.ID, "two")
	sendMessage(t, st, carol.ID, alice.ID, "three")

	ids, err := st.ListChatPartnerIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list chat partners failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 partners, got %v", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[bob.ID] || !seen[carol.ID] {
		t.Fatalf("expected bob and carol, got %v", ids)
	}
}

func TestDeleteMessages_SenderScoped(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createVerifiedUser(t, st, "Alice", "alice@example.com")
	bob := createVerifiedUser(t, st, "Bob", "bob@example.com")

	mine := sendMessage(t, st, alice.ID, bob.ID, "mine")
	theirs := sendMessage(t, st, bob.ID, alice.ID, "theirs")

	// Alice may only delete her own messages.
	deleted, err := st.DeleteMessages(ctx, []int64{mine.ID, theirs.ID}, alice.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != mine.ID {
		t.Fatalf("expected only alice's message deleted, got %v", deleted)
	}
	if deleted[0].ReceiverID != bob.ID {
		t.Fatalf("deleted rows must carry the counterparty")
	}

	msgs, err := st.ListConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list conversation failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != theirs.ID {
		t.Fatalf("bob's message must survive, got %v", msgs)
	}

	// Deleting nothing is not an error.
	deleted, err = st.DeleteMessages(ctx, nil, alice.ID)
	if err != nil || len(deleted) != 0 {
		t.Fatalf("expected empty no-op delete, got %v, %v", deleted, err)
	}
}
