package core

import "github.com/chatify/chatify-server/internal/store"

// EventKind is a notification the core pushes to live sessions.
type EventKind int

const (
	// EventOnlineUsers carries the full set of currently online users.
	// Sent to every session whenever a user goes online or fully offline.
	EventOnlineUsers EventKind = iota
	// EventNewMessage delivers a persisted message to the receiver.
	EventNewMessage
	// EventMessagesDeleted notifies a counterparty that messages were removed.
	EventMessagesDeleted
	// EventUserUpdated notifies about a profile change.
	EventUserUpdated
)

// Event is the payload pushed to a session. Exactly one of the payload
// fields is set, matching Kind.
type Event struct {
	Kind EventKind

	// OnlineUserIDs is the full online set for EventOnlineUsers. Each
	// broadcast carries the complete snapshot, so out-of-order delivery
	// across sessions is self-correcting.
	OnlineUserIDs []int64

	// Message is the routed payload for EventNewMessage. The core never
	// mutates it.
	Message *store.Message

	// DeletedMessageIDs and DeletedBy describe EventMessagesDeleted.
	DeletedMessageIDs []int64
	DeletedBy         int64

	// Profile is the updated user record for EventUserUpdated.
	Profile *store.User
}
