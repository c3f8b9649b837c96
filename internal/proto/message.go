package proto

import "encoding/json"

const (
	ProtocolVersion = 1

	// InboundTypeHello is the authentication handshake. It must be the
	// first frame on a new connection.
	InboundTypeHello = "hello"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	// Server-pushed event names.
	EventOnlineUsersChanged = "online-users-changed"
	EventNewMessage         = "new-message"
	EventMessagesDeleted    = "messages-deleted"
	EventUserProfileUpdated = "user-profile-updated"
)

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HelloData carries the session credential presented at connect time.
type HelloData struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Protocol int    `json:"protocol,omitempty"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessagePayload is a routed message as seen on the wire.
type MessagePayload struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Text       string `json:"text,omitempty"`
	Image      string `json:"image,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// MessagesDeletedPayload notifies a counterparty about removed messages.
type MessagesDeletedPayload struct {
	MessageIDs []int64 `json:"message_ids"`
	DeletedBy  int64   `json:"deleted_by"`
}

// UserPayload is a user profile as seen on the wire.
type UserPayload struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
