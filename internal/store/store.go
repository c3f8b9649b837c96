package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents an account in the system.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	IsVerified   bool
	OTP          string
	OTPExpiresAt *time.Time
	ResetOTP     string
	ResetExpires *time.Time
	CreatedAt    time.Time
}

// Message represents a persisted direct message between two users.
// The realtime layer treats it as an opaque payload to route.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Text       string
	ImageURL   string
	CreatedAt  time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new unverified user with a pending OTP.
	CreateUser(ctx context.Context, fullName, email, passwordHash, otp string, otpExpires time.Time) (*User, error)

	// OverwritePendingUser replaces name, password and OTP on an account
	// that was created but never verified (re-signup).
	OverwritePendingUser(ctx context.Context, id int64, fullName, passwordHash, otp string, otpExpires time.Time) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// SetOTP stores a fresh verification OTP for an unverified user.
	SetOTP(ctx context.Context, id int64, otp string, expires time.Time) error

	// MarkVerified marks the account verified and clears the OTP.
	MarkVerified(ctx context.Context, id int64) error

	// SetResetOTP stores a password-reset OTP.
	SetResetOTP(ctx context.Context, id int64, otp string, expires time.Time) error

	// ResetPassword replaces the password hash and clears the reset OTP.
	ResetPassword(ctx context.Context, id int64, passwordHash string) error

	// UpdateProfilePic updates the profile picture URL and returns the user.
	UpdateProfilePic(ctx context.Context, id int64, url string) (*User, error)

	// ListUsers lists all verified users except the given one.
	ListUsers(ctx context.Context, excludeID int64) ([]*User, error)
}

// MessageStore handles message persistence. This is the durable log the
// realtime push degrades to when a receiver is offline.
type MessageStore interface {
	// SaveMessage persists a message and fills in ID and CreatedAt.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListConversation returns all messages exchanged between two users,
	// oldest first.
	ListConversation(ctx context.Context, userA, userB int64) ([]*Message, error)

	// ListChatPartnerIDs returns the distinct users the given user has
	// exchanged messages with.
	ListChatPartnerIDs(ctx context.Context, userID int64) ([]int64, error)

	// DeleteMessages deletes the given messages, restricted to those sent
	// by senderID, and returns the deleted rows.
	DeleteMessages(ctx context.Context, ids []int64, senderID int64) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
