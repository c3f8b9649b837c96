package core

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionClosed is returned when pushing to a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrSlowConsumer is returned when the session's event buffer is full.
	ErrSlowConsumer = errors.New("slow consumer")
)

const sessionBuffer = 16

// Session is one live realtime connection bound to exactly one user. It is
// constructed only after the handshake token has been validated, so a
// Session always carries an authenticated UserID.
type Session struct {
	ID          string
	UserID      int64
	ConnectedAt time.Time

	events chan *Event
	done   chan struct{}
	once   sync.Once
}

// NewSession creates a session handle for an authenticated user.
func NewSession(userID int64) *Session {
	return &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		ConnectedAt: time.Now(),
		events:      make(chan *Event, sessionBuffer),
		done:        make(chan struct{}),
	}
}

// Send queues an event for delivery. It never blocks: a closed session or a
// full buffer returns an error the caller logs and skips.
func (s *Session) Send(ev *Event) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSlowConsumer
	}
}

// Events returns the outbound event stream consumed by the transport.
func (s *Session) Events() <-chan *Event {
	return s.events
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close marks the session closed. Safe to call more than once; an explicit
// logout and a later transport close may both land here.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}
