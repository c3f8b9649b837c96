package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/core"
	"github.com/chatify/chatify-server/internal/media"
	"github.com/chatify/chatify-server/internal/store"
)

// Common errors for messaging operations.
var (
	ErrEmptyMessage     = errors.New("text or image is required")
	ErrSelfMessage      = errors.New("cannot send messages to yourself")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrNothingDeleted   = errors.New("no messages found or not the sender")
	ErrInvalidImage     = errors.New("invalid image payload")
)

// Service provides direct-messaging business logic. Every mutating
// operation persists first and routes second: the realtime push is a
// best-effort optimization on top of the durable store.
type Service struct {
	store  store.Store
	media  media.Store
	router *core.Router
	log    *zerolog.Logger
}

// New creates a messaging service.
func New(st store.Store, mediaStore media.Store, router *core.Router, logger *zerolog.Logger) *Service {
	return &Service{
		store:  st,
		media:  mediaStore,
		router: router,
		log:    logger,
	}
}

// Contacts returns every other registered user.
func (s *Service) Contacts(ctx context.Context, userID int64) ([]*store.User, error) {
	return s.store.ListUsers(ctx, userID)
}

// ChatPartners returns the users the given user has exchanged messages with.
func (s *Service) ChatPartners(ctx context.Context, userID int64) ([]*store.User, error) {
	ids, err := s.store.ListChatPartnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat partners: %w", err)
	}

	partners := make([]*store.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load partner %d: %w", id, err)
		}
		partners = append(partners, user)
	}
	return partners, nil
}

// Conversation returns the message history between two users, oldest first.
func (s *Service) Conversation(ctx context.Context, userID, otherID int64) ([]*store.Message, error) {
	return s.store.ListConversation(ctx, userID, otherID)
}

// Send validates, persists and then routes a direct message. If persistence
// fails the router is never invoked and the error surfaces to the caller;
// there is no realtime delivery of unpersisted data.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, text, image string) (*store.Message, error) {
	if text == "" && image == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}
	if _, err := s.store.GetUserByID(ctx, receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("lookup receiver: %w", err)
	}

	var imageURL string
	if image != "" {
		url, err := s.media.Save(ctx, image)
		if err != nil {
			if errors.Is(err, media.ErrInvalidImage) {
				return nil, ErrInvalidImage
			}
			return nil, fmt.Errorf("save image: %w", err)
		}
		imageURL = url
	}

	msg := &store.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	s.router.RouteMessage(msg)
	return msg, nil
}

// Delete removes messages sent by userID and notifies the affected
// counterparties over their live sessions.
func (s *Service) Delete(ctx context.Context, userID int64, messageIDs []int64) (int, error) {
	deleted, err := s.store.DeleteMessages(ctx, messageIDs, userID)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	if len(deleted) == 0 {
		return 0, ErrNothingDeleted
	}

	ids := make([]int64, 0, len(deleted))
	seen := make(map[int64]struct{})
	counterparties := make([]int64, 0, 1)
	for _, msg := range deleted {
		ids = append(ids, msg.ID)
		if _, ok := seen[msg.ReceiverID]; !ok {
			seen[msg.ReceiverID] = struct{}{}
			counterparties = append(counterparties, msg.ReceiverID)
		}
	}

	s.router.RouteDeletion(userID, ids, counterparties)
	return len(deleted), nil
}
