package core

import (
	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/store"
)

// Router pushes persisted events to the receiver's live sessions. Callers
// must only invoke it after the store write succeeded: the store is the
// delivery mechanism of record, the push is a latency optimization.
type Router struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewRouter builds a router over the registry.
func NewRouter(registry *Registry, logger *zerolog.Logger) *Router {
	return &Router{registry: registry, log: logger}
}

// RouteMessage pushes a persisted message to every live session of the
// receiver. The sender is never routed their own message; they already have
// it from the response to the send request. An offline receiver is not an
// error, they will see the message on the next history fetch.
func (r *Router) RouteMessage(msg *store.Message) {
	sessions := r.registry.Lookup(msg.ReceiverID)
	if len(sessions) == 0 {
		return
	}

	ev := &Event{Kind: EventNewMessage, Message: msg}
	for _, s := range sessions {
		if err := s.Send(ev); err != nil {
			r.log.Debug().Err(err).
				Str("session_id", s.ID).
				Int64("receiver_id", msg.ReceiverID).
				Int64("message_id", msg.ID).
				Msg("skipped message push")
		}
	}
}

// RouteDeletion pushes a deletion event to every live session of each
// affected counterparty.
func (r *Router) RouteDeletion(actorID int64, messageIDs []int64, counterparties []int64) {
	if len(messageIDs) == 0 {
		return
	}

	ev := &Event{
		Kind:              EventMessagesDeleted,
		DeletedMessageIDs: messageIDs,
		DeletedBy:         actorID,
	}
	for _, userID := range counterparties {
		for _, s := range r.registry.Lookup(userID) {
			if err := s.Send(ev); err != nil {
				r.log.Debug().Err(err).
					Str("session_id", s.ID).
					Int64("user_id", userID).
					Msg("skipped deletion push")
			}
		}
	}
}

// BroadcastUserUpdated pushes a profile change to every connected session.
// This is deliberately a one-to-all primitive, distinct from the targeted
// per-user routing above.
func (r *Router) BroadcastUserUpdated(profile *store.User) {
	ev := &Event{Kind: EventUserUpdated, Profile: profile}
	for _, s := range r.registry.AllSessions() {
		if err := s.Send(ev); err != nil {
			r.log.Debug().Err(err).
				Str("session_id", s.ID).
				Msg("skipped profile push")
		}
	}
}
