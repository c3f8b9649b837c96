package core

import "github.com/rs/zerolog"

// Hub owns the registry and the two push primitives built on it. It is
// constructed once per server process; the websocket transport drives the
// session lifecycle through it and the messaging service routes through it.
type Hub struct {
	registry *Registry
	presence *Presence
	router   *Router
	log      *zerolog.Logger
}

// NewHub constructs the hub with a fresh registry.
func NewHub(logger *zerolog.Logger) *Hub {
	registry := NewRegistry()
	return &Hub{
		registry: registry,
		presence: NewPresence(registry, logger),
		router:   NewRouter(registry, logger),
		log:      logger,
	}
}

// Attach registers an authenticated session. If this brings the user
// online, the new online set is broadcast to everyone, the new session
// included.
func (h *Hub) Attach(s *Session) {
	if h.registry.Register(s) {
		h.log.Info().Int64("user_id", s.UserID).Str("session_id", s.ID).Msg("user online")
		h.presence.BroadcastOnlineUsers()
		return
	}
	h.log.Debug().Int64("user_id", s.UserID).Str("session_id", s.ID).Msg("additional session attached")
}

// Detach closes and deregisters a session. Safe to call more than once for
// the same session. If the user went fully offline, the updated online set
// is broadcast to the remaining sessions.
func (h *Hub) Detach(s *Session) {
	s.Close()
	if h.registry.Deregister(s) {
		h.log.Info().Int64("user_id", s.UserID).Str("session_id", s.ID).Msg("user offline")
		h.presence.BroadcastOnlineUsers()
		return
	}
}

// Router exposes the routing primitives for post-persist pushes.
func (h *Hub) Router() *Router {
	return h.router
}

// Registry exposes read access for presence queries.
func (h *Hub) Registry() *Registry {
	return h.registry
}
