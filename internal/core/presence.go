package core

import "github.com/rs/zerolog"

// Presence broadcasts the online set to every live session whenever
// membership changes. Each transition broadcasts immediately; there is no
// debounce, so rapid connect/disconnect churn produces one broadcast per
// transition.
type Presence struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewPresence builds a presence tracker over the registry.
func NewPresence(registry *Registry, logger *zerolog.Logger) *Presence {
	return &Presence{registry: registry, log: logger}
}

// BroadcastOnlineUsers pushes the full current online set to all sessions,
// including any newly connected one. Delivery is best-effort: a failed push
// to one session is logged and skipped.
func (p *Presence) BroadcastOnlineUsers() {
	ev := &Event{
		Kind:          EventOnlineUsers,
		OnlineUserIDs: p.registry.OnlineUsers(),
	}
	for _, s := range p.registry.AllSessions() {
		if err := s.Send(ev); err != nil {
			p.log.Debug().Err(err).
				Str("session_id", s.ID).
				Int64("user_id", s.UserID).
				Msg("skipped presence push")
		}
	}
}
