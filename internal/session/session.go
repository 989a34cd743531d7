// Package session tracks conversational state across turns: which contexts
// are active for each session and for how many more turns. Connectors with a
// server-side context concept keep this state on the service; for the others
// (and for webhook-style deployments) sessions are persisted locally, either
// in memory or in SQLite.
package session

import (
	"context"
	"sort"
	"time"

	"github.com/parlancehq/parlance/internal/connector"
)

// Session is the per-conversation context state. Sessions are value-like:
// storages return a private copy and callers persist changes explicitly.
type Session struct {
	ID        string
	Contexts  []connector.ActiveContext
	UpdatedAt time.Time
}

// ContextNames returns the names of the active contexts, sorted.
func (s *Session) ContextNames() []string {
	names := make([]string, 0, len(s.Contexts))
	for _, ctx := range s.Contexts {
		names = append(names, ctx.Name)
	}
	sort.Strings(names)
	return names
}

// Apply merges the output contexts of a prediction into the session. A
// reported context replaces its previous lifespan; a zero or negative
// lifespan deactivates it.
func (s *Session) Apply(contexts []connector.ActiveContext) {
	for _, update := range contexts {
		s.set(update)
	}
}

// Advance ends a conversational turn: every context loses one turn of
// lifespan and expired contexts drop out.
func (s *Session) Advance() {
	kept := s.Contexts[:0]
	for _, ctx := range s.Contexts {
		ctx.Lifespan--
		if ctx.Lifespan > 0 {
			kept = append(kept, ctx)
		}
	}
	s.Contexts = kept
}

func (s *Session) set(update connector.ActiveContext) {
	if update.Lifespan <= 0 {
		for i, ctx := range s.Contexts {
			if ctx.Name == update.Name {
				s.Contexts = append(s.Contexts[:i], s.Contexts[i+1:]...)
				return
			}
		}
		return
	}
	for i, ctx := range s.Contexts {
		if ctx.Name == update.Name {
			s.Contexts[i].Lifespan = update.Lifespan
			return
		}
	}
	s.Contexts = append(s.Contexts, update)
}

// Storage persists sessions. Load returns a fresh empty session for unknown
// IDs, so callers never special-case the first turn.
type Storage interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
