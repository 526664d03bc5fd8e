package session

import (
	"context"

	"github.com/petaldesk/engine/internal/engine/model"
)

// Store is what the orchestrator sees: load state at the start of a turn,
// commit the turn pair exactly once at the end.
type Store interface {
	// Load returns the session for id, or a fresh one when none exists.
	// The returned session is the caller's copy.
	Load(ctx context.Context, id string) (*model.Session, error)
	// CommitTurn appends the user/agent pair, refreshes activity and
	// compacts, then persists. It is the single write of a turn.
	CommitTurn(ctx context.Context, s *model.Session, user, agent model.Turn) error
	// Clear drops all state for id.
	Clear(ctx context.Context, id string) error
}

// Backend is the persistence primitive behind a Store. Load returns
// (nil, nil) when the session is unknown.
type Backend interface {
	Load(ctx context.Context, id string) (*model.Session, error)
	// Append persists the new turns plus the session's current metadata.
	// The session already contains the turns.
	Append(ctx context.Context, s *model.Session, turns ...model.Turn) error
	Clear(ctx context.Context, id string) error
}
