package session

import (
	"context"
	"fmt"
	"time"

	errx "github.com/petaldesk/engine/internal/core/error"
	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// Manager is the Store the orchestrator talks to. It prefers the primary
// backend (Redis) and degrades to the in-memory one when the primary is
// unreachable, so session trouble never fails a turn on its own.
type Manager struct {
	primary  Backend // nil when running without Redis
	backup   Backend
	maxTurns int
	locks    *keyedLocks
	now      func() time.Time
}

// NewManager wires the degradation chain. backup must not be nil.
func NewManager(cfg model.SessionConfig, primary, backup Backend) *Manager {
	return &Manager{
		primary:  primary,
		backup:   backup,
		maxTurns: cfg.MaxTurns,
		locks:    newKeyedLocks(),
		now:      time.Now,
	}
}

func (m *Manager) Load(ctx context.Context, id string) (*model.Session, error) {
	if m.primary != nil {
		s, err := m.primary.Load(ctx, id)
		if err == nil && s != nil {
			return s, nil
		}
		if err != nil {
			logx.Warn().Err(err).Str("sessionID", id).Msg("primary session store unavailable, trying memory")
		}
	}
	// a session written during an earlier outage may live only in memory
	s, err := m.backup.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	return model.NewSession(id), nil
}

// CommitTurn is the single write of a turn. Serialized per session so
// concurrent turns on the same ID never interleave their appends.
func (m *Manager) CommitTurn(ctx context.Context, s *model.Session, user, agent model.Turn) error {
	m.locks.lock(s.ID)
	defer m.locks.unlock(s.ID)

	s.Turns = append(s.Turns, user, agent)
	s.Touch(m.now().UTC())
	s.Compact(m.maxTurns)

	if m.primary != nil {
		err := m.primary.Append(ctx, s, user, agent)
		if err == nil {
			return nil
		}
		logx.Warn().Err(err).Str("sessionID", s.ID).Msg("primary session store write failed, degrading to memory")
	}
	if err := m.backup.Append(ctx, s, user, agent); err != nil {
		return fmt.Errorf("%w: %v", errx.ErrStoreUnavailable, err)
	}
	return nil
}

func (m *Manager) Clear(ctx context.Context, id string) error {
	m.locks.lock(id)
	defer m.locks.unlock(id)

	var firstErr error
	if m.primary != nil {
		firstErr = m.primary.Clear(ctx, id)
	}
	if err := m.backup.Clear(ctx, id); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ Store = (*Manager)(nil)
