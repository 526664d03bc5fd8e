package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/petaldesk/engine/internal/core/error"
	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// RedisBackend keeps each session as two keys: an append-only turn list and
// a metadata blob. Both carry the session TTL, refreshed on every write.
type RedisBackend struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	maxTurns int
}

func NewRedisBackend(rdb redis.Cmdable, ttl time.Duration, maxTurns int) *RedisBackend {
	return &RedisBackend{rdb: rdb, ttl: ttl, maxTurns: maxTurns}
}

func (r *RedisBackend) turnsKey(id string) string { return fmt.Sprintf("session:%s:turns", id) }
func (r *RedisBackend) metaKey(id string) string  { return fmt.Sprintf("session:%s:meta", id) }

// sessionMeta is everything besides the turn list.
type sessionMeta struct {
	CreatedAt      time.Time           `json:"created_at"`
	LastActiveAt   time.Time           `json:"last_active_at"`
	Preferences    model.Preferences   `json:"preferences"`
	PendingIntent  *model.SearchIntent `json:"pending_intent,omitempty"`
	CompactedTurns int                 `json:"compacted_turns,omitempty"`
}

func (r *RedisBackend) Load(ctx context.Context, id string) (*model.Session, error) {
	metaRaw, err := r.rdb.Get(ctx, r.metaKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("sessionID", id).Msg("failed to load session meta from redis")
		return nil, fmt.Errorf("%w: %w", errx.ErrStoreUnavailable, errx.WrapRedis(err))
	}
	var meta sessionMeta
	if err := json.Unmarshal([]byte(metaRaw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}

	rows, err := r.rdb.LRange(ctx, r.turnsKey(id), 0, -1).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("sessionID", id).Msg("failed to load session turns from redis")
		return nil, fmt.Errorf("%w: %w", errx.ErrStoreUnavailable, errx.WrapRedis(err))
	}
	turns := make([]model.Turn, 0, len(rows))
	for i, row := range rows {
		var t model.Turn
		if err := json.Unmarshal([]byte(row), &t); err != nil {
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}

	return &model.Session{
		ID:             id,
		CreatedAt:      meta.CreatedAt,
		LastActiveAt:   meta.LastActiveAt,
		Turns:          turns,
		Preferences:    meta.Preferences,
		PendingIntent:  meta.PendingIntent,
		CompactedTurns: meta.CompactedTurns,
	}, nil
}

func (r *RedisBackend) Append(ctx context.Context, s *model.Session, turns ...model.Turn) error {
	key := r.turnsKey(s.ID)

	payloads := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		payloads = append(payloads, b)
	}
	metaBlob, err := json.Marshal(sessionMeta{
		CreatedAt:      s.CreatedAt,
		LastActiveAt:   s.LastActiveAt,
		Preferences:    s.Preferences,
		PendingIntent:  s.PendingIntent,
		CompactedTurns: s.CompactedTurns,
	})
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	if len(payloads) > 0 {
		pipe.RPush(ctx, key, payloads...)
	}
	if r.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
	}
	pipe.Set(ctx, r.metaKey(s.ID), metaBlob, r.ttl)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("sessionID", s.ID).Msg("failed to persist session to redis")
		return fmt.Errorf("%w: %w", errx.ErrStoreUnavailable, errx.WrapRedis(err))
	}
	return nil
}

func (r *RedisBackend) Clear(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, r.turnsKey(id), r.metaKey(id)).Err(); err != nil {
		logx.Error().Err(err).Str("sessionID", id).Msg("failed to clear session in redis")
		return fmt.Errorf("%w: %w", errx.ErrStoreUnavailable, errx.WrapRedis(err))
	}
	return nil
}

var _ Backend = (*RedisBackend)(nil)
