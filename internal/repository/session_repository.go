package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/persistence"
)

// ErrSessionNotFound is returned when no record exists for a session id.
var ErrSessionNotFound = errors.New("repository: session not found")

// SessionRepository persists console session records.
type SessionRepository interface {
	Save(ctx context.Context, record *domain.SessionRecord, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	redis *persistence.Redis
}

// NewSessionRepository returns a Redis-backed implementation.
func NewSessionRepository(r *persistence.Redis) SessionRepository {
	return &sessionRepository{redis: r}
}

func (r *sessionRepository) Save(ctx context.Context, record *domain.SessionRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.redis.Client.Set(ctx, r.redis.Key(record.ID), payload, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	payload, err := r.redis.Client.Get(ctx, r.redis.Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var record domain.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.redis.Client.Del(ctx, r.redis.Key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
