package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "live_session:"

// RedisStore keeps one JSON value per session, without TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// OpenRedis dials redis and pings it before returning.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisStore(client), nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: redisKeyPrefix,
		now:    time.Now,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	if s.Identifier == "" {
		return domain.Session{}, domain.ErrEmptyIdentifier
	}
	now := r.now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	data, err := json.Marshal(s)
	if err != nil {
		return domain.Session{}, fmt.Errorf("store: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(s.Identifier), data, 0).Result()
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrDuplicateIdentifier
	}
	return s, nil
}

func (r *RedisStore) FindByIdentifier(ctx context.Context, id string) (domain.Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}

	var s domain.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return domain.Session{}, fmt.Errorf("store: failed to unmarshal: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
