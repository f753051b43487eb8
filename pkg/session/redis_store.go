package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore persists sessions in Redis with the key TTL doing the expiry
// work, so no cleanup loop is needed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("session: redis client is required")
	}
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrFailedToStoreSession, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return errors.Join(ErrFailedToStoreSession, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrFailedToLoadSession, err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, errors.Join(ErrFailedToLoadSession, err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return errors.Join(ErrFailedToDeleteSession, err)
	}
	return nil
}
