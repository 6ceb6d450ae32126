package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "quizx:store:"

type redisProvider struct {
	client *redis.Client
}

// NewRedisProvider keeps entries as plain redis strings without expiry.
func NewRedisProvider(client *redis.Client) Provider {
	return &redisProvider{client: client}
}

func (p *redisProvider) Open(namespace string) Store {
	return &redisStore{
		client:    p.client,
		ctx:       context.Background(),
		namespace: namespace,
	}
}

type redisStore struct {
	client    *redis.Client
	ctx       context.Context
	namespace string
}

func (s *redisStore) redisKey(key string) string {
	return redisKeyPrefix + s.namespace + ":" + key
}

func (s *redisStore) Get(key string) ([]byte, error) {
	data, err := s.client.Get(s.ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *redisStore) Set(key string, value []byte) error {
	if err := s.client.Set(s.ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Remove(key string) error {
	if err := s.client.Del(s.ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
