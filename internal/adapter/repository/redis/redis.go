// Package redis provides a history storage backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/online-tools/internal/entity"
)

// Storage keeps each value under its key without expiration.
type Storage struct {
	client *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		client: client,
	}
}

func (s *Storage) Load(ctx context.Context, key string) (string, error) {
	const op = "repository.redis.Storage.Load"

	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrKeyNotFound)
		}

		return "", fmt.Errorf("%s: failed to get value: %w", op, err)
	}

	return value, nil
}

func (s *Storage) Save(ctx context.Context, key, value string) error {
	const op = "repository.redis.Storage.Save"

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: failed to set value: %w", op, err)
	}

	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	const op = "repository.redis.Storage.Remove"

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete value: %w", op, err)
	}

	return nil
}
