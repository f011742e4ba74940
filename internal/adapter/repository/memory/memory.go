// Package memory provides an in-process history storage backed by go-cache.
package memory

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/vadimbarashkov/online-tools/internal/entity"
)

// Storage keeps values in memory without expiration. Contents are lost on restart.
type Storage struct {
	cache *cache.Cache
}

func NewStorage() *Storage {
	return &Storage{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Storage) Load(_ context.Context, key string) (string, error) {
	const op = "repository.memory.Storage.Load"

	v, ok := s.cache.Get(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, entity.ErrKeyNotFound)
	}

	value, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected value type %T", op, v)
	}

	return value, nil
}

func (s *Storage) Save(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
