package sysconfig

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{values: make(map[string]string)}
}

func (r *MemoryRepo) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *MemoryRepo) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
