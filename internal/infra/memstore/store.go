// Package memstore provides an in-memory progress key-value store.
// Backs the "memory" store backend and tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

var _ domain.KVStore = (*Store)(nil)

// Store is a mutex-guarded map. The zero value is not usable; call New.
type Store struct {
	mu   sync.RWMutex
	data map[string]string

	// Fail, when set, is consulted before every operation. A non-nil
	// return is reported as that operation's error.
	Fail func(op, key string) error
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	if err := s.fail("get", key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	if err := s.fail("set", key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes the given keys.
func (s *Store) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.fail("delete", k); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Clear removes everything.
func (s *Store) Clear(_ context.Context) error {
	if err := s.fail("clear", ""); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) fail(op, key string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, key)
}
