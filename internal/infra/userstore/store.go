// Package userstore provides the in-memory implementation of domain.UserStore.
package userstore

import (
	"context"
	"sync"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// entry is one user's state and the lock that serializes access to it.
type entry struct {
	state domain.UserState
	mu    sync.Mutex
}

// Store implements domain.UserStore in memory.
// Each user gets a mutex created on first use; updates for different users run
// in parallel, updates for the same user run one at a time.
type Store struct {
	users map[string]*entry
	mu    sync.Mutex // guards users
}

// Ensure Store implements domain.UserStore.
var _ domain.UserStore = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{users: make(map[string]*entry)}
}

// Update runs fn on the user's state while holding the user's lock.
func (s *Store) Update(ctx context.Context, userID string, fn func(*domain.UserState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := s.get(userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.state)
}

// Snapshot returns a deep copy of the user's state.
// Unknown users get an empty state.
func (s *Store) Snapshot(ctx context.Context, userID string) (domain.UserState, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserState{}, err
	}
	e := s.get(userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), nil
}

// Users returns the number of users with state.
func (s *Store) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) get(userID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[userID]
	if !ok {
		e = &entry{}
		s.users[userID] = e
	}
	return e
}
