// Package jsonstore provides a JSON file-based audit log implementing
// domain.Persistence and domain.TagSource.
package jsonstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Favorites map[string]map[string]domain.FavoriteTask `json:"favorites"` // user id -> favorite id -> favorite
	Tags      map[string][]domain.Tag                   `json:"tags"`      // user id -> tags
	Messages  []messageData                             `json:"messages"`
	Meta      meta                                      `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextMessageID int64 `json:"nextMessageID"`
}

// messageData is the JSON representation of an audited message.
type messageData struct {
	domain.MessageRecord
	ID int64 `json:"id"`
}

// Store implements domain.Persistence and domain.TagSource using a JSON file.
// Every call holds an flock on a sibling lock file, so several processes may
// share one store.
type Store struct {
	path     string
	lockPath string
}

// Ensure Store implements the ports it serves.
var (
	_ domain.Persistence = (*Store)(nil)
	_ domain.TagSource   = (*Store)(nil)
	_ domain.TagWriter   = (*Store)(nil)
)

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// UpsertMessage appends an audited message.
func (s *Store) UpsertMessage(_ context.Context, rec domain.MessageRecord) error {
	return s.withLockWrite(func(data *storeData) error {
		data.Meta.NextMessageID++
		data.Messages = append(data.Messages, messageData{
			MessageRecord: rec,
			ID:            data.Meta.NextMessageID,
		})
		return nil
	})
}

// ListMessages returns the user's messages, newest first.
func (s *Store) ListMessages(_ context.Context, userID string, limit int) ([]domain.MessageRecord, error) {
	var out []domain.MessageRecord
	err := s.withLock(func(data *storeData) error {
		for i := len(data.Messages) - 1; i >= 0; i-- {
			if data.Messages[i].UserID != userID {
				continue
			}
			out = append(out, data.Messages[i].MessageRecord)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// SaveFavorite creates or updates a favorite.
func (s *Store) SaveFavorite(_ context.Context, userID string, fav domain.FavoriteTask) error {
	return s.withLockWrite(func(data *storeData) error {
		favs, ok := data.Favorites[userID]
		if !ok {
			favs = make(map[string]domain.FavoriteTask)
			data.Favorites[userID] = favs
		}
		favs[fav.ID] = fav
		return nil
	})
}

// DeleteFavorite removes a favorite. Deleting an unknown favorite is not an error.
func (s *Store) DeleteFavorite(_ context.Context, userID, favoriteID string) error {
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Favorites[userID], favoriteID)
		return nil
	})
}

// QueryTags returns the user's stored tags ordered by SortOrder.
func (s *Store) QueryTags(_ context.Context, userID string) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := s.withLock(func(data *storeData) error {
		tags = slices.Clone(data.Tags[userID])
		return nil
	})
	slices.SortStableFunc(tags, func(a, b domain.Tag) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
	return tags, err
}

// ReplaceTags overwrites the user's stored tags.
func (s *Store) ReplaceTags(_ context.Context, userID string, tags []domain.Tag) error {
	return s.withLockWrite(func(data *storeData) error {
		if len(tags) == 0 {
			delete(data.Tags, userID)
			return nil
		}
		data.Tags[userID] = slices.Clone(tags)
		return nil
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}

	return s.write(newStoreData())
}

func newStoreData() *storeData {
	return &storeData{
		Favorites: make(map[string]map[string]domain.FavoriteTask),
		Tags:      make(map[string][]domain.Tag),
	}
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// read loads the store. A missing file reads as an empty store.
func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newStoreData(), nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	// Ensure maps are initialized
	if data.Favorites == nil {
		data.Favorites = make(map[string]map[string]domain.FavoriteTask)
	}
	if data.Tags == nil {
		data.Tags = make(map[string][]domain.Tag)
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
