// Package tagfile loads quick-reply tags from a YAML file.
//
// The file holds a default tag set and optional per-user sets:
//
//	default:
//	  - name: 工作
//	    icon: 💼
//	users:
//	  U4af4980629:
//	    - name: 健身
//	      sort_order: 1
package tagfile

import (
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// tagData is the YAML representation of a tag.
// IsActive is a pointer so an omitted key means active.
type tagData struct {
	IsActive  *bool  `yaml:"is_active,omitempty"`
	Name      string `yaml:"name"`
	Color     string `yaml:"color,omitempty"`
	Icon      string `yaml:"icon,omitempty"`
	ID        int64  `yaml:"id,omitempty"`
	SortOrder int    `yaml:"sort_order,omitempty"`
}

type fileData struct {
	Users   map[string][]tagData `yaml:"users"`
	Default []tagData            `yaml:"default"`
}

// File is a parsed tag file. It implements domain.TagSource.
type File struct {
	users    map[string][]domain.Tag
	fallback []domain.Tag
}

var _ domain.TagSource = (*File)(nil)

// Load reads and parses the tag file at path.
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag file: %w", err)
	}
	f, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses tag file content.
func Parse(content []byte) (*File, error) {
	var data fileData
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse tag file: %w", err)
	}

	f := &File{users: make(map[string][]domain.Tag, len(data.Users))}
	var err error
	if f.fallback, err = toTags(data.Default); err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	for userID, tags := range data.Users {
		if f.users[userID], err = toTags(tags); err != nil {
			return nil, fmt.Errorf("users.%s: %w", userID, err)
		}
	}
	return f, nil
}

// QueryTags returns the user's own tags, or the file's default set.
func (f *File) QueryTags(_ context.Context, userID string) ([]domain.Tag, error) {
	if tags, ok := f.users[userID]; ok {
		return slices.Clone(tags), nil
	}
	return slices.Clone(f.fallback), nil
}

// Users returns the ids of users with their own tag set, sorted.
func (f *File) Users() []string {
	ids := make([]string, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// UserTags returns the tags listed for userID only, without the default set.
func (f *File) UserTags(userID string) []domain.Tag {
	return slices.Clone(f.users[userID])
}

// toTags converts file entries, numbering ids and sort orders by position
// when they are omitted.
func toTags(entries []tagData) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("tag %d: name is required", i+1)
		}
		tag := domain.Tag{
			Name:      e.Name,
			Color:     e.Color,
			Icon:      e.Icon,
			ID:        e.ID,
			SortOrder: e.SortOrder,
			IsActive:  e.IsActive == nil || *e.IsActive,
		}
		if tag.ID == 0 {
			tag.ID = int64(i + 1)
		}
		if tag.SortOrder == 0 {
			tag.SortOrder = i + 1
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Chain queries sources in order and returns the first non-empty result.
// A failing source is skipped; the last error is returned only when every
// source failed or came back empty.
type Chain []domain.TagSource

var _ domain.TagSource = Chain(nil)

// QueryTags implements domain.TagSource.
func (c Chain) QueryTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	var lastErr error
	for _, src := range c {
		if src == nil {
			continue
		}
		tags, err := src.QueryTags(ctx, userID)
		if err != nil {
			lastErr = err
			continue
		}
		if len(tags) > 0 {
			return tags, nil
		}
	}
	return nil, lastErr
}
