// Package domain contains core business entities and interfaces.
package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Task is a single to-do item tracked for one user.
type Task struct {
	ID        int64     `json:"id"`   // Unique and increasing within one user
	Text      string    `json:"text"` // Display text, tag prefix included
	CreatedAt time.Time `json:"createdAt,omitzero"`
	Completed bool      `json:"completed"`
	Favorited bool      `json:"favorited"`
}

// FavoriteTask is a reusable template saved from a Task.
// SourceTaskID only points back at the origin task; the task may change or
// disappear without invalidating the favorite.
type FavoriteTask struct {
	CreatedAt    time.Time `json:"createdAt"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	UsedCount    int       `json:"usedCount"`
	SourceTaskID int64     `json:"sourceTaskId"`
}

// Tag is a user-defined label with display metadata.
type Tag struct {
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Icon      string `json:"icon,omitempty" yaml:"icon,omitempty"`
	ID        int64  `json:"id" yaml:"id"`
	SortOrder int    `json:"sortOrder" yaml:"sort_order"`
	IsActive  bool   `json:"isActive" yaml:"is_active"`
}

// DefaultTags returns the tag set offered when a user has none.
func DefaultTags() []Tag {
	return []Tag{
		{ID: 1, Name: "工作", Color: "#FF6B6B", Icon: "💼", SortOrder: 1, IsActive: true},
		{ID: 2, Name: "學習", Color: "#4ECDC4", Icon: "📚", SortOrder: 2, IsActive: true},
		{ID: 3, Name: "運動", Color: "#45B7D1", Icon: "🏃", SortOrder: 3, IsActive: true},
		{ID: 4, Name: "AI", Color: "#9B59B6", Icon: "🤖", SortOrder: 4, IsActive: true},
		{ID: 5, Name: "日本", Color: "#E74C3C", Icon: "🗾", SortOrder: 5, IsActive: true},
	}
}

// TaggedText returns text prefixed with "(label)".
func TaggedText(label, text string) string {
	return "(" + label + ")" + text
}

var tagPrefixPattern = regexp.MustCompile(`^\((.+?)\)`)

// TagOf extracts the leading "(label)" of a tagged text, or "" if untagged.
func TagOf(text string) string {
	m := tagPrefixPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// CleanText removes control characters and surrounding whitespace.
func CleanText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}

// CompletedCount returns the number of completed tasks.
func CompletedCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}
