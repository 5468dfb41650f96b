package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// SnapshotMarker prefixes every encoded task-list snapshot.
	SnapshotMarker = "SYNC_TASKS:"

	// MaxSnapshotBytes bounds the size of a snapshot accepted by DecodeSnapshot.
	MaxSnapshotBytes = 64 << 10

	// MaxSnapshotTasks bounds the number of tasks in one snapshot.
	MaxSnapshotTasks = 500
)

// IsSnapshot reports whether s carries the snapshot marker.
func IsSnapshot(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), SnapshotMarker)
}

// EncodeSnapshot serializes tasks for hand-off between the chat and browser
// surfaces. Control characters are stripped from every text field.
func EncodeSnapshot(tasks []Task) (string, error) {
	clean := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Text = CleanText(t.Text)
		clean[i] = t
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return SnapshotMarker + string(data), nil
}

// DecodeSnapshot parses a snapshot payload. When the payload cannot be used,
// it returns fallback together with an error wrapping ErrMalformedSync, so the
// caller can keep going with the last known list.
func DecodeSnapshot(payload string, fallback []Task) ([]Task, error) {
	tasks, err := decodeSnapshot(payload)
	if err != nil {
		return fallback, fmt.Errorf("%w: %w", ErrMalformedSync, err)
	}
	return tasks, nil
}

func decodeSnapshot(payload string) ([]Task, error) {
	if len(payload) > MaxSnapshotBytes {
		return nil, fmt.Errorf("payload is %d bytes, limit is %d", len(payload), MaxSnapshotBytes)
	}
	body, ok := strings.CutPrefix(strings.TrimSpace(payload), SnapshotMarker)
	if !ok {
		return nil, fmt.Errorf("missing %q marker", SnapshotMarker)
	}

	var tasks []Task
	if err := json.Unmarshal([]byte(body), &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if len(tasks) > MaxSnapshotTasks {
		return nil, fmt.Errorf("%d tasks, limit is %d", len(tasks), MaxSnapshotTasks)
	}

	seen := make(map[int64]struct{}, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID <= 0 {
			return nil, fmt.Errorf("task %d: id must be positive", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("task %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}

		t.Text = CleanText(t.Text)
		if t.Text == "" {
			return nil, fmt.Errorf("task %d: %w", i, ErrEmptyMessage)
		}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
