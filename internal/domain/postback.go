package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Action is a card control action carried in postback data.
type Action string

const (
	ActionComplete Action = "complete" // Mark a task completed
	ActionFavorite Action = "favorite" // Save a task as a favorite template
	ActionList     Action = "list"     // Re-render the task card
)

// IsValid returns true if the action is a known value.
func (a Action) IsValid() bool {
	switch a {
	case ActionComplete, ActionFavorite, ActionList:
		return true
	default:
		return false
	}
}

// NeedsTask returns true if the action targets a specific task.
func (a Action) NeedsTask() bool {
	return a == ActionComplete || a == ActionFavorite
}

// PostbackData is the canonical structured postback payload.
type PostbackData struct {
	Action Action `json:"action"`
	TaskID int64  `json:"taskId,omitempty"`
}

// Encode returns the wire form of the postback data.
func (p PostbackData) Encode() string {
	data, _ := json.Marshal(p)
	return string(data)
}

// ParsePostback strictly decodes postback data. Unknown fields, unknown
// actions, missing task ids and trailing data are all rejected.
func ParsePostback(raw string) (PostbackData, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var p PostbackData
	if err := dec.Decode(&p); err != nil {
		return PostbackData{}, fmt.Errorf("%w: %w", ErrInvalidPostback, err)
	}
	if dec.More() {
		return PostbackData{}, fmt.Errorf("%w: trailing data", ErrInvalidPostback)
	}
	if !p.Action.IsValid() {
		return PostbackData{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPostback, p.Action)
	}
	if p.Action.NeedsTask() && p.TaskID <= 0 {
		return PostbackData{}, fmt.Errorf("%w: %s requires a task id", ErrInvalidPostback, p.Action)
	}
	if !p.Action.NeedsTask() && p.TaskID != 0 {
		return PostbackData{}, fmt.Errorf("%w: %s takes no task id", ErrInvalidPostback, p.Action)
	}
	return p, nil
}
