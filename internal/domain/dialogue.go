package domain

import "time"

// DialogueStatus represents the state of a user's follow-up conversation.
type DialogueStatus string

const (
	DialogueIdle        DialogueStatus = "idle"         // No follow-up pending
	DialogueAwaitingTag DialogueStatus = "awaiting_tag" // Next text message is a tag label
)

// IsValid returns true if the status is a known value.
func (s DialogueStatus) IsValid() bool {
	switch s {
	case DialogueIdle, DialogueAwaitingTag:
		return true
	default:
		return false
	}
}

// Dialogue is the per-user follow-up state machine.
// The zero value is Idle.
//
//	Idle --Await(taskID)--> AwaitingTag(taskID)
//	AwaitingTag --Consume--> Idle
//
// Await from AwaitingTag re-targets the pending question to the new task.
type Dialogue struct {
	StartedAt    time.Time      `json:"startedAt,omitzero"`
	Status       DialogueStatus `json:"status,omitempty"`
	TargetTaskID int64          `json:"targetTaskId,omitempty"`
}

// State returns the current status, treating the zero value as Idle.
func (d Dialogue) State() DialogueStatus {
	if d.Status == "" {
		return DialogueIdle
	}
	return d.Status
}

// AwaitingTag reports whether the next text message should be read as a tag.
func (d Dialogue) AwaitingTag() bool {
	return d.State() == DialogueAwaitingTag
}

// Await moves the dialogue to AwaitingTag for the given task.
func (d *Dialogue) Await(taskID int64, now time.Time) {
	d.Status = DialogueAwaitingTag
	d.TargetTaskID = taskID
	d.StartedAt = now
}

// Consume returns to Idle and yields the task that was awaiting a tag.
// ok is false when nothing was pending.
func (d *Dialogue) Consume() (taskID int64, ok bool) {
	if !d.AwaitingTag() {
		return 0, false
	}
	taskID = d.TargetTaskID
	d.Reset()
	return taskID, true
}

// Reset forces the dialogue back to Idle.
func (d *Dialogue) Reset() {
	*d = Dialogue{Status: DialogueIdle}
}

// Expired reports whether a pending dialogue is older than ttl.
// A ttl of zero never expires.
func (d Dialogue) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || !d.AwaitingTag() {
		return false
	}
	return now.Sub(d.StartedAt) > ttl
}
