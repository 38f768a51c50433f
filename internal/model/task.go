package model

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"
)

// TaskID identifies a task, assigned sequentially starting at 1.
type TaskID uint64

// TaskStatus represents the lifecycle status of a task.
type TaskStatus uint8

const (
	TaskStatusCreated TaskStatus = iota
	TaskStatusProgress
	TaskStatusReview
	TaskStatusCompleted
	TaskStatusCanceled
)

var taskStatusNames = map[TaskStatus]string{
	TaskStatusCreated:   "created",
	TaskStatusProgress:  "progress",
	TaskStatusReview:    "review",
	TaskStatusCompleted: "completed",
	TaskStatusCanceled:  "canceled",
}

func (s TaskStatus) String() string {
	if n, ok := taskStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// ParseTaskStatus parses a status name (case insensitive).
func ParseTaskStatus(s string) (TaskStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for st, n := range taskStatusNames {
		if n == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown task status %q: %w", s, ErrNotValid)
}

// NormalizeEndDate returns the end date in UTC with second precision, the precision end
// dates are stored with.
func NormalizeEndDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.Truncate(time.Second).UTC()
}

// ParseEndDate parses RFC3339 dates and plain YYYY-MM-DD dates, empty means no end date.
func ParseEndDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeEndDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid end date %q: %w", s, ErrNotValid)
}

// taskTransitions is the lifecycle graph, anything not listed is not allowed.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusCreated:  {TaskStatusProgress, TaskStatusCanceled},
	TaskStatusProgress: {TaskStatusReview, TaskStatusCanceled},
	TaskStatusReview:   {TaskStatusCompleted, TaskStatusCanceled},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	return slices.Contains(taskTransitions[s], to)
}

// IsConcluded reports whether the status is terminal (completed or canceled).
func (s TaskStatus) IsConcluded() bool {
	return s == TaskStatusCompleted || s == TaskStatusCanceled
}

// CompletionConfirmations is the number of distinct confirmers required to complete a task.
const CompletionConfirmations = 2

// Task is a unit of work with a reward that moves through the task lifecycle.
type Task struct {
	ID          TaskID
	Status      TaskStatus
	Title       string
	Description string
	// Reward is set at creation and never changes, settlement is handled elsewhere.
	Reward     *big.Int
	EndDate    time.Time
	Authorized []RoleID
	Creator    RoleID
	Assignee   Address
	Metadata   string

	// Confirmers are the distinct addresses that confirmed the completion.
	Confirmers []Address
	// Revision increases on every stored change.
	Revision int
}

// Validate validates the task fields provided on creation.
func (t Task) Validate() error {
	if t.Reward != nil && t.Reward.Sign() < 0 {
		return fmt.Errorf("reward must be non-negative: %w", ErrNotValid)
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Reward != nil {
		c.Reward = new(big.Int).Set(t.Reward)
	}
	c.Authorized = slices.Clone(t.Authorized)
	c.Confirmers = slices.Clone(t.Confirmers)
	return c
}

// InScope reports whether a role is the task creator role or one of its authorized roles.
func (t Task) InScope(role RoleID) bool {
	return role == t.Creator || slices.Contains(t.Authorized, role)
}

// Confirm registers a completion confirmer and returns true if it was not already registered.
func (t *Task) Confirm(addr Address) bool {
	if slices.Contains(t.Confirmers, addr) || len(t.Confirmers) >= CompletionConfirmations {
		return false
	}
	t.Confirmers = append(t.Confirmers, addr)
	return true
}

// IsConfirmed reports whether the task has enough distinct confirmers to be completed.
func (t Task) IsConfirmed() bool {
	return len(t.Confirmers) >= CompletionConfirmations
}

// TaskFilter filters task listings.
type TaskFilter struct {
	Status *TaskStatus
}
