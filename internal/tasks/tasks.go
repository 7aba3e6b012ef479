// Package tasks is a small persistent task queue used for the deferred parts
// of onboarding: the approved -> employee promotion and simulated
// notification emails. Tasks survive a restart, retry with backoff and land
// in a dead-letter table after too many failures.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Task is one unit of deferred work.
type Task struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

// Task types handled by the onboarding worker.
const (
	TypePromoteEmployee = "profile.promote"
	TypeNotifyEmail     = "notify.email"
)

// PromotePayload schedules the approved -> employee promotion of a profile.
type PromotePayload struct {
	UserID string `json:"user_id"`
}

// NotifyPayload is a simulated outbound email.
type NotifyPayload struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Template string `json:"template"`
	Reason   string `json:"reason,omitempty"`
}

// Handler is the function that processes a task
type Handler func(ctx context.Context, t *Task) error

// ErrMaxAttempts indicates the task reached max attempts
var ErrMaxAttempts = errors.New("max attempts reached")

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	// simple exponential: base 2^attempt seconds, capped
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}
