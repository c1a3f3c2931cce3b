package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the event types the dashboard log understands.
type Kind string

const (
	KindLogin                 Kind = "login"
	KindLogout                Kind = "logout"
	KindMotionDetected        Kind = "motion_detected"
	KindAlarmTriggered        Kind = "alarm_triggered"
	KindAlarmDismissed        Kind = "alarm_dismissed"
	KindTemporaryDeactivation Kind = "temporary_deactivation"
)

// Event is an immutable log record. Once appended it is never mutated or
// deleted by the surveillance core.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Details   string    `json:"details,omitempty"`
}

// New stamps a fresh event with an id and the current time.
func New(kind Kind, details string) Event {
	return Event{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Kind:      kind,
		Details:   details,
	}
}
