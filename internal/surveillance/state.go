package surveillance

import "time"

// State is the single enumerated surveillance state. Exactly one holds at
// any instant; transitions happen only inside the controller.
type State string

const (
	StateInactive       State = "inactive"
	StateRequesting     State = "requesting"
	StateActive         State = "active"
	StateDenied         State = "denied"
	StateMotionDetected State = "motion_detected"
	StateRecording      State = "recording"
)

// DeactivationWindow marks a user-requested suspension of motion scoring.
// While present, verdicts are ignored regardless of shop-open status.
type DeactivationWindow struct {
	EndTime time.Time `json:"end_time"`
}

// Deactivation duration bounds in minutes.
const (
	MinDeactivationMinutes     = 5
	MaxDeactivationMinutes     = 120
	DefaultDeactivationMinutes = 30
)

func clampDeactivationMinutes(m int) int {
	if m == 0 {
		return DefaultDeactivationMinutes
	}
	if m < MinDeactivationMinutes {
		return MinDeactivationMinutes
	}
	if m > MaxDeactivationMinutes {
		return MaxDeactivationMinutes
	}
	return m
}
