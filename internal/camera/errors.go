package camera

import "errors"

var (
	// ErrPermissionDenied means the user or OS refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrDeviceUnavailable means the device exists but a capture failed.
	ErrDeviceUnavailable = errors.New("camera device unavailable")

	// ErrRecorderUnavailable means no recorder could be created for the
	// session; recording is disabled but the alarm flow is unaffected.
	ErrRecorderUnavailable = errors.New("recorder unavailable")
)
