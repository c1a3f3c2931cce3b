package camera

import (
	"context"

	"github.com/technosupport/ts-shopguard/internal/motion"
)

// VideoSource is a live camera feed. Open may block on a permission prompt
// and returns ErrPermissionDenied when access is refused.
type VideoSource interface {
	Open(ctx context.Context) error
	// Resolution reports the native frame size once the source knows it.
	Resolution() (width, height int, ok bool)
	// Capture draws the current image into the supplied frame buffer.
	Capture(frame *motion.Frame) error
	Close() error
}

// Recorder buffers encoded media between Start and Stop.
type Recorder interface {
	Start() error
	// Stop finalizes and returns the buffered media. May return zero bytes
	// if nothing was captured.
	Stop() ([]byte, error)
	MimeType() string
}

// RecorderFactory creates a recorder for an open source. Returns
// ErrRecorderUnavailable when no codec/recorder can be set up.
type RecorderFactory func(src VideoSource) (Recorder, error)

// Session bundles the per-activation camera resources. It is exclusively
// owned by the surveillance controller; everything else sees read-only frame
// data or finished artifacts.
type Session struct {
	Source    VideoSource
	Recorder  Recorder
	LastFrame *motion.Frame
}

// Release closes the underlying device. Idempotent: Source is nilled out so
// a second call is a no-op.
func (s *Session) Release() {
	if s.Source != nil {
		_ = s.Source.Close()
		s.Source = nil
	}
	s.Recorder = nil
	s.LastFrame = nil
}
