package recording

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is one finalized recording produced by a triggered capture.
type Artifact struct {
	ID             uuid.UUID `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	MediaURL       string    `json:"media_url"`
	MimeType       string    `json:"mime_type"`
	SizeBytes      int       `json:"size_bytes"`
	DurationSec    int       `json:"duration"`
	DetectedMotion bool      `json:"detected_motion"`
}
