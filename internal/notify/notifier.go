package notify

import (
	"fmt"
	"time"

	"github.com/technosupport/ts-shopguard/internal/metrics"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-visible status message (the dashboard renders these as
// toasts).
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is the non-blocking notification channel: posting never blocks
// the surveillance loop. When the buffer is full the notice is dropped and
// counted, never queued.
type Notifier struct {
	ch    chan Notice
	dedup *Dedup
}

func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 64
	}
	return &Notifier{
		ch:    make(chan Notice, buffer),
		dedup: NewDedup(256, 30*time.Second),
	}
}

func (n *Notifier) Post(level Level, format string, args ...any) {
	notice := Notice{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		At:      time.Now(),
	}
	select {
	case n.ch <- notice:
	default:
		metrics.NoticesDropped.Inc()
	}
}

// PostOnce suppresses repeats of the same key inside the dedup window. Used
// for recurring failures so a flapping device cannot flood the user.
func (n *Notifier) PostOnce(key string, level Level, format string, args ...any) {
	if n.dedup.Suppress(key) {
		return
	}
	n.Post(level, format, args...)
}

func (n *Notifier) C() <-chan Notice {
	return n.ch
}
