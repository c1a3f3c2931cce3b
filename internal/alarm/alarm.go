package alarm

import (
	"log"
	"sync"
)

// Sounder is the audible output device. Play begins looping playback from the
// start of the sample; calling it while already playing resets the position.
type Sounder interface {
	Play() error
	Stop()
}

// Timer couples the looping alarm to the motion-detected window. It is owned
// by the surveillance controller and must not outlive a trigger.
type Timer struct {
	mu      sync.Mutex
	sounder Sounder
	active  bool
}

func NewTimer(s Sounder) *Timer {
	return &Timer{sounder: s}
}

// Start begins the looping alarm. Starting an already-started alarm is a
// no-op apart from resetting the playback position.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.sounder.Play(); err != nil {
		log.Printf("[ERROR] Alarm: playback failed: %v", err)
		return
	}
	t.active = true
}

// Stop halts playback and resets position. Safe to call when not playing.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}
	t.sounder.Stop()
	t.active = false
}

func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// LogSounder is the default output when no audio device is wired: it only
// writes the siren state to the log.
type LogSounder struct{}

func (LogSounder) Play() error {
	log.Printf("[ALARM] Siren on")
	return nil
}

func (LogSounder) Stop() {
	log.Printf("[ALARM] Siren off")
}
