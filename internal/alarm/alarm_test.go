package alarm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSounder struct {
	plays   int
	stops   int
	playErr error
}

func (f *fakeSounder) Play() error { f.plays++; return f.playErr }
func (f *fakeSounder) Stop()       { f.stops++ }

func TestTimer_StartStop(t *testing.T) {
	s := &fakeSounder{}
	timer := NewTimer(s)

	timer.Start()
	assert.True(t, timer.Active())
	assert.Equal(t, 1, s.plays)

	timer.Stop()
	assert.False(t, timer.Active())
	assert.Equal(t, 1, s.stops)
}

func TestTimer_RestartResetsPlayback(t *testing.T) {
	s := &fakeSounder{}
	timer := NewTimer(s)

	timer.Start()
	timer.Start()

	// Each Start replays from position zero; still a single active alarm.
	assert.Equal(t, 2, s.plays)
	assert.True(t, timer.Active())
}

func TestTimer_StopIdempotent(t *testing.T) {
	s := &fakeSounder{}
	timer := NewTimer(s)

	timer.Stop()
	timer.Stop()
	assert.Equal(t, 0, s.stops)

	timer.Start()
	timer.Stop()
	timer.Stop()
	assert.Equal(t, 1, s.stops)
}

func TestTimer_PlaybackFailureStaysInactive(t *testing.T) {
	s := &fakeSounder{playErr: errors.New("no audio device")}
	timer := NewTimer(s)

	timer.Start()
	assert.False(t, timer.Active())
}
