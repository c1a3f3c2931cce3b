package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// frames returns a baseline frame plus a copy whose first changedPixels
// pixels differ from the baseline by delta gray levels.
func frames(width, height, changedPixels int, delta uint8) (*Frame, *Frame) {
	prev := NewFrame(width, height)
	for i := 0; i < prev.PixelCount(); i++ {
		prev.SetGray(i, 100)
	}
	cur := prev.Clone()
	for i := 0; i < changedPixels; i++ {
		cur.SetGray(i, 100+delta)
	}
	return prev, cur
}

func TestScore_NilPreviousIsFalse(t *testing.T) {
	_, cur := frames(100, 10, 1000, 200)

	for s := MinSensitivity; s <= MaxSensitivity; s += 5 {
		assert.False(t, Score(nil, cur, s, DefaultPercentThreshold), "sensitivity %d", s)
	}
}

func TestScore_IdenticalFramesIsFalse(t *testing.T) {
	prev, _ := frames(100, 10, 0, 0)
	cur := prev.Clone()

	for s := MinSensitivity; s <= MaxSensitivity; s += 5 {
		assert.False(t, Score(prev, cur, s, DefaultPercentThreshold), "sensitivity %d", s)
	}
}

func TestScore_PercentThreshold(t *testing.T) {
	// 100x10 frame, sensitivity 25 -> stride 7 -> 143 sampled pixels.
	tests := []struct {
		name          string
		changedPixels int
		want          bool
	}{
		{"20 percent of sampled changed", 200, true},
		{"10 percent of sampled changed", 100, false},
		{"nothing changed", 0, false},
		{"everything changed", 1000, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev, cur := frames(100, 10, tc.changedPixels, 30)
			assert.Equal(t, tc.want, Score(prev, cur, 25, DefaultPercentThreshold))
		})
	}
}

func TestScore_SensitivityGatesPixelDelta(t *testing.T) {
	// Delta 30 exceeds sensitivity 25 but not 45: same frames, opposite verdicts.
	prev, cur := frames(100, 10, 200, 30)

	assert.True(t, Score(prev, cur, 25, DefaultPercentThreshold))
	assert.False(t, Score(prev, cur, 45, DefaultPercentThreshold))
}

func TestScore_MismatchedBufferLengths(t *testing.T) {
	prev, _ := frames(100, 10, 0, 0)
	short := NewFrame(10, 10)

	assert.NotPanics(t, func() {
		Score(prev, short, DefaultSensitivity, DefaultPercentThreshold)
	})
}

func TestSampleStride(t *testing.T) {
	tests := []struct {
		sensitivity int
		want        int
	}{
		{5, 9},
		{25, 7},
		{45, 5},
		{50, 5},
		{100, 1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, SampleStride(tc.sensitivity), "sensitivity %d", tc.sensitivity)
	}
}

func TestClampSensitivity(t *testing.T) {
	assert.Equal(t, 5, ClampSensitivity(0))
	assert.Equal(t, 50, ClampSensitivity(90))
	assert.Equal(t, 25, ClampSensitivity(25))
}
