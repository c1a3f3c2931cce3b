package motion

// Scoring constants. Sensitivity doubles as the per-pixel brightness delta a
// changed pixel must exceed; the percentage threshold is fixed system-wide.
const (
	MinSensitivity     = 5
	MaxSensitivity     = 50
	DefaultSensitivity = 25

	DefaultPercentThreshold = 15.0
)

// SampleStride derives the pixel sampling stride from sensitivity. Higher
// sensitivity samples denser: stride = max(1, floor(10 - sensitivity/10)).
func SampleStride(sensitivity int) int {
	stride := (100 - sensitivity) / 10
	if stride < 1 {
		stride = 1
	}
	return stride
}

// ClampSensitivity bounds a user-supplied sensitivity into [5,50].
func ClampSensitivity(s int) int {
	if s < MinSensitivity {
		return MinSensitivity
	}
	if s > MaxSensitivity {
		return MaxSensitivity
	}
	return s
}

// Score compares two frames and reports whether motion is present.
//
// A nil previous frame means no baseline yet and always scores false. Pixels
// are sub-sampled at the sensitivity-derived stride; a sampled pixel counts as
// changed when the absolute difference of its average RGB brightness exceeds
// the sensitivity. Motion is present iff changed sampled pixels exceed
// percentThreshold percent of all sampled pixels.
//
// Deterministic: identical inputs always produce the same verdict.
func Score(previous, current *Frame, sensitivity int, percentThreshold float64) bool {
	if previous == nil || current == nil {
		return false
	}

	n := len(previous.Pix)
	if len(current.Pix) < n {
		n = len(current.Pix)
	}

	step := 4 * SampleStride(sensitivity)
	sampled := 0
	changed := 0

	for i := 0; i+2 < n; i += step {
		sampled++

		b1 := (float64(previous.Pix[i]) + float64(previous.Pix[i+1]) + float64(previous.Pix[i+2])) / 3
		b2 := (float64(current.Pix[i]) + float64(current.Pix[i+1]) + float64(current.Pix[i+2])) / 3

		diff := b1 - b2
		if diff < 0 {
			diff = -diff
		}
		if diff > float64(sensitivity) {
			changed++
		}
	}

	if sampled == 0 {
		return false
	}

	percentChanged := (float64(changed) / float64(sampled)) * 100
	return percentChanged > percentThreshold
}
