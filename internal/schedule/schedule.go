package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Oracle answers "is the shop open right now" for a pair of "HH:MM"
// time-of-day bounds. The closing time may wrap past midnight.
type Oracle struct {
	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewOracle() *Oracle {
	return &Oracle{Now: time.Now}
}

// IsOpen reports whether the current wall-clock time falls inside
// [opening, closing). Malformed input never errors: the safe default for a
// shop dashboard is "open" (no surveillance, no false alarms).
func (o *Oracle) IsOpen(opening, closing string) bool {
	openMin, err := parseMinutes(opening)
	if err != nil {
		return true
	}
	closeMin, err := parseMinutes(closing)
	if err != nil {
		return true
	}

	now := o.Now()
	nowMin := now.Hour()*60 + now.Minute()

	if closeMin > openMin {
		return nowMin >= openMin && nowMin < closeMin
	}
	// Closing past midnight: open late evening OR early morning.
	return nowMin >= openMin || nowMin < closeMin
}

// parseMinutes converts "HH:MM" to minutes since midnight.
func parseMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad time-of-day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time-of-day out of range %q", s)
	}
	return h*60 + m, nil
}
