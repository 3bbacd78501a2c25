// internal/logger/rotation.go

package logger

import (
	"fmt"
	"time"

	"github.com/orgoj/paplogger/internal/config"
)

// RotationInterval is the time schedule of the rotating file sink.
type RotationInterval struct {
	name       string
	every      time.Duration
	atMidnight bool
}

var (
	RotateHourly   = RotationInterval{name: "hourly", every: time.Hour}
	RotateDaily    = RotationInterval{name: "daily", every: 24 * time.Hour}
	RotateWeekly   = RotationInterval{name: "weekly", every: 7 * 24 * time.Hour}
	RotateMidnight = RotationInterval{name: "midnight", atMidnight: true}
)

// ParseRotation accepts "hourly", "daily", "weekly", "midnight", their
// single-letter forms (H, D, W) or a duration such as "6h" or "2d".
// An empty string means daily.
func ParseRotation(when string) (RotationInterval, error) {
	name, every, err := config.ParseRotationWhen(when)
	if err != nil {
		return RotationInterval{}, fmt.Errorf("invalid rotation interval '%s': %w", when, err)
	}
	switch name {
	case RotateHourly.name:
		return RotateHourly, nil
	case RotateDaily.name:
		return RotateDaily, nil
	case RotateWeekly.name:
		return RotateWeekly, nil
	case RotateMidnight.name:
		return RotateMidnight, nil
	}
	return RotationInterval{name: every.String(), every: every}, nil
}

// String returns the specifier the interval was parsed from.
func (r RotationInterval) String() string {
	if r.name == "" {
		return RotateDaily.name
	}
	return r.name
}

// next returns the first rollover instant after from.
func (r RotationInterval) next(from time.Time) time.Time {
	if r.atMidnight {
		y, m, d := from.Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, from.Location())
	}
	if r.every <= 0 {
		return from.Add(RotateDaily.every)
	}
	return from.Add(r.every)
}
