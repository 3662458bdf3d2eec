package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

var _ domain.Clock = (*SystemClock)(nil)

// SystemClock reads wall time in a fixed location, so "today" follows the
// device's calendar rather than UTC.
type SystemClock struct {
	loc *time.Location
	now func() time.Time
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc, now: time.Now}
}

// NewSystemClockFromName accepts an IANA zone name; empty or "Local" means the
// host's zone.
func NewSystemClockFromName(name string) (*SystemClock, error) {
	if name == "" || name == "Local" {
		return NewSystemClock(time.Local), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("clock: unknown timezone %q: %w", name, err)
	}
	return NewSystemClock(loc), nil
}

func (c *SystemClock) Today() string {
	return domain.FormatDay(c.now().In(c.loc))
}

func (c *SystemClock) Location() *time.Location {
	return c.loc
}
