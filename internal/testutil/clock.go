package testutil

import (
	"sync"
	"time"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

// ManualClock is a domain.Clock whose current day only moves when a test says so.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts the clock at noon UTC of day (YYYY-MM-DD).
// It panics on a malformed day: tests should fail loudly on typos.
func NewManualClock(day string) *ManualClock {
	return &ManualClock{now: mustParseDay(day)}
}

func (c *ManualClock) Today() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.FormatDay(c.now)
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(day string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = mustParseDay(day)
}

// AdvanceDays moves the clock n calendar days forward (or back when n < 0).
func (c *ManualClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func mustParseDay(day string) time.Time {
	t, err := time.Parse(domain.DayLayout, day)
	if err != nil {
		panic("testutil: invalid day " + day)
	}
	return t.Add(12 * time.Hour)
}
