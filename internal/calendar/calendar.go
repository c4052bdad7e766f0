// Package calendar is the single place where "now" and "today" are computed.
// Every component that needs the current day receives it from a Clock rather
// than calling time.Now itself, so one request sees one consistent day.
package calendar

import (
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/neurozen/internal/constants"
)

// Day is a calendar date in YYYY-MM-DD form.
type Day string

// ParseDay validates and returns a Day.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid day %q (expected YYYY-MM-DD): %w", s, err)
	}
	return Day(s), nil
}

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	return Day(t.In(loc).Format(constants.DateFormat))
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	t, err := time.Parse(constants.DateFormat, string(d))
	if err != nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	t := d.Time(time.UTC)
	if t.IsZero() {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(constants.DateFormat))
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d < other
}

// Bounds returns the half-open UTC interval [start, end) covering d in loc.
func (d Day) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := d.Time(loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func (d Day) String() string { return string(d) }

// Clock supplies the current instant and the current day.
type Clock interface {
	Now() time.Time
	Today() Day
	Location() *time.Location
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

type systemClock struct {
	loc *time.Location
}

// System returns a wall clock whose days roll over at midnight in loc.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

// ForTimezone returns a wall clock for an IANA timezone name.
func ForTimezone(timezone string) (Clock, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return System(loc), nil
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Today() Day               { return DayOf(time.Now(), c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// FixedClock is a manually driven clock for tests and replays.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// Fixed returns a clock frozen at t; its days are computed in t's location.
func Fixed(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Today() Day {
	now := c.Now()
	return DayOf(now, now.Location())
}

func (c *FixedClock) Location() *time.Location {
	return c.Now().Location()
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
