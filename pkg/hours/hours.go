// Package hours decides whether a store is open from its weekly hour strings.
package hours

import (
	"strings"
	"sync"
	"time"
)

// Closed marks a day without opening hours.
const Closed = "closed"

// Week holds one hour-range string per weekday, Monday=0 .. Sunday=6.
// Each entry is "HH:MM-HH:MM" or "closed".
type Week [7]string

// Evaluator evaluates Week values against a clock.
type Evaluator struct {
	fallback *time.Location
	now      func() time.Time
}

// NewEvaluator returns an Evaluator that resolves unknown timezones to
// fallback and reads the current instant from now. A nil now means time.Now.
func NewEvaluator(fallback *time.Location, now func() time.Time) *Evaluator {
	if fallback == nil {
		fallback = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Evaluator{fallback: fallback, now: now}
}

// IsOpen reports whether the store is open at the evaluator's current instant.
func (e *Evaluator) IsOpen(week Week, timezone string) bool {
	return IsOpenAt(week, timezone, e.fallback, e.now())
}

// Fallback returns the zone used for stores without a usable timezone.
func (e *Evaluator) Fallback() *time.Location {
	return e.fallback
}

// Now returns the evaluator's current instant.
func (e *Evaluator) Now() time.Time {
	return e.now()
}

// IsOpenAt reports whether a store with the given week and timezone is open
// at instant. An absent or unloadable timezone falls back to fallback.
// Malformed hour strings count as closed.
func IsOpenAt(week Week, timezone string, fallback *time.Location, instant time.Time) bool {
	local := instant.In(ResolveLocation(timezone, fallback))

	// Go 는 Sunday=0 이므로 Monday=0 기준으로 보정
	day := (int(local.Weekday()) + 6) % 7
	start, end, ok := ParseRange(week[day])
	if !ok {
		return false
	}

	now := local.Hour()*60 + local.Minute()
	if end < start {
		// 자정을 넘기는 영업시간 (예: 22:00-02:00)
		return now >= start || now <= end
	}
	return start <= now && now <= end
}

// ParseRange parses "HH:MM-HH:MM" into minutes since midnight.
// "closed", empty strings and malformed ranges return ok=false.
func ParseRange(s string) (start, end int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, Closed) {
		return 0, 0, false
	}

	from, to, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}

	start, ok = parseClock(from)
	if !ok {
		return 0, 0, false
	}
	end, ok = parseClock(to)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// ValidRange reports whether s is "closed" or a well-formed hour range.
func ValidRange(s string) bool {
	if strings.EqualFold(strings.TrimSpace(s), Closed) {
		return true
	}
	_, _, ok := ParseRange(s)
	return ok
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

var locations sync.Map // name -> *time.Location

// ResolveLocation loads the named IANA zone, caching successful lookups.
// Empty or invalid names resolve to fallback (UTC when fallback is nil).
func ResolveLocation(name string, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	locations.Store(name, loc)
	return loc
}
