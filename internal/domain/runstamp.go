package domain

import (
	"sync"
	"time"
)

// Builds stamp in a fixed civil zone so scheduled runs are reproducible
// regardless of host timezone.
const runZone = "America/New_York"

const (
	displayLayout  = "Jan 02, 2006 03:04 PM MST"
	fileSafeLayout = "2006-01-02_15-04-05"
	overrideLayout = "2006-01-02"
)

// slotHours maps a recognized scheduled-run slot to its wall-clock hour.
var slotHours = map[string]int{
	"noon":    12,
	"evening": 18,
}

var (
	zoneOnce sync.Once
	zone     *time.Location
)

func runLocation() *time.Location {
	zoneOnce.Do(func() {
		loc, err := time.LoadLocation(runZone)
		if err != nil {
			loc = time.UTC
		}
		zone = loc
	})
	return zone
}

// RunStamp is the canonical timestamp of one build. Display and FileSafe
// both derive from the single Instant, never from separate clock reads, so
// the artifact name and the on-map timestamp always agree.
type RunStamp struct {
	Instant  time.Time
	Display  string // human-readable, e.g. "Aug 31, 2026 12:00 PM EDT"
	FileSafe string // filename-safe, e.g. "2026-08-31_12-00-00"
}

// ResolveRunStamp determines the canonical timestamp for this build.
//
// When both overrides are supplied, a calendar date ("2026-08-31") and a
// recognized slot name ("noon" or "evening"), the stamp is constructed
// deterministically at the slot's wall-clock hour in the fixed run zone,
// which gives scheduled builds reproducible artifact names. Any parse
// failure or unknown slot falls back to the current time rather than
// failing the build.
func ResolveRunStamp(dateOverride, slotOverride string) RunStamp {
	loc := runLocation()

	if dateOverride != "" && slotOverride != "" {
		if hour, ok := slotHours[slotOverride]; ok {
			if day, err := time.ParseInLocation(overrideLayout, dateOverride, loc); err == nil {
				return stampAt(time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc))
			}
		}
	}

	return stampAt(clock.Now().In(loc))
}

func stampAt(instant time.Time) RunStamp {
	return RunStamp{
		Instant:  instant,
		Display:  instant.Format(displayLayout),
		FileSafe: instant.Format(fileSafeLayout),
	}
}
