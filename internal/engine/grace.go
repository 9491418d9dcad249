package engine

import "time"

const minutesPerDay = 24 * 60

// IsOnTime reports whether now falls inside the closed grace window
// [scheduled-grace, scheduled+grace] in minutes-of-day space. The window
// wraps across midnight: a 23:30 task with 60 minutes grace is on time at
// 00:15 but not at 00:45. The comparison is circular distance, which covers
// both wrap directions with one rule.
//
// Callers pass an already-localized now; no zone conversion happens here, so
// DST is handled once, upstream, where now and the scheduled time-of-day are
// derived in the same calendar pass.
func IsOnTime(hour, minute int, now time.Time, graceMinutes int) bool {
	if graceMinutes < 0 {
		graceMinutes = 0
	}
	if graceMinutes >= minutesPerDay/2 {
		return true
	}

	scheduled := hour*60 + minute
	current := now.Hour()*60 + now.Minute()

	d := current - scheduled
	if d < 0 {
		d = -d
	}
	if d > minutesPerDay-d {
		d = minutesPerDay - d
	}
	return d <= graceMinutes
}
