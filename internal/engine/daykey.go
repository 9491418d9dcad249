package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day keys are calendar dates rendered as YYYY-MM-DD in the user's local
// timezone. All day arithmetic parses back into time.Time and uses AddDate,
// so month lengths and DST transitions are handled by the calendar, not by
// 24h offsets.

const dayKeyLayout = "2006-01-02"

// FormatDayKey renders t's calendar date as a day-key.
func FormatDayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDayKey parses a day-key at midnight UTC, for calendar math only.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t, nil
}

// DayKeyOf returns the day-key that now falls in, honoring a non-midnight
// reset time: with resetTime "03:00", 02:59 still belongs to the previous
// calendar day.
func DayKeyOf(now time.Time, resetTime string) string {
	return FormatDayKey(now.Add(-resetOffset(resetTime)))
}

// NextDayKey returns the day-key one calendar day after key. Invalid keys
// return the empty string.
func NextDayKey(key string) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return ""
	}
	return FormatDayKey(t.AddDate(0, 0, 1))
}

// PrevDayKey returns the day-key one calendar day before key.
func PrevDayKey(key string) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return ""
	}
	return FormatDayKey(t.AddDate(0, 0, -1))
}

// DayEnd returns the instant the given day closes in loc: the reset time on
// the following calendar day. Computed via AddDate on a localized midnight
// so a DST change inside the day shifts the boundary with the wall clock.
func DayEnd(key string, resetTime string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t.AddDate(0, 0, 1).Add(resetOffset(resetTime)), nil
}

// resetOffset parses "HH:MM" into an offset from midnight. Empty or
// malformed values mean midnight.
func resetOffset(resetTime string) time.Duration {
	if resetTime == "" {
		return 0
	}
	parts := strings.SplitN(resetTime, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// ValidResetTime reports whether s is empty or a well-formed "HH:MM".
func ValidResetTime(s string) bool {
	if s == "" {
		return true
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	return err1 == nil && err2 == nil && h >= 0 && h <= 23 && m >= 0 && m <= 59
}
