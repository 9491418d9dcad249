package engine

import (
	"sort"
	"time"

	"petprogress/internal/state"
)

// OriginKind tags where a materialized task came from.
type OriginKind int

const (
	OriginOneOff OriginKind = iota
	OriginSeries
)

// Origin is the closed source tag of a materialized task: exactly one of
// TaskID or SeriesID is set, matching Kind.
type Origin struct {
	Kind     OriginKind
	TaskID   string
	SeriesID string
}

// DayTask is one concrete entry in a day's task list. Hour/Minute are the
// effective scheduled time after overrides and snoozes.
type DayTask struct {
	ID        string
	Title     string
	Hour      int
	Minute    int
	Completed bool
	Origin    Origin
}

// Minutes returns the effective time-of-day in minutes, the sort key.
func (t DayTask) Minutes() int { return t.Hour*60 + t.Minute }

// Materialize projects the concrete ordered task list for one day: one-off
// records owned by the day, plus an instance of every active series whose
// recurrence matches, with per-day overrides applied. The projection is
// pure; calling it twice on unchanged state yields an identical list.
func Materialize(dayKey string, st *state.AppState) []DayTask {
	var out []DayTask

	for i := range st.Tasks {
		t := &st.Tasks[i]
		if t.DayKey != dayKey {
			continue
		}
		hour, minute := t.Hour, t.Minute
		if t.SnoozedUntil != nil && DayKeyOf(*t.SnoozedUntil, st.Settings.ResetTime) == dayKey {
			hour, minute = t.SnoozedUntil.Hour(), t.SnoozedUntil.Minute()
		}
		out = append(out, DayTask{
			ID:        t.ID,
			Title:     t.Title,
			Hour:      hour,
			Minute:    minute,
			Completed: t.Completed || st.IsCompleted(dayKey, t.ID),
			Origin:    Origin{Kind: OriginOneOff, TaskID: t.ID},
		})
	}

	for i := range st.Series {
		s := &st.Series[i]
		if !s.Active || !recurrenceMatches(s, dayKey) {
			continue
		}
		title, hour, minute := s.Title, s.Hour, s.Minute
		if ov := st.OverrideFor(s.ID, dayKey); ov != nil {
			if ov.Deleted {
				continue
			}
			if ov.Title != nil {
				title = *ov.Title
			}
			if ov.Hour != nil {
				hour = *ov.Hour
			}
			if ov.Minute != nil {
				minute = *ov.Minute
			}
		}
		out = append(out, DayTask{
			ID:        s.ID,
			Title:     title,
			Hour:      hour,
			Minute:    minute,
			Completed: st.IsCompleted(dayKey, s.ID),
			Origin:    Origin{Kind: OriginSeries, SeriesID: s.ID},
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes() < out[j].Minutes() })
	return out
}

// recurrenceMatches evaluates a series' cadence against a day-key. Weekly
// and monthly anchor on StartDayKey; series migrated from old state without
// an anchor fall back to matching every day, preserving what those series
// did before anchors existed.
func recurrenceMatches(s *state.SeriesRecord, dayKey string) bool {
	day, err := ParseDayKey(dayKey)
	if err != nil {
		return false
	}

	switch s.Recurrence {
	case state.RecurrenceDaily:
		return true
	case state.RecurrenceWeekdays:
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case state.RecurrenceWeekly:
		anchor, ok := seriesAnchor(s)
		if !ok {
			return true
		}
		return day.Weekday() == anchor.Weekday()
	case state.RecurrenceMonthly:
		anchor, ok := seriesAnchor(s)
		if !ok {
			return true
		}
		want := anchor.Day()
		if last := lastDayOfMonth(day); want > last {
			want = last
		}
		return day.Day() == want
	default:
		return false
	}
}

func seriesAnchor(s *state.SeriesRecord) (time.Time, bool) {
	if s.StartDayKey == "" {
		return time.Time{}, false
	}
	anchor, err := ParseDayKey(s.StartDayKey)
	if err != nil {
		return time.Time{}, false
	}
	return anchor, true
}

func lastDayOfMonth(day time.Time) int {
	return time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, day.Location()).Day()
}
