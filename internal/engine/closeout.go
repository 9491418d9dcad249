package engine

import (
	"time"

	"petprogress/internal/state"

	"github.com/google/uuid"
)

// DefaultMaxCatchUpDays bounds how many backlog days a single invocation
// closes out, so a device that was off for months cannot trigger unbounded
// work. Later invocations continue from where the last one stopped.
const DefaultMaxCatchUpDays = 7

// RolledSuffix annotates tasks carried forward by rollover.
const RolledSuffix = " (rolled)"

// nextDueDay returns the oldest unprocessed day that is eligible for
// closeout: strictly after the pet's lastCloseoutDayKey, at or before the
// current day, and with now already past that day's end plus the grace
// window. A day still in progress is never closed early.
//
// An empty lastCloseoutDayKey means no closeout has ever run; the backfill
// then starts at the day the aggregate last saw, so the first day of use is
// still closed out once it ends.
func nextDueDay(st *state.AppState, now time.Time) (string, bool) {
	current := DayKeyOf(now, st.Settings.ResetTime)
	last := st.Pet.LastCloseoutDayKey
	if last == "" {
		last = PrevDayKey(st.DayKey)
		if last == "" || last > current {
			last = PrevDayKey(current)
		}
	}
	if last >= current {
		return "", false
	}

	day := NextDayKey(last)
	if day == "" || day > current {
		return "", false
	}
	end, err := DayEnd(day, st.Settings.ResetTime, now.Location())
	if err != nil {
		return "", false
	}
	boundary := end.Add(time.Duration(st.Settings.GraceMinutes) * time.Minute)
	if now.Before(boundary) {
		return "", false
	}
	return day, true
}

// closeOutDay runs the aggregate step for one day against st: partitions
// the day's materialized tasks, applies the evolution closeout, and, when
// rollover is enabled, copies each missed task into the next day as a fresh
// one-off record. The day's own records stay in place as historical record.
func closeOutDay(evo *Evolution, st *state.AppState, dayKey string) CloseoutResult {
	tasks := Materialize(dayKey, st)
	completed, missed := 0, 0
	var missedTasks []DayTask
	for _, t := range tasks {
		if t.Completed {
			completed++
		} else {
			missed++
			missedTasks = append(missedTasks, t)
		}
	}

	res := evo.DailyCloseout(&st.Pet, dayKey, completed, missed)
	if !res.Applied {
		return res
	}

	if st.Settings.RolloverEnabled {
		next := NextDayKey(dayKey)
		for _, t := range missedTasks {
			st.Tasks = append(st.Tasks, state.TaskRecord{
				ID:     uuid.NewString(),
				Title:  t.Title + RolledSuffix,
				Hour:   t.Hour,
				Minute: t.Minute,
				DayKey: next,
			})
		}
	}
	return res
}
