package engine

import (
	"reflect"
	"testing"
	"time"

	"petprogress/internal/state"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestMaterializeOrdering(t *testing.T) {
	st := state.NewAppState("2025-01-06")
	st.Tasks = []state.TaskRecord{
		{ID: "t-late", Title: "Journal", Hour: 21, Minute: 0, DayKey: "2025-01-06"},
		{ID: "t-early", Title: "Stretch", Hour: 7, Minute: 30, DayKey: "2025-01-06"},
		{ID: "t-other", Title: "Elsewhere", Hour: 6, Minute: 0, DayKey: "2025-01-07"},
	}
	st.Series = []state.SeriesRecord{
		{ID: "s-noon", Title: "Walk", Hour: 12, Minute: 0, Recurrence: state.RecurrenceDaily, Active: true},
		{ID: "s-tie", Title: "Water", Hour: 7, Minute: 30, Recurrence: state.RecurrenceDaily, Active: true},
		{ID: "s-off", Title: "Paused", Hour: 8, Minute: 0, Recurrence: state.RecurrenceDaily, Active: false},
	}

	got := Materialize("2025-01-06", st)
	ids := make([]string, len(got))
	for i, dt := range got {
		ids[i] = dt.ID
	}
	// Ties keep insertion order: one-offs before series at the same minute.
	want := []string{"t-early", "s-tie", "s-noon", "t-late"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
}

func TestMaterializeIsPure(t *testing.T) {
	st := state.NewAppState("2025-01-06")
	st.Tasks = []state.TaskRecord{{ID: "t1", Title: "Stretch", Hour: 9, Minute: 0, DayKey: "2025-01-06"}}
	st.Series = []state.SeriesRecord{{ID: "s1", Title: "Walk", Hour: 12, Minute: 0, Recurrence: state.RecurrenceDaily, Active: true}}
	st.MarkCompleted("2025-01-06", "s1")

	first := Materialize("2025-01-06", st)
	second := Materialize("2025-01-06", st)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection not stable:\n%+v\n%+v", first, second)
	}
}

func TestMaterializeOverrides(t *testing.T) {
	st := state.NewAppState("2025-01-06")
	st.Series = []state.SeriesRecord{
		{ID: "s1", Title: "Walk", Hour: 12, Minute: 0, Recurrence: state.RecurrenceDaily, Active: true},
		{ID: "s2", Title: "Read", Hour: 20, Minute: 0, Recurrence: state.RecurrenceDaily, Active: true},
	}
	st.SetOverride(state.OverrideRecord{SeriesID: "s1", DayKey: "2025-01-06", Title: strp("Long walk"), Hour: intp(13)})
	st.SetOverride(state.OverrideRecord{SeriesID: "s2", DayKey: "2025-01-06", Deleted: true})
	st.SetOverride(state.OverrideRecord{SeriesID: "s1", DayKey: "2025-01-07", Title: strp("Wrong day")})

	got := Materialize("2025-01-06", st)
	if len(got) != 1 {
		t.Fatalf("got %d tasks, want 1 (deleted override suppresses s2)", len(got))
	}
	if got[0].Title != "Long walk" || got[0].Hour != 13 || got[0].Minute != 0 {
		t.Fatalf("override not applied: %+v", got[0])
	}

	// The untouched day sees the plain series.
	tomorrow := Materialize("2025-01-07", st)
	if len(tomorrow) != 2 {
		t.Fatalf("got %d tasks on 2025-01-07, want 2", len(tomorrow))
	}
	if tomorrow[0].Title != "Wrong day" {
		t.Fatalf("day-scoped override missing: %+v", tomorrow[0])
	}
	if tomorrow[1].Title != "Read" {
		t.Fatalf("deleted override leaked across days: %+v", tomorrow[1])
	}
}

func TestMaterializeRecurrence(t *testing.T) {
	series := func(rec state.Recurrence, anchor string) *state.AppState {
		st := state.NewAppState("2025-01-06")
		st.Series = []state.SeriesRecord{
			{ID: "s1", Title: "Chore", Hour: 9, Minute: 0, Recurrence: rec, StartDayKey: anchor, Active: true},
		}
		return st
	}

	cases := []struct {
		name   string
		st     *state.AppState
		dayKey string
		want   bool
	}{
		{"daily matches any day", series(state.RecurrenceDaily, "2025-01-06"), "2025-03-15", true},
		{"weekdays includes monday", series(state.RecurrenceWeekdays, ""), "2025-01-06", true},
		{"weekdays excludes saturday", series(state.RecurrenceWeekdays, ""), "2025-01-04", false},
		{"weekly matches same weekday", series(state.RecurrenceWeekly, "2025-01-06"), "2025-01-13", true},
		{"weekly skips other weekdays", series(state.RecurrenceWeekly, "2025-01-06"), "2025-01-14", false},
		{"weekly without anchor matches daily", series(state.RecurrenceWeekly, ""), "2025-01-14", true},
		{"monthly matches anchor day", series(state.RecurrenceMonthly, "2025-01-31"), "2025-03-31", true},
		{"monthly clamps short months", series(state.RecurrenceMonthly, "2025-01-31"), "2025-02-28", true},
		{"monthly skips mid-month", series(state.RecurrenceMonthly, "2025-01-31"), "2025-02-15", false},
		{"unknown recurrence never matches", series(state.Recurrence("fortnightly"), ""), "2025-01-06", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Materialize(tc.dayKey, tc.st)
			if (len(got) == 1) != tc.want {
				t.Fatalf("materialized %d tasks, want present=%v", len(got), tc.want)
			}
		})
	}
}

func TestMaterializeSnoozedOneOff(t *testing.T) {
	snooze := time.Date(2025, time.January, 6, 10, 45, 0, 0, time.UTC)
	stale := time.Date(2025, time.January, 5, 23, 0, 0, 0, time.UTC)
	st := state.NewAppState("2025-01-06")
	st.Tasks = []state.TaskRecord{
		{ID: "t1", Title: "Stretch", Hour: 9, Minute: 0, DayKey: "2025-01-06", SnoozedUntil: &snooze},
		{ID: "t2", Title: "Journal", Hour: 8, Minute: 0, DayKey: "2025-01-06", SnoozedUntil: &stale},
	}

	got := Materialize("2025-01-06", st)
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
	// Stale snooze from another day is ignored; t2 keeps 08:00 and sorts first.
	if got[0].ID != "t2" || got[0].Hour != 8 || got[0].Minute != 0 {
		t.Fatalf("stale snooze applied: %+v", got[0])
	}
	if got[1].ID != "t1" || got[1].Hour != 10 || got[1].Minute != 45 {
		t.Fatalf("snoozed time not shown: %+v", got[1])
	}
}

func TestMaterializeSnoozeHonorsResetTime(t *testing.T) {
	// With a 03:00 day reset, 01:30 on the next calendar date still belongs
	// to the task's day, so the snoozed time shows.
	snooze := time.Date(2025, time.January, 7, 1, 30, 0, 0, time.UTC)
	st := state.NewAppState("2025-01-06")
	st.Settings.ResetTime = "03:00"
	st.Tasks = []state.TaskRecord{
		{ID: "t1", Title: "Journal", Hour: 23, Minute: 0, DayKey: "2025-01-06", SnoozedUntil: &snooze},
	}

	got := Materialize("2025-01-06", st)
	if len(got) != 1 || got[0].Hour != 1 || got[0].Minute != 30 {
		t.Fatalf("got %+v, want the snoozed 01:30", got)
	}
}

func TestMaterializeCompletion(t *testing.T) {
	done := time.Date(2025, time.January, 6, 9, 5, 0, 0, time.UTC)
	st := state.NewAppState("2025-01-06")
	st.Tasks = []state.TaskRecord{
		{ID: "t1", Title: "Stretch", Hour: 9, Minute: 0, DayKey: "2025-01-06", Completed: true, CompletedAt: &done},
	}
	st.Series = []state.SeriesRecord{
		{ID: "s1", Title: "Walk", Hour: 12, Minute: 0, Recurrence: state.RecurrenceDaily, Active: true},
	}
	st.MarkCompleted("2025-01-06", "s1")

	got := Materialize("2025-01-06", st)
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
	for _, dt := range got {
		if !dt.Completed {
			t.Fatalf("%s not completed: %+v", dt.ID, dt)
		}
	}

	// Series completion is scoped to the day.
	next := Materialize("2025-01-07", st)
	if len(next) != 1 || next[0].Completed {
		t.Fatalf("series completion leaked to next day: %+v", next)
	}
}
