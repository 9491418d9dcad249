package state

import "time"

// SchemaVersion is the current persisted-state layout version. Load upgrades
// older blobs in place; see migrate.go for the per-version rules.
const SchemaVersion = 3

// Recurrence is a series' cadence, evaluated against a day-key.
type Recurrence string

const (
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekdays Recurrence = "weekdays"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// TaskRecord is a concrete one-off task owned by a single day.
// Records are never deleted implicitly; rollover copies them forward instead.
type TaskRecord struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Hour         int        `json:"hour"`
	Minute       int        `json:"minute"`
	DayKey       string     `json:"dayKey"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
}

// SeriesRecord produces virtual task instances per day. The series itself is
// never "completed"; completion is tracked per (series id, day-key) in
// Completions. StartDayKey anchors the weekly/monthly cadences.
type SeriesRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Hour        int        `json:"hour"`
	Minute      int        `json:"minute"`
	Recurrence  Recurrence `json:"recurrence"`
	StartDayKey string     `json:"startDayKey,omitempty"`
	Active      bool       `json:"active"`
}

// OverrideRecord is a one-day exception to a series: a replacement title or
// time, or a full suppression when Deleted is set. At most one override per
// (series, day-key); the setter enforces last-write-wins.
type OverrideRecord struct {
	SeriesID string  `json:"seriesId"`
	DayKey   string  `json:"dayKey"`
	Title    *string `json:"title,omitempty"`
	Hour     *int    `json:"hour,omitempty"`
	Minute   *int    `json:"minute,omitempty"`
	Deleted  bool    `json:"deleted"`
}

// PetState is the pet's progression. StageIndex stays within the configured
// stage ladder; StageXP is progress within the current stage and never stays
// negative past an evolution pass. LastCloseoutDayKey only moves forward.
type PetState struct {
	StageIndex          int    `json:"stageIndex"`
	StageXP             int    `json:"stageXP"`
	LastCloseoutDayKey  string `json:"lastCloseoutDayKey,omitempty"`
	LastCelebratedStage int    `json:"lastCelebratedStage"`
}

// Settings are the user-tunable knobs.
// ResetTime is "HH:MM" for a non-midnight day boundary; empty means midnight.
type Settings struct {
	GraceMinutes    int    `json:"graceMinutes"`
	ResetTime       string `json:"resetTime,omitempty"`
	RolloverEnabled bool   `json:"rolloverEnabled"`
}

// DefaultGraceMinutes applies on first run and when migrating blobs that
// predate the setting.
const DefaultGraceMinutes = 60

// AppState is the aggregate root and the unit of persistence. Every mutation
// is a whole-aggregate load-mutate-save cycle through Store.
type AppState struct {
	SchemaVersion int                 `json:"schemaVersion"`
	DayKey        string              `json:"dayKey"`
	Tasks         []TaskRecord        `json:"tasks"`
	Series        []SeriesRecord      `json:"series"`
	Overrides     []OverrideRecord    `json:"overrides"`
	Completions   map[string][]string `json:"completions"`
	Pet           PetState            `json:"pet"`
	Settings      Settings            `json:"settings"`
}

// NewAppState returns a fresh first-run state for the given day.
func NewAppState(dayKey string) *AppState {
	return &AppState{
		SchemaVersion: SchemaVersion,
		DayKey:        dayKey,
		Completions:   map[string][]string{},
		Settings: Settings{
			GraceMinutes:    DefaultGraceMinutes,
			RolloverEnabled: true,
		},
	}
}

// Task returns the one-off task with the given id, or nil.
func (st *AppState) Task(id string) *TaskRecord {
	for i := range st.Tasks {
		if st.Tasks[i].ID == id {
			return &st.Tasks[i]
		}
	}
	return nil
}

// SeriesByID returns the series with the given id, or nil.
func (st *AppState) SeriesByID(id string) *SeriesRecord {
	for i := range st.Series {
		if st.Series[i].ID == id {
			return &st.Series[i]
		}
	}
	return nil
}

// OverrideFor returns the override for (series, day-key), or nil. The scan
// runs back-to-front so a stray duplicate resolves last-write-wins.
func (st *AppState) OverrideFor(seriesID, dayKey string) *OverrideRecord {
	for i := len(st.Overrides) - 1; i >= 0; i-- {
		if st.Overrides[i].SeriesID == seriesID && st.Overrides[i].DayKey == dayKey {
			return &st.Overrides[i]
		}
	}
	return nil
}

// SetOverride installs ov, replacing any existing override for the same
// (series, day-key).
func (st *AppState) SetOverride(ov OverrideRecord) {
	for i := range st.Overrides {
		if st.Overrides[i].SeriesID == ov.SeriesID && st.Overrides[i].DayKey == ov.DayKey {
			st.Overrides[i] = ov
			return
		}
	}
	st.Overrides = append(st.Overrides, ov)
}

// IsCompleted reports whether id was marked done on dayKey.
func (st *AppState) IsCompleted(dayKey, id string) bool {
	for _, done := range st.Completions[dayKey] {
		if done == id {
			return true
		}
	}
	return false
}

// MarkCompleted inserts id into dayKey's completion set. Idempotent.
func (st *AppState) MarkCompleted(dayKey, id string) {
	if st.IsCompleted(dayKey, id) {
		return
	}
	if st.Completions == nil {
		st.Completions = map[string][]string{}
	}
	st.Completions[dayKey] = append(st.Completions[dayKey], id)
}
