package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"petprogress/internal/state"

	"github.com/google/uuid"
)

// Notifier is the one-way port the core writes to after any mutation a
// render surface should pick up. Delivery (widget reload, file watch,
// nothing at all) is the collaborator's business.
type Notifier interface {
	StateChanged()
}

type nopNotifier struct{}

func (nopNotifier) StateChanged() {}

// Service wires the store, the evolution engine and the closeout logic
// behind the three external entry points (CheckIn, Snooze, Tick) and the
// management operations the CLI uses. Every mutation is one full
// load-mutate-save cycle; a failed save discards the in-memory change.
type Service struct {
	store  *state.Store
	evo    *Evolution
	notify Notifier

	maxCatchUpDays int
}

func NewService(store *state.Store) *Service {
	return &Service{
		store:          store,
		evo:            NewEvolution(DefaultStages),
		notify:         nopNotifier{},
		maxCatchUpDays: DefaultMaxCatchUpDays,
	}
}

// SetStages replaces the stage ladder (e.g. from a stage config file).
func (s *Service) SetStages(stages []Stage) { s.evo = NewEvolution(stages) }

// SetNotifier installs the render-refresh port.
func (s *Service) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notify = n
}

// Evolution exposes the engine for read-only stage math (status displays).
func (s *Service) Evolution() *Evolution { return s.evo }

func seedState(now time.Time) func() *state.AppState {
	return func() *state.AppState {
		day := DayKeyOf(now, "")
		st := state.NewAppState(day)
		// Closeouts start owing from the first day of use, not before it.
		st.Pet.LastCloseoutDayKey = PrevDayKey(day)
		return st
	}
}

// CheckInResult reports a completed check-in. Found is false when the id
// did not resolve to one of today's tasks; that is a silent no-op, not an
// error, because the caller may hold stale data.
type CheckInResult struct {
	Found       bool
	TaskID      string
	Title       string
	OnTime      bool
	XPDelta     int
	StageBefore int
	StageAfter  int
	Evolved     bool
	Celebrate   bool
	Stage       Stage
}

// CheckIn marks the given task done for the day now falls in and credits
// the pet. Checking in twice, or against an unknown id, changes nothing.
func (s *Service) CheckIn(ctx context.Context, id string, now time.Time) (*CheckInResult, error) {
	res := &CheckInResult{TaskID: id}
	_, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		dayKey := DayKeyOf(now, st.Settings.ResetTime)
		task, ok := findDayTask(Materialize(dayKey, st), id)
		if !ok {
			return state.ErrNoChange
		}
		res.Found = true
		res.Title = task.Title
		res.Stage = s.evo.Stage(st.Pet.StageIndex)
		res.StageBefore = st.Pet.StageIndex
		res.StageAfter = st.Pet.StageIndex
		if task.Completed {
			return state.ErrNoChange
		}

		switch task.Origin.Kind {
		case OriginOneOff:
			if rec := st.Task(task.Origin.TaskID); rec != nil {
				rec.Completed = true
				t := now
				rec.CompletedAt = &t
			}
		case OriginSeries:
			// Completion for series instances lives only in the
			// completion set, inserted below.
		}
		st.MarkCompleted(dayKey, task.ID)

		res.OnTime = IsOnTime(task.Hour, task.Minute, now, st.Settings.GraceMinutes)
		res.XPDelta = s.evo.OnCheck(&st.Pet, res.OnTime)
		res.StageAfter = st.Pet.StageIndex
		res.Evolved = res.StageAfter > res.StageBefore
		res.Stage = s.evo.Stage(st.Pet.StageIndex)
		if res.Evolved && st.Pet.StageIndex > st.Pet.LastCelebratedStage {
			res.Celebrate = true
			st.Pet.LastCelebratedStage = st.Pet.StageIndex
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Found {
		s.notify.StateChanged()
	}
	return res, nil
}

// SnoozeResult reports a snooze. Found mirrors CheckInResult.Found.
type SnoozeResult struct {
	Found  bool
	TaskID string
	Title  string
	Until  time.Time
}

// Snooze pushes a task's effective time for today by the given number of
// minutes. One-off records carry a snooze-until timestamp; a series
// instance gets a per-day override with the shifted time.
func (s *Service) Snooze(ctx context.Context, id string, minutes int, now time.Time) (*SnoozeResult, error) {
	if minutes <= 0 {
		return nil, ValidationError{Field: "minutes", Reason: "must be positive"}
	}
	res := &SnoozeResult{TaskID: id}
	_, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		dayKey := DayKeyOf(now, st.Settings.ResetTime)
		task, ok := findDayTask(Materialize(dayKey, st), id)
		if !ok || task.Completed {
			return state.ErrNoChange
		}
		res.Found = true
		res.Title = task.Title
		until := now.Add(time.Duration(minutes) * time.Minute)
		// A snooze cannot push a task past its day boundary; the last
		// minute of the day is as far as it goes.
		if end, err := DayEnd(dayKey, st.Settings.ResetTime, now.Location()); err == nil && !until.Before(end) {
			until = end.Add(-time.Minute)
		}
		res.Until = until

		switch task.Origin.Kind {
		case OriginOneOff:
			if rec := st.Task(task.Origin.TaskID); rec != nil {
				t := until
				rec.SnoozedUntil = &t
			}
		case OriginSeries:
			h, m := until.Hour(), until.Minute()
			st.SetOverride(state.OverrideRecord{
				SeriesID: task.Origin.SeriesID,
				DayKey:   dayKey,
				Hour:     &h,
				Minute:   &m,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Found {
		s.notify.StateChanged()
	}
	return res, nil
}

// TickResult reports what a foreground/periodic tick did.
type TickResult struct {
	DayKey    string
	Processed []CloseoutResult
}

// Tick is the app-foreground / periodic-trigger entry point: it refreshes
// the aggregate's current day-key and closes out the backlog of ended days,
// oldest first, at most maxCatchUpDays per invocation.
//
// Each day is persisted individually, so a write failure aborts the
// remaining backlog without losing the days already processed; the next
// tick resumes from the stamp.
func (s *Service) Tick(ctx context.Context, now time.Time) (*TickResult, error) {
	res := &TickResult{}
	for len(res.Processed) < s.maxCatchUpDays {
		var day CloseoutResult
		processed := false
		_, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
			dayKey, due := nextDueDay(st, now)
			if !due {
				return state.ErrNoChange
			}
			day = closeOutDay(s.evo, st, dayKey)
			processed = day.Applied
			if !processed {
				return state.ErrNoChange
			}
			st.DayKey = DayKeyOf(now, st.Settings.ResetTime)
			return nil
		})
		if err != nil {
			if len(res.Processed) > 0 {
				s.notify.StateChanged()
			}
			return res, err
		}
		if !processed {
			break
		}
		res.Processed = append(res.Processed, day)
	}

	// Refresh the current day-key even when no closeout ran (e.g. the day
	// rolled over but yesterday is still inside its grace window), and
	// settle any evolve pass a schema migration left pending.
	st, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		current := DayKeyOf(now, st.Settings.ResetTime)
		normalized := s.evo.Normalize(&st.Pet)
		if st.DayKey == current && !normalized {
			return state.ErrNoChange
		}
		st.DayKey = current
		return nil
	})
	if err != nil {
		return res, err
	}
	res.DayKey = st.DayKey

	if len(res.Processed) > 0 {
		s.notify.StateChanged()
	}
	return res, nil
}

// Today returns the materialized task list for the day now falls in.
// Read-only; first run yields an empty list.
func (s *Service) Today(ctx context.Context, now time.Time) (string, []DayTask, error) {
	st, err := s.loadOrDefault(ctx, now)
	if err != nil {
		return "", nil, err
	}
	dayKey := DayKeyOf(now, st.Settings.ResetTime)
	return dayKey, Materialize(dayKey, st), nil
}

// Status is a read-only snapshot of the pet and its ladder position.
type Status struct {
	Pet       state.PetState
	Stage     Stage
	Threshold int
	Settings  state.Settings
}

func (s *Service) Status(ctx context.Context, now time.Time) (*Status, error) {
	st, err := s.loadOrDefault(ctx, now)
	if err != nil {
		return nil, err
	}
	return &Status{
		Pet:       st.Pet,
		Stage:     s.evo.Stage(st.Pet.StageIndex),
		Threshold: s.evo.Threshold(st.Pet.StageIndex),
		Settings:  st.Settings,
	}, nil
}

// Resolve maps a (day-key, hour, id-or-title) address back to a
// materialized task, for jump-to-task flows. ref matches the task id, an
// id prefix, or the title case-insensitively; hour < 0 matches any hour.
// Returns nil when nothing matches.
func (s *Service) Resolve(ctx context.Context, dayKey string, hour int, ref string, now time.Time) (*DayTask, error) {
	st, err := s.loadOrDefault(ctx, now)
	if err != nil {
		return nil, err
	}
	if dayKey == "" {
		dayKey = DayKeyOf(now, st.Settings.ResetTime)
	}
	for _, t := range Materialize(dayKey, st) {
		if hour >= 0 && t.Hour != hour {
			continue
		}
		if t.ID == ref ||
			(len(ref) >= 8 && strings.HasPrefix(t.ID, ref)) ||
			strings.EqualFold(t.Title, ref) {
			task := t
			return &task, nil
		}
	}
	return nil, nil
}

// AddTask creates a one-off task on the given day (today when dayKey is
// empty) and returns its id.
func (s *Service) AddTask(ctx context.Context, title string, hour, minute int, dayKey string, now time.Time) (string, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return "", err
	}
	if err := validateClock(hour, minute); err != nil {
		return "", err
	}
	if dayKey != "" {
		if _, err := ParseDayKey(dayKey); err != nil {
			return "", ValidationError{Field: "day", Reason: "must be YYYY-MM-DD"}
		}
	}

	id := uuid.NewString()
	_, err = s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		day := dayKey
		if day == "" {
			day = DayKeyOf(now, st.Settings.ResetTime)
		}
		st.Tasks = append(st.Tasks, state.TaskRecord{
			ID:     id,
			Title:  title,
			Hour:   hour,
			Minute: minute,
			DayKey: day,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	s.notify.StateChanged()
	return id, nil
}

// AddSeries creates a recurring series anchored on today and returns its id.
func (s *Service) AddSeries(ctx context.Context, title string, hour, minute int, rec state.Recurrence, now time.Time) (string, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return "", err
	}
	if err := validateClock(hour, minute); err != nil {
		return "", err
	}
	if !rec.IsValid() {
		return "", ValidationError{Field: "recurrence", Reason: "must be daily, weekdays, weekly or monthly"}
	}

	id := uuid.NewString()
	_, err = s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		st.Series = append(st.Series, state.SeriesRecord{
			ID:          id,
			Title:       title,
			Hour:        hour,
			Minute:      minute,
			Recurrence:  rec,
			StartDayKey: DayKeyOf(now, st.Settings.ResetTime),
			Active:      true,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	s.notify.StateChanged()
	return id, nil
}

// SkipSeriesDay suppresses one series instance on the given day (today when
// dayKey is empty) via a deletion override.
func (s *Service) SkipSeriesDay(ctx context.Context, seriesID, dayKey string, now time.Time) error {
	_, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		series := st.SeriesByID(seriesID)
		if series == nil {
			return ErrSeriesNotFound
		}
		day := dayKey
		if day == "" {
			day = DayKeyOf(now, st.Settings.ResetTime)
		}
		st.SetOverride(state.OverrideRecord{
			SeriesID: series.ID,
			DayKey:   day,
			Deleted:  true,
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.notify.StateChanged()
	return nil
}

// DeleteTask removes a one-off task record explicitly. Unknown ids are a
// no-op.
func (s *Service) DeleteTask(ctx context.Context, id string, now time.Time) error {
	_, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
				return nil
			}
		}
		return state.ErrNoChange
	})
	if err != nil {
		return err
	}
	s.notify.StateChanged()
	return nil
}

// UpdateSettings applies the non-nil fields.
func (s *Service) UpdateSettings(ctx context.Context, grace *int, resetTime *string, rollover *bool, now time.Time) (*state.Settings, error) {
	if grace != nil && (*grace < 0 || *grace >= minutesPerDay/2) {
		return nil, ValidationError{Field: "grace", Reason: "must be between 0 and 719 minutes"}
	}
	if resetTime != nil && !ValidResetTime(*resetTime) {
		return nil, ValidationError{Field: "reset", Reason: "must be HH:MM or empty"}
	}

	var out state.Settings
	_, err := s.store.Update(ctx, seedState(now), func(st *state.AppState) error {
		if grace != nil {
			st.Settings.GraceMinutes = *grace
		}
		if resetTime != nil {
			st.Settings.ResetTime = *resetTime
		}
		if rollover != nil {
			st.Settings.RolloverEnabled = *rollover
		}
		out = st.Settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify.StateChanged()
	return &out, nil
}

// loadOrDefault reads the aggregate for a read-only operation, falling back
// to a fresh default on first run or after a quarantined corrupt blob.
func (s *Service) loadOrDefault(ctx context.Context, now time.Time) (*state.AppState, error) {
	st, err := s.store.Load(ctx)
	if err == nil {
		return st, nil
	}
	if isRecoverable(err) {
		return seedState(now)(), nil
	}
	return nil, err
}

func isRecoverable(err error) bool {
	var corrupt *state.CorruptError
	return errors.Is(err, state.ErrNotFound) || errors.As(err, &corrupt)
}

func findDayTask(tasks []DayTask, id string) (DayTask, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return DayTask{}, false
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "is required"}
	}
	return t, nil
}

func validateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return ValidationError{Field: "hour", Reason: "must be 0-23"}
	}
	if minute < 0 || minute > 59 {
		return ValidationError{Field: "minute", Reason: "must be 0-59"}
	}
	return nil
}
