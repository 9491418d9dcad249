package state

// wireState is the superset of every schema version's on-disk layout.
// The pending* fields existed only in v1, where a day's aggregate summary
// was recorded at day end and settled with a completion-rate formula on the
// next app open. v2 moved closeout to the per-task-penalty formula and v3
// added the celebration high-water mark.
type wireState struct {
	AppState

	PendingDayKey    string `json:"pendingDayKey,omitempty"`
	PendingCompleted int    `json:"pendingCompleted,omitempty"`
	PendingTotal     int    `json:"pendingTotal,omitempty"`
}

// migrate upgrades a decoded blob to the current schema in place, filling
// missing fields with their documented defaults. It never downgrades.
func migrate(w *wireState) *AppState {
	st := &w.AppState

	if w.SchemaVersion < 2 {
		// v1 had no settings block; grace defaulted to an hour and
		// incomplete tasks always carried forward.
		if st.Settings.GraceMinutes == 0 {
			st.Settings.GraceMinutes = DefaultGraceMinutes
		}
		st.Settings.RolloverEnabled = true

		// Settle a day the v1 app left mid-closeout. The rate formula is
		// retained purely as this migration input; the scheduler never
		// runs it.
		if w.PendingDayKey != "" && w.PendingDayKey > st.Pet.LastCloseoutDayKey {
			st.Pet.StageXP += legacyRateDelta(w.PendingCompleted, w.PendingTotal)
			if st.Pet.StageXP < 0 {
				st.Pet.StageXP = 0
			}
			st.Pet.LastCloseoutDayKey = w.PendingDayKey
		}
	}

	if w.SchemaVersion < 3 {
		// Stages reached before the high-water mark existed should not
		// re-trigger a celebration.
		if st.Pet.LastCelebratedStage < st.Pet.StageIndex {
			st.Pet.LastCelebratedStage = st.Pet.StageIndex
		}
	}

	if st.Settings.GraceMinutes <= 0 {
		st.Settings.GraceMinutes = DefaultGraceMinutes
	}
	if st.Completions == nil {
		st.Completions = map[string][]string{}
	}

	st.SchemaVersion = SchemaVersion
	return st
}

// legacyRateDelta is the v1 closeout formula: +3 XP for a completion rate of
// at least 0.8, -3 below 0.4, nothing in between.
func legacyRateDelta(completed, total int) int {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total)
	switch {
	case rate >= 0.8:
		return 3
	case rate < 0.4:
		return -3
	default:
		return 0
	}
}
