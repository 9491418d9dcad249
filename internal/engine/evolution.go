package engine

import "petprogress/internal/state"

// XP deltas applied by the evolution engine.
const (
	XPOnTimeCheck = 2
	XPLateCheck   = 1
	XPMissPenalty = -2
	XPCloseoutPerMiss = -1
	XPCloseoutMorale  = -1
)

// DefaultMissThreshold is the miss count at which a closeout adds the
// one-time morale penalty on top of the per-task penalties.
const DefaultMissThreshold = 2

// Evolution is the pure pet-progression state machine. It owns no storage;
// callers pass in the PetState to mutate.
type Evolution struct {
	Stages        []Stage
	MissThreshold int
}

func NewEvolution(stages []Stage) *Evolution {
	if len(stages) == 0 {
		stages = DefaultStages
	}
	return &Evolution{Stages: stages, MissThreshold: DefaultMissThreshold}
}

// terminal reports whether i is the last stage, which has no upper
// threshold: no XP accumulates past it and no further evolution happens.
func (e *Evolution) terminal(i int) bool { return i >= len(e.Stages)-1 }

// Stage returns the ladder entry for a (clamped) stage index.
func (e *Evolution) Stage(i int) Stage {
	if i < 0 {
		i = 0
	}
	if i >= len(e.Stages) {
		i = len(e.Stages) - 1
	}
	return e.Stages[i]
}

// Threshold returns the XP needed to leave stage i (0 for the terminal stage).
func (e *Evolution) Threshold(i int) int {
	if e.terminal(i) {
		return 0
	}
	return e.Stage(i).Threshold
}

// OnCheck credits a check-in: 2 XP on time, 1 late, then evolves. At the
// terminal stage the credit is dropped. Returns the applied delta.
func (e *Evolution) OnCheck(p *state.PetState, onTime bool) int {
	if e.terminal(p.StageIndex) {
		return 0
	}
	delta := XPLateCheck
	if onTime {
		delta = XPOnTimeCheck
	}
	p.StageXP += delta
	e.evolve(p)
	return delta
}

// OnMiss debits a miss and de-evolves if XP went negative.
func (e *Evolution) OnMiss(p *state.PetState) int {
	p.StageXP += XPMissPenalty
	e.deEvolve(p)
	return XPMissPenalty
}

// CloseoutResult reports what a daily closeout did to the pet.
type CloseoutResult struct {
	DayKey      string
	Completed   int
	Missed      int
	XPDelta     int
	StageBefore int
	StageAfter  int
	Applied     bool
}

// DailyCloseout applies the end-of-day aggregate: -1 XP per missed task,
// plus one morale penalty when misses reach the threshold, then a
// de-evolve/evolve pass and the lastCloseoutDayKey stamp. A closeout for a
// day at or before the stamp is a no-op, so calling it twice for the same
// day leaves the pet unchanged.
func (e *Evolution) DailyCloseout(p *state.PetState, dayKey string, completed, missed int) CloseoutResult {
	res := CloseoutResult{
		DayKey:      dayKey,
		Completed:   completed,
		Missed:      missed,
		StageBefore: p.StageIndex,
		StageAfter:  p.StageIndex,
	}
	if p.LastCloseoutDayKey != "" && dayKey <= p.LastCloseoutDayKey {
		return res
	}

	delta := missed * XPCloseoutPerMiss
	if missed >= e.MissThreshold {
		delta += XPCloseoutMorale
	}
	p.StageXP += delta
	e.deEvolve(p)
	e.evolve(p)
	p.LastCloseoutDayKey = dayKey

	res.XPDelta = delta
	res.StageAfter = p.StageIndex
	res.Applied = true
	return res
}

// Normalize applies an evolve pass the schema migration could not: settling
// a legacy pending day happens without the stage ladder in reach, so a
// migrated pet can arrive with XP at or past its threshold. Stages reached
// this way do not re-celebrate. Reports whether the pet changed.
func (e *Evolution) Normalize(p *state.PetState) bool {
	before := *p
	e.evolve(p)
	if p.LastCelebratedStage < p.StageIndex {
		p.LastCelebratedStage = p.StageIndex
	}
	return *p != before
}

// evolve promotes while XP meets the current stage's threshold, resetting
// stage XP on each promotion. Stops at the terminal stage.
func (e *Evolution) evolve(p *state.PetState) {
	for !e.terminal(p.StageIndex) && p.StageXP >= e.Stages[p.StageIndex].Threshold {
		p.StageIndex++
		p.StageXP = 0
	}
}

// deEvolve demotes while XP is negative, landing one short of the previous
// stage's threshold (floored at 0). At stage 0 the XP is clamped to 0.
func (e *Evolution) deEvolve(p *state.PetState) {
	for p.StageXP < 0 && p.StageIndex > 0 {
		p.StageIndex--
		xp := e.Stages[p.StageIndex].Threshold - 1 + p.StageXP
		if xp < 0 {
			xp = 0
		}
		p.StageXP = xp
	}
	if p.StageXP < 0 {
		p.StageXP = 0
	}
}
