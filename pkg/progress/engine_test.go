package progress

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestRecordDecision_AlreadyCompletedLeavesStateUntouched(t *testing.T) {
	e := NewEngine(DefaultConfig())
	rec := DecisionRecord{ScenarioID: "s1", OptionChosen: "a", IsCorrect: true, CompletedAt: day(2024, 1, 10, 9)}

	first := e.RecordDecision(NewState(), rec, 10)
	require.Equal(t, OutcomeRecorded, first.Outcome)

	rec.CompletedAt = day(2024, 1, 11, 9)
	second := e.RecordDecision(first.State, rec, 10)

	assert.Equal(t, OutcomeAlreadyCompleted, second.Outcome)
	assert.Equal(t, first.State, second.State)
	assert.Zero(t, second.XPAwarded)
	assert.False(t, second.LeveledUp)
}

func TestRecordDecision_DoesNotMutateInput(t *testing.T) {
	e := NewEngine(DefaultConfig())
	state := NewState()
	state.Decisions = make([]DecisionRecord, 0, 8)

	res := e.RecordDecision(state, DecisionRecord{ScenarioID: "s1", IsCorrect: true, CompletedAt: day(2024, 1, 1, 0)}, 10)

	assert.Len(t, state.Decisions, 0)
	assert.Zero(t, state.XP)
	assert.Len(t, res.State.Decisions, 1)
}

func TestRecordDecision_XPAndLevelMonotonic(t *testing.T) {
	e := NewEngine(Config{XPPerLevel: 100})
	state := NewState()
	start := day(2024, 3, 1, 12)

	for i := 0; i < 25; i++ {
		award := 0
		if i%3 != 0 {
			award = 35
		}
		if i == 7 {
			award = -50
		}
		rec := DecisionRecord{
			ScenarioID:  fmt.Sprintf("s%d", i),
			IsCorrect:   award > 0,
			CompletedAt: start.Add(time.Duration(i) * 20 * time.Hour),
		}
		res := e.RecordDecision(state, rec, award)
		require.Equal(t, OutcomeRecorded, res.Outcome)
		assert.GreaterOrEqual(t, res.State.XP, state.XP)
		assert.GreaterOrEqual(t, res.State.Level, state.Level)
		assert.Len(t, res.State.Decisions, len(state.Decisions)+1)
		state = res.State
	}
}

func TestRecordDecision_LevelNeverDecreases(t *testing.T) {
	e := NewEngine(Config{XPPerLevel: 1000})
	state := State{XP: 600, Level: 7}

	res := e.RecordDecision(state, DecisionRecord{ScenarioID: "s1", CompletedAt: day(2024, 1, 1, 0)}, 50)

	assert.Equal(t, 650, res.State.XP)
	assert.Equal(t, 7, res.State.Level)
	assert.False(t, res.LeveledUp)
}

func TestRecordDecision_LevelUp(t *testing.T) {
	e := NewEngine(Config{XPPerLevel: 100})
	state := State{XP: 90, Level: 1}

	res := e.RecordDecision(state, DecisionRecord{ScenarioID: "s1", IsCorrect: true, CompletedAt: day(2024, 1, 1, 0)}, 20)

	assert.Equal(t, 110, res.State.XP)
	assert.Equal(t, 2, res.State.Level)
	assert.True(t, res.LeveledUp)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name       string
		xp         int
		xpPerLevel int
		want       int
	}{
		{name: "zero xp", xp: 0, xpPerLevel: 100, want: 1},
		{name: "exactly one level", xp: 100, xpPerLevel: 100, want: 2},
		{name: "four point nine levels", xp: 490, xpPerLevel: 100, want: 5},
		{name: "challenge profile", xp: 2450, xpPerLevel: 500, want: 5},
		{name: "reflection profile", xp: 1000, xpPerLevel: 1000, want: 2},
		{name: "invalid divisor falls back", xp: 250, xpPerLevel: 0, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.xp, tt.xpPerLevel))
		})
	}
}

func TestRecordDecision_Streak(t *testing.T) {
	e := NewEngine(DefaultConfig())
	base := State{Streak: 5, Level: 1, LastActivity: day(2024, 1, 10, 8)}

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{name: "same day later hour", at: day(2024, 1, 10, 23), want: 5},
		{name: "next day", at: day(2024, 1, 11, 0), want: 6},
		{name: "gap of two days", at: day(2024, 1, 13, 12), want: 1},
		{name: "a month later", at: day(2024, 2, 10, 12), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.RecordDecision(base, DecisionRecord{ScenarioID: "s", CompletedAt: tt.at}, 0)
			assert.Equal(t, tt.want, res.State.Streak)
			assert.Equal(t, tt.at, res.State.LastActivity)
		})
	}
}

func TestRecordDecision_FirstActivityStartsStreak(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.RecordDecision(NewState(), DecisionRecord{ScenarioID: "s", CompletedAt: day(2024, 1, 1, 0)}, 0)
	assert.Equal(t, 1, res.State.Streak)
}

func TestDaysBetween_UsesLocation(t *testing.T) {
	a := time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC)
	b := time.Date(2024, 1, 11, 0, 30, 0, 0, time.UTC)
	est := time.FixedZone("EST", -5*3600)

	assert.Equal(t, 1, DaysBetween(a, b, time.UTC))
	assert.Equal(t, 0, DaysBetween(a, b, est))
}

func TestRecordDecision_AccuracyRationality(t *testing.T) {
	e := NewEngine(Config{Strategy: StrategyAccuracy})
	state := NewState()
	results := []bool{true, false, true, true}

	for i, correct := range results {
		res := e.RecordDecision(state, DecisionRecord{
			ScenarioID:  fmt.Sprintf("s%d", i),
			IsCorrect:   correct,
			CompletedAt: day(2024, 5, 1+i, 10),
		}, 0)
		state = res.State
	}

	assert.Equal(t, 75, state.Rationality)
}

func TestRecordDecision_AccuracyDecisivenessWindow(t *testing.T) {
	e := NewEngine(Config{Strategy: StrategyAccuracy})
	now := day(2024, 5, 31, 10)
	state := NewState()
	state.Decisions = []DecisionRecord{
		{ScenarioID: "old", CompletedAt: now.AddDate(0, 0, -45)},
		{ScenarioID: "recent1", CompletedAt: now.AddDate(0, 0, -10)},
	}

	res := e.RecordDecision(state, DecisionRecord{ScenarioID: "new", CompletedAt: now}, 0)

	// two of three decisions fall inside the 30 day window
	assert.Equal(t, 7, res.State.Decisiveness)
}

func TestRecordDecision_AccuracyDecisivenessCapped(t *testing.T) {
	e := NewEngine(Config{Strategy: StrategyAccuracy, DecisivenessWindowDays: 2})
	now := day(2024, 5, 31, 10)
	state := NewState()
	state.Decisions = []DecisionRecord{
		{ScenarioID: "a", CompletedAt: now.Add(-time.Hour)},
		{ScenarioID: "b", CompletedAt: now.Add(-2 * time.Hour)},
	}

	res := e.RecordDecision(state, DecisionRecord{ScenarioID: "c", CompletedAt: now}, 0)

	assert.Equal(t, 100, res.State.Decisiveness)
}

func TestWeightedScore(t *testing.T) {
	assert.Equal(t, 66, WeightedScore(60, 90, 0.2))
	assert.Equal(t, 0, WeightedScore(0, -40, 0.2))
	assert.Equal(t, 100, WeightedScore(100, 250, 0.5))
}

func TestRecordDecision_WeightedStrategy(t *testing.T) {
	e := NewEngine(Config{Strategy: StrategyWeighted, XPPerLevel: 1000})
	state := State{Level: 1, Rationality: 60, Decisiveness: 50, Empathy: 40, Clarity: 70}

	res := e.RecordDecision(state, DecisionRecord{
		ScenarioID:  "s1",
		IsCorrect:   true,
		CompletedAt: day(2024, 1, 1, 0),
		Samples: Samples{
			Rationality: intPtr(90),
			Empathy:     intPtr(90),
		},
	}, 10)

	assert.Equal(t, 66, res.State.Rationality)
	// no decisiveness sample means a full-credit reading
	assert.Equal(t, 60, res.State.Decisiveness)
	assert.Equal(t, 50, res.State.Empathy)
	assert.Equal(t, 70, res.State.Clarity)
}

func TestRecordDecision_WeightedDerivesRationalityFromCorrectness(t *testing.T) {
	e := NewEngine(Config{Strategy: StrategyWeighted})
	state := State{Level: 1, Rationality: 50}

	res := e.RecordDecision(state, DecisionRecord{ScenarioID: "s1", IsCorrect: false, CompletedAt: day(2024, 1, 1, 0)}, 0)

	assert.Equal(t, 40, res.State.Rationality)
}

func TestRecordDecision_AccuracyIgnoresEmpathyAndClarity(t *testing.T) {
	e := NewEngine(DefaultConfig())
	state := State{Level: 1, Empathy: 33, Clarity: 44}

	res := e.RecordDecision(state, DecisionRecord{
		ScenarioID:  "s1",
		CompletedAt: day(2024, 1, 1, 0),
		Samples:     Samples{Empathy: intPtr(100), Clarity: intPtr(100)},
	}, 0)

	assert.Equal(t, 33, res.State.Empathy)
	assert.Equal(t, 44, res.State.Clarity)
}

func TestRecordDecision_FillsMissingTimestampFromClock(t *testing.T) {
	fixed := day(2024, 7, 4, 12)
	e := NewEngine(DefaultConfig(), WithClock(func() time.Time { return fixed }))

	res := e.RecordDecision(NewState(), DecisionRecord{ScenarioID: "s1"}, 0)

	assert.Equal(t, fixed, res.State.LastActivity)
	assert.Equal(t, fixed, res.State.Decisions[0].CompletedAt)
}

func TestConfigNormalized(t *testing.T) {
	cfg := NewEngine(Config{Strategy: "bogus", Weight: 3}).Config()

	assert.Equal(t, StrategyAccuracy, cfg.Strategy)
	assert.Equal(t, DefaultWeight, cfg.Weight)
	assert.Equal(t, DefaultXPPerLevel, cfg.XPPerLevel)
	assert.Equal(t, DefaultDecisivenessDays, cfg.DecisivenessWindowDays)
	assert.Equal(t, time.UTC, cfg.Location)
}
