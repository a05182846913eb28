package progress

import (
	"math"
	"time"
)

const (
	DefaultXPPerLevel       = 100
	DefaultWeight           = 0.2
	DefaultDecisivenessDays = 30
)

// Config tunes one scoring profile.
type Config struct {
	XPPerLevel             int
	Strategy               Strategy
	Weight                 float64
	DecisivenessWindowDays int
	// Location decides calendar-day boundaries for streaks.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		XPPerLevel:             DefaultXPPerLevel,
		Strategy:               StrategyAccuracy,
		Weight:                 DefaultWeight,
		DecisivenessWindowDays: DefaultDecisivenessDays,
		Location:               time.UTC,
	}
}

func (c Config) normalized() Config {
	if c.XPPerLevel <= 0 {
		c.XPPerLevel = DefaultXPPerLevel
	}
	if c.Strategy != StrategyWeighted {
		c.Strategy = StrategyAccuracy
	}
	if c.Weight <= 0 || c.Weight > 1 {
		c.Weight = DefaultWeight
	}
	if c.DecisivenessWindowDays <= 0 {
		c.DecisivenessWindowDays = DefaultDecisivenessDays
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// Engine folds decisions into a State. It holds no per-user data and is safe
// for concurrent use.
type Engine struct {
	cfg   Config
	clock func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source used when a record has no CompletedAt.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg.normalized(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

// RecordDecision returns the state after applying record. A scenario that is
// already in the history yields OutcomeAlreadyCompleted and the input state
// unchanged. The input state is never mutated.
func (e *Engine) RecordDecision(state State, record DecisionRecord, xpAward int) Result {
	if state.HasCompleted(record.ScenarioID) {
		return Result{State: state, Outcome: OutcomeAlreadyCompleted}
	}
	if record.CompletedAt.IsZero() {
		record.CompletedAt = e.clock()
	}
	if xpAward < 0 {
		xpAward = 0
	}
	now := record.CompletedAt

	next := state.clone()
	next.Decisions = append(next.Decisions, record)

	next.XP = state.XP + xpAward
	next.Level = max(state.Level, LevelFor(next.XP, e.cfg.XPPerLevel))

	switch e.cfg.Strategy {
	case StrategyWeighted:
		e.applyWeighted(&next, record)
	default:
		e.applyAccuracy(&next, now)
	}

	next.Streak = NextStreak(state.Streak, state.LastActivity, now, e.cfg.Location)
	next.LastActivity = now

	return Result{
		State:     next,
		Outcome:   OutcomeRecorded,
		XPAwarded: xpAward,
		LeveledUp: next.Level > state.Level,
	}
}

func (e *Engine) applyAccuracy(s *State, now time.Time) {
	total := len(s.Decisions)
	if total > 0 {
		s.Rationality = clampScore(roundInt(100 * float64(s.CorrectCount()) / float64(total)))
	}

	window := e.cfg.DecisivenessWindowDays
	since := now.AddDate(0, 0, -window)
	recent := 0
	for _, d := range s.Decisions {
		if d.CompletedAt.After(since) && !d.CompletedAt.After(now) {
			recent++
		}
	}
	s.Decisiveness = clampScore(roundInt(100 * float64(recent) / float64(window)))
}

func (e *Engine) applyWeighted(s *State, record DecisionRecord) {
	rationality := 0
	if record.IsCorrect {
		rationality = 100
	}
	if record.Samples.Rationality != nil {
		rationality = *record.Samples.Rationality
	}
	s.Rationality = WeightedScore(s.Rationality, rationality, e.cfg.Weight)

	decisiveness := 100
	if record.Samples.Decisiveness != nil {
		decisiveness = *record.Samples.Decisiveness
	}
	s.Decisiveness = WeightedScore(s.Decisiveness, decisiveness, e.cfg.Weight)

	if record.Samples.Empathy != nil {
		s.Empathy = WeightedScore(s.Empathy, *record.Samples.Empathy, e.cfg.Weight)
	}
	if record.Samples.Clarity != nil {
		s.Clarity = WeightedScore(s.Clarity, *record.Samples.Clarity, e.cfg.Weight)
	}
}

// LevelFor returns floor(xp/xpPerLevel)+1.
func LevelFor(xp, xpPerLevel int) int {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

// WeightedScore blends sample into prev with the given weight on the sample.
func WeightedScore(prev, sample int, weight float64) int {
	sample = clampScore(sample)
	return clampScore(roundInt(float64(prev)*(1-weight) + float64(sample)*weight))
}

// NextStreak compares calendar dates in loc: same day keeps the streak, the
// following day extends it, anything else restarts it at 1.
func NextStreak(streak int, last, now time.Time, loc *time.Location) int {
	if last.IsZero() {
		return 1
	}
	switch DaysBetween(last, now, loc) {
	case 0:
		if streak < 1 {
			return 1
		}
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

// DaysBetween returns the number of calendar days from a to b in loc.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	a = a.In(loc)
	b = b.In(loc)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
