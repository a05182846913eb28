package progress

import "time"

// Strategy selects how rationality and decisiveness are recomputed.
type Strategy string

const (
	// StrategyAccuracy derives rationality from the correct/total ratio and
	// decisiveness from activity in a rolling window.
	StrategyAccuracy Strategy = "accuracy"
	// StrategyWeighted folds each new sample into the previous score as an
	// exponential moving average.
	StrategyWeighted Strategy = "weighted"
)

// Samples are optional 0-100 skill readings attached to a decision.
// Only the weighted strategy consumes them.
type Samples struct {
	Rationality  *int
	Decisiveness *int
	Empathy      *int
	Clarity      *int
}

// DecisionRecord is one completed scenario or challenge attempt.
type DecisionRecord struct {
	ScenarioID   string
	OptionChosen string
	IsCorrect    bool
	CompletedAt  time.Time
	Reflection   string
	Samples      Samples
}

// State is the per-user aggregate the engine folds decisions into.
type State struct {
	XP           int
	Level        int
	Streak       int
	Rationality  int
	Decisiveness int
	Empathy      int
	Clarity      int
	LastActivity time.Time
	Decisions    []DecisionRecord
}

// NewState returns the initial state of a user with no activity.
func NewState() State {
	return State{Level: 1}
}

// HasCompleted reports whether scenarioID is already in the history.
func (s State) HasCompleted(scenarioID string) bool {
	for _, d := range s.Decisions {
		if d.ScenarioID == scenarioID {
			return true
		}
	}
	return false
}

// CorrectCount returns the number of correct decisions.
func (s State) CorrectCount() int {
	n := 0
	for _, d := range s.Decisions {
		if d.IsCorrect {
			n++
		}
	}
	return n
}

func (s State) clone() State {
	out := s
	out.Decisions = make([]DecisionRecord, len(s.Decisions), len(s.Decisions)+1)
	copy(out.Decisions, s.Decisions)
	return out
}

// Outcome discriminates the result of RecordDecision.
type Outcome int

const (
	OutcomeRecorded Outcome = iota
	OutcomeAlreadyCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeAlreadyCompleted:
		return "already_completed"
	default:
		return "unknown"
	}
}

// Result carries the next state together with what happened.
type Result struct {
	State     State
	Outcome   Outcome
	XPAwarded int
	LeveledUp bool
}
