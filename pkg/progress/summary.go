package progress

import "time"

const chartMonths = 6

type ChartPoint struct {
	Month     string `json:"month"`
	Decisions int    `json:"decisions"`
	Score     int    `json:"score"`
}

// Summary is the dashboard view of a State.
type Summary struct {
	OverallScore int          `json:"overall_score"`
	Completed    int          `json:"completed"`
	Correct      int          `json:"correct"`
	Chart        []ChartPoint `json:"chart"`
}

// Summarize builds the dashboard read model. The chart covers the six
// calendar months ending with the month of now, oldest first; Score is the
// share of correct decisions in that month.
func Summarize(state State, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(chartMonths - 1), 0)

	type bucket struct{ total, correct int }
	buckets := make([]bucket, chartMonths)
	for _, d := range state.Decisions {
		t := d.CompletedAt.In(loc)
		idx := (t.Year()-first.Year())*12 + int(t.Month()) - int(first.Month())
		if idx < 0 || idx >= chartMonths {
			continue
		}
		buckets[idx].total++
		if d.IsCorrect {
			buckets[idx].correct++
		}
	}

	chart := make([]ChartPoint, chartMonths)
	for i, b := range buckets {
		p := ChartPoint{Month: first.AddDate(0, i, 0).Format("Jan"), Decisions: b.total}
		if b.total > 0 {
			p.Score = roundInt(100 * float64(b.correct) / float64(b.total))
		}
		chart[i] = p
	}

	return Summary{
		OverallScore: roundInt(float64(state.Rationality+state.Decisiveness) / 2),
		Completed:    len(state.Decisions),
		Correct:      state.CorrectCount(),
		Chart:        chart,
	}
}
