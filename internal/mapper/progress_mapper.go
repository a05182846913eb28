package mapper

import (
	"decidely-be/internal/entity"
	"decidely-be/internal/model"
	"decidely-be/pkg/progress"

	"gorm.io/datatypes"
)

type ProgressMapper struct{}

func NewProgressMapper() *ProgressMapper {
	return &ProgressMapper{}
}

// ToEntity assembles the aggregate from its row and decision history.
// decisions must be ordered by completion time.
func (m *ProgressMapper) ToEntity(p *model.UserProgress, decisions []*model.DecisionRecord) *entity.UserProgress {
	if p == nil {
		return nil
	}
	state := progress.State{
		XP:           p.Xp,
		Level:        p.Level,
		Streak:       p.Streak,
		Rationality:  p.RationalityScore,
		Decisiveness: p.DecisivenessScore,
		Empathy:      p.EmpathyScore,
		Clarity:      p.ClarityScore,
		Decisions:    make([]progress.DecisionRecord, 0, len(decisions)),
	}
	if p.LastActivityAt != nil {
		state.LastActivity = *p.LastActivityAt
	}
	for _, d := range decisions {
		rec := m.DecisionToEntity(d)
		state.Decisions = append(state.Decisions, rec.ToProgressRecord())
	}
	if state.Level < 1 {
		state.Level = 1
	}

	return &entity.UserProgress{
		Id:        p.Id,
		UserId:    p.UserId,
		State:     state,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToModel flattens the aggregate. Decisions are persisted separately.
func (m *ProgressMapper) ToModel(p *entity.UserProgress) *model.UserProgress {
	if p == nil {
		return nil
	}
	out := &model.UserProgress{
		Id:                p.Id,
		UserId:            p.UserId,
		Xp:                p.State.XP,
		Level:             p.State.Level,
		Streak:            p.State.Streak,
		RationalityScore:  p.State.Rationality,
		DecisivenessScore: p.State.Decisiveness,
		EmpathyScore:      p.State.Empathy,
		ClarityScore:      p.State.Clarity,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if !p.State.LastActivity.IsZero() {
		last := p.State.LastActivity
		out.LastActivityAt = &last
	}
	return out
}

func (m *ProgressMapper) DecisionToEntity(d *model.DecisionRecord) *entity.DecisionRecord {
	if d == nil {
		return nil
	}
	samples := d.Samples.Data()
	out := &entity.DecisionRecord{
		Id:           d.Id,
		UserId:       d.UserId,
		ScenarioId:   d.ScenarioId,
		Profile:      d.Profile,
		OptionChosen: d.OptionChosen,
		IsCorrect:    d.IsCorrect,
		XpAwarded:    d.XpAwarded,
		Samples: progress.Samples{
			Rationality:  samples.Rationality,
			Decisiveness: samples.Decisiveness,
			Empathy:      samples.Empathy,
			Clarity:      samples.Clarity,
		},
		CompletedAt: d.CompletedAt,
	}
	if d.Reflection != nil {
		out.Reflection = *d.Reflection
	}
	return out
}

func (m *ProgressMapper) DecisionToModel(d *entity.DecisionRecord) *model.DecisionRecord {
	if d == nil {
		return nil
	}
	out := &model.DecisionRecord{
		Id:           d.Id,
		UserId:       d.UserId,
		ScenarioId:   d.ScenarioId,
		Profile:      d.Profile,
		OptionChosen: d.OptionChosen,
		IsCorrect:    d.IsCorrect,
		XpAwarded:    d.XpAwarded,
		Samples: datatypes.NewJSONType(model.DecisionSamples{
			Rationality:  d.Samples.Rationality,
			Decisiveness: d.Samples.Decisiveness,
			Empathy:      d.Samples.Empathy,
			Clarity:      d.Samples.Clarity,
		}),
		CompletedAt: d.CompletedAt,
	}
	if d.Reflection != "" {
		reflection := d.Reflection
		out.Reflection = &reflection
	}
	return out
}

func (m *ProgressMapper) DecisionsToEntities(records []*model.DecisionRecord) []*entity.DecisionRecord {
	out := make([]*entity.DecisionRecord, len(records))
	for i, r := range records {
		out[i] = m.DecisionToEntity(r)
	}
	return out
}
