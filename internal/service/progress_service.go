package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/contract"
	"decidely-be/internal/repository/memory"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/pkg/events"
	"decidely-be/pkg/progress"

	"github.com/google/uuid"
)

const (
	StatusRecorded         = "recorded"
	StatusAlreadyCompleted = "already_completed"

	recentDecisionsLimit = 5
	challengeCompleted   = "completed"
)

type IProgressService interface {
	Init(ctx context.Context, userId uuid.UUID) (*dto.ProgressResponse, error)
	Get(ctx context.Context, userId uuid.UUID) (*dto.ProgressResponse, error)
	SubmitScenarioResponse(ctx context.Context, userId uuid.UUID, req *dto.SubmitScenarioResponseRequest) (*dto.DecisionResultResponse, error)
	CompleteChallenge(ctx context.Context, userId uuid.UUID, req *dto.CompleteChallengeRequest) (*dto.DecisionResultResponse, error)
	CompleteScenario(ctx context.Context, userId uuid.UUID, req *dto.CompleteScenarioRequest) (*dto.DecisionResultResponse, error)
}

type progressService struct {
	uowFactory       unitofwork.RepositoryFactory
	engines          progress.Engines
	cache            *memory.ScenarioCache
	publisherService IPublisherService
	eventPublisher   events.Publisher
	location         *time.Location
	clock            func() time.Time
	logger           logger.ILogger
}

type ProgressOption func(*progressService)

// WithProgressClock overrides the time source, mainly for tests.
func WithProgressClock(clock func() time.Time) ProgressOption {
	return func(s *progressService) {
		s.clock = clock
	}
}

func NewProgressService(
	uowFactory unitofwork.RepositoryFactory,
	engines progress.Engines,
	cache *memory.ScenarioCache,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
	opts ...ProgressOption,
) IProgressService {
	location := time.UTC
	if engine, err := engines.Get(progress.ProfileScenario); err == nil {
		location = engine.Config().Location
	}

	s := &progressService{
		uowFactory:       uowFactory,
		engines:          engines,
		cache:            cache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		location:         location,
		clock:            time.Now,
		logger:           log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// decisionInput is what an entry point resolved from its request before the
// engine runs.
type decisionInput struct {
	profile      string
	scenario     *entity.Scenario
	optionChosen string
	isCorrect    bool
	feedback     string
	xpAward      int
	reflection   string
	samples      progress.Samples
}

func (s *progressService) Init(ctx context.Context, userId uuid.UUID) (*dto.ProgressResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProgressRepository().Ensure(ctx, userId); err != nil {
		return nil, err
	}
	return s.Get(ctx, userId)
}

func (s *progressService) Get(ctx context.Context, userId uuid.UUID) (*dto.ProgressResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	current, err := uow.ProgressRepository().FindByUserID(ctx, userId)
	if err != nil {
		return nil, err
	}

	state := progress.NewState()
	if current != nil {
		state = current.State
	}
	res := s.toProgressResponse(state)
	return &res, nil
}

func (s *progressService) SubmitScenarioResponse(ctx context.Context, userId uuid.UUID, req *dto.SubmitScenarioResponseRequest) (*dto.DecisionResultResponse, error) {
	scenario, err := s.loadScenario(ctx, req.ScenarioId, entity.ScenarioTypeScenario)
	if err != nil {
		return nil, err
	}

	_, option, ok := scenario.OptionByText(req.OptionChosen)
	if !ok {
		return nil, serverutils.BadRequest("optionChosen does not match any option of the scenario")
	}

	return s.record(ctx, userId, decisionInput{
		profile:      progress.ProfileScenario,
		scenario:     scenario,
		optionChosen: option.Text,
		isCorrect:    option.IsCorrect,
		feedback:     option.Feedback,
		xpAward:      awardIf(option.IsCorrect, scenario.XpReward),
	})
}

func (s *progressService) CompleteChallenge(ctx context.Context, userId uuid.UUID, req *dto.CompleteChallengeRequest) (*dto.DecisionResultResponse, error) {
	challenge, err := s.loadScenario(ctx, req.ChallengeId, entity.ScenarioTypeDailyChallenge)
	if err != nil {
		return nil, err
	}

	in := decisionInput{
		profile:      progress.ProfileChallenge,
		scenario:     challenge,
		optionChosen: challengeCompleted,
		isCorrect:    true,
		xpAward:      challenge.XpReward,
	}
	if req.OptionChosen != "" {
		_, option, ok := challenge.OptionByText(req.OptionChosen)
		if !ok {
			return nil, serverutils.BadRequest("optionChosen does not match any option of the challenge")
		}
		in.optionChosen = option.Text
		in.isCorrect = option.IsCorrect
		in.feedback = option.Feedback
		in.xpAward = awardIf(option.IsCorrect, challenge.XpReward)
	}

	return s.record(ctx, userId, in)
}

func (s *progressService) CompleteScenario(ctx context.Context, userId uuid.UUID, req *dto.CompleteScenarioRequest) (*dto.DecisionResultResponse, error) {
	scenario, err := s.loadScenario(ctx, req.ScenarioId, entity.ScenarioTypeScenario)
	if err != nil {
		return nil, err
	}

	option, ok := scenario.Option(*req.OptionIndex)
	if !ok {
		return nil, serverutils.BadRequest(fmt.Sprintf("optionIndex must be between 0 and %d", len(scenario.Options)-1))
	}

	var samples progress.Samples
	if req.Scores != nil {
		samples = progress.Samples{
			Rationality:  req.Scores.Rationality,
			Decisiveness: req.Scores.Decisiveness,
			Empathy:      req.Scores.Empathy,
			Clarity:      req.Scores.Clarity,
		}
	}

	// A reflective completion has no wrong answer: it is always recorded as
	// correct and earns the catalog reward. Skill samples drive the scores.
	return s.record(ctx, userId, decisionInput{
		profile:      progress.ProfileReflection,
		scenario:     scenario,
		optionChosen: option.Text,
		isCorrect:    true,
		feedback:     option.Feedback,
		xpAward:      scenario.XpReward,
		reflection:   req.Reflection,
		samples:      samples,
	})
}

func (s *progressService) loadScenario(ctx context.Context, id uuid.UUID, want entity.ScenarioType) (*entity.Scenario, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scenario, err := findScenario(ctx, uow, s.cache, id)
	if err != nil {
		return nil, err
	}
	if scenario.Type != want {
		if want == entity.ScenarioTypeDailyChallenge {
			return nil, serverutils.NotFound("Challenge not found")
		}
		return nil, serverutils.BadRequest("Daily challenges are completed through /challenges/complete")
	}
	return scenario, nil
}

// record runs the engine inside one transaction that holds the user's
// progress row lock. The unique index on (user_id, scenario_id) backs up the
// engine's own duplicate check.
func (s *progressService) record(ctx context.Context, userId uuid.UUID, in decisionInput) (*dto.DecisionResultResponse, error) {
	engine, err := s.engines.Get(in.profile)
	if err != nil {
		return nil, serverutils.Internal(err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.ProgressRepository()
	if err := repo.Ensure(ctx, userId); err != nil {
		return nil, err
	}
	current, err := repo.FindByUserIDForUpdate(ctx, userId)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, serverutils.Internal(fmt.Errorf("progress row for user %s missing after ensure", userId))
	}

	now := s.clock()
	result := engine.RecordDecision(current.State, progress.DecisionRecord{
		ScenarioID:   in.scenario.Id.String(),
		OptionChosen: in.optionChosen,
		IsCorrect:    in.isCorrect,
		CompletedAt:  now,
		Reflection:   in.reflection,
		Samples:      in.samples,
	}, in.xpAward)

	if result.Outcome == progress.OutcomeAlreadyCompleted {
		return s.alreadyCompleted(current.State), nil
	}

	decision := &entity.DecisionRecord{
		Id:           uuid.New(),
		UserId:       userId,
		ScenarioId:   in.scenario.Id,
		Profile:      in.profile,
		OptionChosen: in.optionChosen,
		IsCorrect:    in.isCorrect,
		XpAwarded:    result.XPAwarded,
		Reflection:   in.reflection,
		Samples:      in.samples,
		CompletedAt:  now,
	}
	if err := repo.CreateDecision(ctx, decision); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return s.alreadyCompleted(current.State), nil
		}
		return nil, err
	}

	previous := current.State
	current.State = result.State
	if err := repo.Save(ctx, current); err != nil {
		if errors.Is(err, contract.ErrStaleVersion) {
			return nil, serverutils.Conflict("Progress changed concurrently, please retry")
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.afterRecorded(ctx, userId, in, previous, result)

	return &dto.DecisionResultResponse{
		Status:    StatusRecorded,
		IsCorrect: in.isCorrect,
		Feedback:  in.feedback,
		XpAwarded: result.XPAwarded,
		LeveledUp: result.LeveledUp,
		Progress:  s.toProgressResponse(result.State),
	}, nil
}

func (s *progressService) alreadyCompleted(state progress.State) *dto.DecisionResultResponse {
	return &dto.DecisionResultResponse{
		Status:   StatusAlreadyCompleted,
		Progress: s.toProgressResponse(state),
	}
}

// afterRecorded runs once the transaction is committed. Failures here never
// undo the decision.
func (s *progressService) afterRecorded(ctx context.Context, userId uuid.UUID, in decisionInput, previous progress.State, result progress.Result) {
	if s.publisherService != nil {
		payload, err := json.Marshal(dto.ScenarioAttemptMessage{ScenarioId: in.scenario.Id, Successful: in.isCorrect})
		if err == nil {
			err = s.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("ProgressService", "Failed to queue attempt statistics", map[string]interface{}{
				"scenario_id": in.scenario.Id,
				"error":       err.Error(),
			})
		}
	}

	if s.eventPublisher == nil {
		return
	}

	at := result.State.LastActivity
	evts := []events.Event{
		events.NewDecisionRecorded(userId, in.scenario.Id, in.scenario.Title, result.XPAwarded, at),
	}
	if result.LeveledUp {
		evts = append(evts, events.NewLevelUp(userId, result.State.Level, at))
	}
	if result.State.Streak != previous.Streak && events.StreakMilestones[result.State.Streak] {
		evts = append(evts, events.NewStreakMilestone(userId, result.State.Streak, at))
	}

	for _, evt := range evts {
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ProgressService", "Failed to publish event", map[string]interface{}{
				"type":    evt.EventType(),
				"user_id": userId,
				"error":   err.Error(),
			})
		}
	}
}

func (s *progressService) toProgressResponse(state progress.State) dto.ProgressResponse {
	summary := progress.Summarize(state, s.clock(), s.location)

	recent := make([]dto.DecisionResponse, 0, recentDecisionsLimit)
	for i := len(state.Decisions) - 1; i >= 0 && len(recent) < recentDecisionsLimit; i-- {
		d := state.Decisions[i]
		recent = append(recent, dto.DecisionResponse{
			ScenarioId:   d.ScenarioID,
			OptionChosen: d.OptionChosen,
			IsCorrect:    d.IsCorrect,
			Reflection:   d.Reflection,
			CompletedAt:  d.CompletedAt,
		})
	}

	var lastActivity *time.Time
	if !state.LastActivity.IsZero() {
		t := state.LastActivity
		lastActivity = &t
	}

	return dto.ProgressResponse{
		Xp:                 state.XP,
		Level:              state.Level,
		Streak:             state.Streak,
		RationalityScore:   state.Rationality,
		DecisivenessScore:  state.Decisiveness,
		EmpathyScore:       state.Empathy,
		ClarityScore:       state.Clarity,
		LastActivityDate:   lastActivity,
		CompletedScenarios: summary.Completed,
		CorrectDecisions:   summary.Correct,
		OverallScore:       summary.OverallScore,
		Chart:              summary.Chart,
		RecentDecisions:    recent,
	}
}

func awardIf(ok bool, xp int) int {
	if ok {
		return xp
	}
	return 0
}
