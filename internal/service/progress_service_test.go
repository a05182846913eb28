package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressFixture struct {
	svc      IProgressService
	events   *fakeEventPublisher
	attempts *fakeAttemptPublisher
	clock    *steppingClock
}

func newProgressFixture(t *testing.T) (*progressFixture, func(s *entity.Scenario) *entity.Scenario, uuid.UUID) {
	t.Helper()
	f := newTestFactory(t)
	user := seedUser(t, f, email("progress"))

	fx := &progressFixture{
		events:   &fakeEventPublisher{},
		attempts: &fakeAttemptPublisher{},
		clock:    &steppingClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	fx.svc = NewProgressService(f, testEngines(), newTestCache(), fx.attempts, fx.events, nopLogger(),
		WithProgressClock(fx.clock.Now))

	seed := func(s *entity.Scenario) *entity.Scenario { return seedScenario(t, f, s) }
	return fx, seed, user.Id
}

func TestProgressService_InitIsIdempotent(t *testing.T) {
	fx, _, userID := newProgressFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Init(ctx, userID)
	require.NoError(t, err)
	second, err := fx.svc.Init(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Level)
	assert.Zero(t, first.Xp)
	assert.Equal(t, first, second)
}

func TestProgressService_GetWithoutRowReturnsInitialState(t *testing.T) {
	fx, _, _ := newProgressFixture(t)

	res, err := fx.svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Level)
	assert.Zero(t, res.CompletedScenarios)
	assert.Empty(t, res.RecentDecisions)
}

func TestProgressService_SubmitScenarioResponse(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()
	scenario := seed(&entity.Scenario{XpReward: 40})

	res, err := fx.svc.SubmitScenarioResponse(ctx, userID, &dto.SubmitScenarioResponseRequest{
		ScenarioId:   scenario.Id,
		OptionChosen: "right",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRecorded, res.Status)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, "well reasoned", res.Feedback)
	assert.Equal(t, 40, res.XpAwarded)
	assert.Equal(t, 40, res.Progress.Xp)
	assert.Equal(t, 1, res.Progress.Streak)
	assert.Equal(t, 1, res.Progress.CompletedScenarios)
	assert.Equal(t, 100, res.Progress.RationalityScore)
	require.Len(t, res.Progress.RecentDecisions, 1)
	assert.Equal(t, scenario.Id.String(), res.Progress.RecentDecisions[0].ScenarioId)

	stored, err := fx.svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Xp)
	assert.Equal(t, 1, stored.CompletedScenarios)

	require.Len(t, fx.attempts.payloads, 1)
	var msg dto.ScenarioAttemptMessage
	require.NoError(t, json.Unmarshal(fx.attempts.payloads[0], &msg))
	assert.Equal(t, scenario.Id, msg.ScenarioId)
	assert.True(t, msg.Successful)
}

func TestProgressService_WrongAnswerAwardsNoXP(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	scenario := seed(&entity.Scenario{XpReward: 40})

	res, err := fx.svc.SubmitScenarioResponse(context.Background(), userID, &dto.SubmitScenarioResponseRequest{
		ScenarioId:   scenario.Id,
		OptionChosen: "wrong",
	})
	require.NoError(t, err)

	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.XpAwarded)
	assert.Zero(t, res.Progress.Xp)
	assert.Zero(t, res.Progress.RationalityScore)
	assert.Equal(t, 1, res.Progress.CompletedScenarios)
}

func TestProgressService_SecondSubmitIsAlreadyCompleted(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()
	scenario := seed(&entity.Scenario{XpReward: 40})
	req := &dto.SubmitScenarioResponseRequest{ScenarioId: scenario.Id, OptionChosen: "right"}

	first, err := fx.svc.SubmitScenarioResponse(ctx, userID, req)
	require.NoError(t, err)

	fx.clock.Advance(24 * time.Hour)
	req.OptionChosen = "wrong"
	second, err := fx.svc.SubmitScenarioResponse(ctx, userID, req)
	require.NoError(t, err)

	assert.Equal(t, StatusAlreadyCompleted, second.Status)
	assert.Zero(t, second.XpAwarded)
	assert.Equal(t, first.Progress.Xp, second.Progress.Xp)
	assert.Equal(t, first.Progress.Streak, second.Progress.Streak)
	assert.Equal(t, 1, second.Progress.CompletedScenarios)
	assert.Len(t, fx.attempts.payloads, 1)
}

func TestProgressService_ConcurrentSubmitsRecordOnce(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()
	scenario := seed(&entity.Scenario{XpReward: 40})

	const workers = 5
	statuses := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := fx.svc.SubmitScenarioResponse(ctx, userID, &dto.SubmitScenarioResponseRequest{
				ScenarioId:   scenario.Id,
				OptionChosen: "right",
			})
			errs[i] = err
			if res != nil {
				statuses[i] = res.Status
			}
		}(i)
	}
	wg.Wait()

	recorded := 0
	for i := range statuses {
		require.NoError(t, errs[i])
		if statuses[i] == StatusRecorded {
			recorded++
		}
	}
	assert.Equal(t, 1, recorded)

	final, err := fx.svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, final.Xp)
	assert.Equal(t, 1, final.CompletedScenarios)
}

func TestProgressService_LevelUpPublishesEvents(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	scenario := seed(&entity.Scenario{XpReward: 100})

	res, err := fx.svc.SubmitScenarioResponse(context.Background(), userID, &dto.SubmitScenarioResponseRequest{
		ScenarioId:   scenario.Id,
		OptionChosen: "right",
	})
	require.NoError(t, err)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Progress.Level)
	assert.Equal(t, []string{events.TypeDecisionRecorded, events.TypeLevelUp}, fx.events.types())
}

func TestProgressService_StreakMilestoneEvent(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()

	for day := 0; day < 3; day++ {
		scenario := seed(&entity.Scenario{XpReward: 10})
		_, err := fx.svc.SubmitScenarioResponse(ctx, userID, &dto.SubmitScenarioResponseRequest{
			ScenarioId:   scenario.Id,
			OptionChosen: "right",
		})
		require.NoError(t, err)
		fx.clock.Advance(24 * time.Hour)
	}

	final, err := fx.svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, final.Streak)
	assert.Contains(t, fx.events.types(), events.TypeStreakMilestone)
}

func TestProgressService_EventFailureDoesNotUndoDecision(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	fx.events.err = errors.New("nats down")
	scenario := seed(&entity.Scenario{XpReward: 10})

	res, err := fx.svc.SubmitScenarioResponse(context.Background(), userID, &dto.SubmitScenarioResponseRequest{
		ScenarioId:   scenario.Id,
		OptionChosen: "right",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRecorded, res.Status)
}

func TestProgressService_SubmitValidation(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()
	scenario := seed(&entity.Scenario{XpReward: 10})
	challenge := seed(&entity.Scenario{Type: entity.ScenarioTypeDailyChallenge, ActiveDate: "2024-05-01"})

	tests := []struct {
		name string
		req  *dto.SubmitScenarioResponseRequest
		code int
	}{
		{"unknown scenario", &dto.SubmitScenarioResponseRequest{ScenarioId: uuid.New(), OptionChosen: "right"}, http.StatusNotFound},
		{"unknown option", &dto.SubmitScenarioResponseRequest{ScenarioId: scenario.Id, OptionChosen: "maybe"}, http.StatusBadRequest},
		{"daily challenge", &dto.SubmitScenarioResponseRequest{ScenarioId: challenge.Id, OptionChosen: "right"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.SubmitScenarioResponse(ctx, userID, tt.req)
			var appErr *serverutils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestProgressService_CompleteChallenge(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()
	challenge := seed(&entity.Scenario{Type: entity.ScenarioTypeDailyChallenge, ActiveDate: "2024-05-01", XpReward: 25})

	res, err := fx.svc.CompleteChallenge(ctx, userID, &dto.CompleteChallengeRequest{ChallengeId: challenge.Id})
	require.NoError(t, err)
	assert.Equal(t, StatusRecorded, res.Status)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 25, res.XpAwarded)
	assert.Equal(t, "completed", res.Progress.RecentDecisions[0].OptionChosen)

	again, err := fx.svc.CompleteChallenge(ctx, userID, &dto.CompleteChallengeRequest{ChallengeId: challenge.Id})
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyCompleted, again.Status)
}

func TestProgressService_CompleteChallengeRejectsRegularScenario(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	scenario := seed(&entity.Scenario{XpReward: 10})

	_, err := fx.svc.CompleteChallenge(context.Background(), userID, &dto.CompleteChallengeRequest{ChallengeId: scenario.Id})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestProgressService_CompleteScenarioWithReflection(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()
	scenario := seed(&entity.Scenario{XpReward: 60})

	idx := 1
	empathy := 80
	res, err := fx.svc.CompleteScenario(ctx, userID, &dto.CompleteScenarioRequest{
		ScenarioId:  scenario.Id,
		OptionIndex: &idx,
		Reflection:  "I rushed it",
		Scores:      &dto.ScoreSamples{Empathy: &empathy},
	})
	require.NoError(t, err)

	// the option is flagged wrong in the catalog, but a reflection still counts as correct
	assert.True(t, res.IsCorrect)
	assert.True(t, res.Progress.RecentDecisions[0].IsCorrect)
	assert.Equal(t, 60, res.XpAwarded)
	// weighted: 0*0.8 + 100*0.2 for rationality and decisiveness
	assert.Equal(t, 20, res.Progress.RationalityScore)
	assert.Equal(t, 20, res.Progress.DecisivenessScore)
	assert.Equal(t, 16, res.Progress.EmpathyScore)
	assert.Zero(t, res.Progress.ClarityScore)
	assert.Equal(t, "I rushed it", res.Progress.RecentDecisions[0].Reflection)

	bad := 9
	_, err = fx.svc.CompleteScenario(ctx, userID, &dto.CompleteScenarioRequest{ScenarioId: scenario.Id, OptionIndex: &bad})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestProgressService_RecentDecisionsNewestFirst(t *testing.T) {
	fx, seed, userID := newProgressFixture(t)
	ctx := context.Background()

	var last uuid.UUID
	for i := 0; i < 7; i++ {
		scenario := seed(&entity.Scenario{XpReward: 1})
		_, err := fx.svc.SubmitScenarioResponse(ctx, userID, &dto.SubmitScenarioResponseRequest{
			ScenarioId:   scenario.Id,
			OptionChosen: "right",
		})
		require.NoError(t, err)
		last = scenario.Id
		fx.clock.Advance(time.Hour)
	}

	res, err := fx.svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, res.CompletedScenarios)
	require.Len(t, res.RecentDecisions, 5)
	assert.Equal(t, last.String(), res.RecentDecisions[0].ScenarioId)
}
