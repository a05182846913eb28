package service

import (
	"context"
	"net/http"
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

func validScenarioRequest() *dto.CreateScenarioRequest {
	return &dto.CreateScenarioRequest{
		Title:       "  Budget cut  ",
		Description: "Your team budget was cut by 20%.",
		Category:    "Leadership",
		XpReward:    30,
		Difficulty:  2,
		Options: []dto.ScenarioOptionRequest{
			{Text: "Ask the team which work matters least", IsCorrect: true},
			{Text: "Cut the training budget silently"},
		},
	}
}

func TestBuildScenario_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.CreateScenarioRequest)
		ok     bool
	}{
		{"valid", func(r *dto.CreateScenarioRequest) {}, true},
		{"no correct option", func(r *dto.CreateScenarioRequest) { r.Options[0].IsCorrect = false }, false},
		{"duplicate option text", func(r *dto.CreateScenarioRequest) { r.Options[1].Text = " " + r.Options[0].Text }, false},
		{"blank option text", func(r *dto.CreateScenarioRequest) { r.Options[1].Text = "   " }, false},
		{"single option", func(r *dto.CreateScenarioRequest) { r.Options = r.Options[:1] }, false},
		{"challenge without date", func(r *dto.CreateScenarioRequest) { r.Type = string(entity.ScenarioTypeDailyChallenge) }, false},
		{"challenge with bad date", func(r *dto.CreateScenarioRequest) {
			r.Type = string(entity.ScenarioTypeDailyChallenge)
			r.ActiveDate = "01/05/2024"
		}, false},
		{"challenge with date", func(r *dto.CreateScenarioRequest) {
			r.Type = string(entity.ScenarioTypeDailyChallenge)
			r.ActiveDate = "2024-05-01"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validScenarioRequest()
			tt.mutate(req)

			scenario, err := buildScenario(uuid.New(), req)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "Budget cut", scenario.Title)
				return
			}
			var appErr *serverutils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
		})
	}
}

func TestScenarioService_CreateShowAndShare(t *testing.T) {
	f := newTestFactory(t)
	creator := seedUser(t, f, email("creator"))
	pub := &fakeEventPublisher{}
	svc := NewScenarioService(f, newTestCache(), pub, "https://app.decidely.test/", time.UTC, nopLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, creator.Id, validScenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, string(entity.ScenarioTypeScenario), created.Type)
	require.Len(t, created.Options, 2)
	assert.Equal(t, 1, created.Options[1].Index)
	assert.Equal(t, []string{events.TypeScenarioCreated}, pub.types())

	shown, err := svc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Title, shown.Title)

	share, err := svc.Share(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "https://app.decidely.test/dashboard/scenarios/"+created.Id.String(), share.ShareURL)

	_, err = svc.Show(ctx, uuid.New())
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestScenarioService_ListFiltersAndPaginates(t *testing.T) {
	f := newTestFactory(t)
	for i := 0; i < 5; i++ {
		seedScenario(t, f, &entity.Scenario{Category: "Finance", Difficulty: 3})
	}
	seedScenario(t, f, &entity.Scenario{Category: "Career", Difficulty: 1})
	svc := NewScenarioService(f, newTestCache(), nil, "", nil, nopLogger())
	ctx := context.Background()

	finance, err := svc.List(ctx, &dto.ListScenariosQuery{Category: "Finance", Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, finance.Total)
	assert.Len(t, finance.Items, 2)
	assert.Equal(t, 2, finance.Page)

	easy, err := svc.List(ctx, &dto.ListScenariosQuery{Difficulty: 1})
	require.NoError(t, err)
	require.Len(t, easy.Items, 1)
	assert.Equal(t, "Career", easy.Items[0].Category)
}

func TestScenarioService_DailyChallengesMarksCompleted(t *testing.T) {
	f := newTestFactory(t)
	user := seedUser(t, f, email("daily"))
	today := time.Now().UTC().Format(entity.ActiveDateLayout)

	done := seedScenario(t, f, &entity.Scenario{Type: entity.ScenarioTypeDailyChallenge, ActiveDate: today, XpReward: 10})
	open := seedScenario(t, f, &entity.Scenario{Type: entity.ScenarioTypeDailyChallenge, ActiveDate: today, XpReward: 10})
	seedScenario(t, f, &entity.Scenario{Type: entity.ScenarioTypeDailyChallenge, ActiveDate: "2000-01-01"})

	cache := newTestCache()
	progressSvc := NewProgressService(f, testEngines(), cache, nil, nil, nopLogger())
	_, err := progressSvc.CompleteChallenge(context.Background(), user.Id, &dto.CompleteChallengeRequest{ChallengeId: done.Id})
	require.NoError(t, err)

	svc := NewScenarioService(f, cache, nil, "", time.UTC, nopLogger())
	list, err := svc.DailyChallenges(context.Background(), user.Id)
	require.NoError(t, err)
	require.Len(t, list, 2)

	completed := map[uuid.UUID]bool{}
	for _, c := range list {
		completed[c.Id] = c.Completed
	}
	assert.True(t, completed[done.Id])
	assert.False(t, completed[open.Id])
}
