package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/memory"
	"decidely-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJwtSecret = "test-secret"

func TestAuthService_RegisterLoginMe(t *testing.T) {
	f := newTestFactory(t)
	svc := NewAuthService(f, testJwtSecret, time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "  Dana@Example.com ",
		Password: "correct-horse",
		FullName: "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	userID, err := serverutils.ParseToken(registered.Token, testJwtSecret)
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, userID)

	// registration also creates the progress row
	progress, err := f.NewUnitOfWork(ctx).ProgressRepository().FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 1, progress.State.Level)

	loggedIn, err := svc.Login(ctx, &dto.LoginRequest{Email: "DANA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, userID, loggedIn.User.Id)

	me, err := svc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", me.FullName)
}

func TestAuthService_Failures(t *testing.T) {
	f := newTestFactory(t)
	svc := NewAuthService(f, testJwtSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "eve@example.com", Password: "password1", FullName: "Eve"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code int
	}{
		{"duplicate email", func() error {
			_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "EVE@example.com", Password: "password2", FullName: "Eve 2"})
			return err
		}, http.StatusConflict},
		{"wrong password", func() error {
			_, err := svc.Login(ctx, &dto.LoginRequest{Email: "eve@example.com", Password: "nope-nope"})
			return err
		}, http.StatusUnauthorized},
		{"unknown email", func() error {
			_, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password1"})
			return err
		}, http.StatusUnauthorized},
		{"unknown user", func() error {
			_, err := svc.Me(ctx, uuid.New())
			return err
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *serverutils.AppError
			require.ErrorAs(t, tt.call(), &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestJournalService_OwnerScoped(t *testing.T) {
	f := newTestFactory(t)
	owner := seedUser(t, f, email("owner"))
	other := seedUser(t, f, email("other"))
	svc := NewJournalService(f)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner.Id, &dto.CreateJournalEntryRequest{
		Title:   " Move cities? ",
		Context: "Offer in another city",
		Options: []string{"stay", " ", "move"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Move cities?", created.Title)
	assert.Equal(t, []string{"stay", "move"}, created.Options)

	list, err := svc.List(ctx, owner.Id, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	otherList, err := svc.List(ctx, other.Id, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, otherList.Total)

	_, err = svc.Show(ctx, other.Id, created.Id)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)

	require.Error(t, svc.Delete(ctx, other.Id, created.Id))
	require.NoError(t, svc.Delete(ctx, owner.Id, created.Id))

	_, err = svc.Show(ctx, owner.Id, created.Id)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

type fakeLLM struct {
	history []llm.Message
	reply   string
	err     error
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.history = history
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestCoachService_Ask(t *testing.T) {
	provider := &fakeLLM{reply: "  What matters most to you here?  "}
	svc := NewCoachService(provider, memory.NewCoachQuota(10, 10), nopLogger())

	res, err := svc.Ask(context.Background(), uuid.New(), &dto.CoachRequest{
		Prompt:    "Should I take the job?",
		CoachRole: dto.CoachRoleCareerAdvisor,
		History:   []dto.CoachMessage{{Role: "user", Content: "I got an offer"}, {Role: "assistant", Content: "Congrats"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "What matters most to you here?", res.Reply)
	assert.Equal(t, dto.CoachRoleCareerAdvisor, res.CoachRole)
	require.Len(t, provider.history, 4)
	assert.Equal(t, "system", provider.history[0].Role)
	assert.Equal(t, "Should I take the job?", provider.history[3].Content)
}

func TestCoachService_Failures(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()
	req := &dto.CoachRequest{Prompt: "help"}

	var appErr *serverutils.AppError

	_, err := NewCoachService(nil, nil, nopLogger()).Ask(ctx, userID, req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)

	failing := NewCoachService(&fakeLLM{err: errors.New("timeout")}, nil, nopLogger())
	_, err = failing.Ask(ctx, userID, req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)

	limited := NewCoachService(&fakeLLM{reply: "ok"}, memory.NewCoachQuota(1, 5), nopLogger())
	_, err = limited.Ask(ctx, userID, req)
	require.NoError(t, err)
	_, err = limited.Ask(ctx, userID, req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Code)
}
