package implementation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"decidely-be/internal/entity"
	"decidely-be/internal/model"
	"decidely-be/internal/repository/contract"
	"decidely-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_") + "_" + uuid.NewString()[:8]
	db, err := database.NewSQLiteDB(name)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestChatThreadRepository_FindOrCreateByPair(t *testing.T) {
	repo := NewChatThreadRepository(newTestDB(t))
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	first, err := repo.FindOrCreateByPair(ctx, a, b)
	require.NoError(t, err)
	second, err := repo.FindOrCreateByPair(ctx, b, a)
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.True(t, first.HasParticipant(a))
	assert.True(t, first.HasParticipant(b))

	other, err := repo.FindOrCreateByPair(ctx, a, uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, other.Id)
}

func TestChatThreadRepository_ConcurrentPairCreatesOneThread(t *testing.T) {
	repo := NewChatThreadRepository(newTestDB(t))
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	ids := make(chan uuid.UUID, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x, y := a, b
			if i%2 == 1 {
				x, y = b, a
			}
			thread, err := repo.FindOrCreateByPair(ctx, x, y)
			if assert.NoError(t, err) {
				ids <- thread.Id
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[uuid.UUID]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1)
}

func TestChatMessageRepository_MarkThreadRead(t *testing.T) {
	db := newTestDB(t)
	threads := NewChatThreadRepository(db)
	messages := NewChatMessageRepository(db)
	ctx := context.Background()
	sender, reader := uuid.New(), uuid.New()

	thread, err := threads.FindOrCreateByPair(ctx, sender, reader)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, messages.Create(ctx, &entity.ChatMessage{
			Id:        uuid.New(),
			ThreadId:  thread.Id,
			SenderId:  sender,
			Content:   "hello",
			Type:      entity.MessageTypeText,
			ReadBy:    []uuid.UUID{sender},
			CreatedAt: time.Now(),
		}))
	}

	updated, err := messages.MarkThreadRead(ctx, thread.Id, reader)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	updated, err = messages.MarkThreadRead(ctx, thread.Id, reader)
	require.NoError(t, err)
	assert.Zero(t, updated)

	// the sender already read everything it wrote
	updated, err = messages.MarkThreadRead(ctx, thread.Id, sender)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestProgressRepository_VersionAndDuplicates(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Ensure(ctx, userID))
	require.NoError(t, repo.Ensure(ctx, userID), "ensure is idempotent")

	p, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.State.Level)

	stale := *p
	p.State.XP = 40
	require.NoError(t, repo.Save(ctx, p))

	stale.State.XP = 99
	assert.ErrorIs(t, repo.Save(ctx, &stale), contract.ErrStaleVersion)

	reloaded, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, reloaded.State.XP)

	decision := &entity.DecisionRecord{
		Id:           uuid.New(),
		UserId:       userID,
		ScenarioId:   uuid.New(),
		OptionChosen: "right",
		IsCorrect:    true,
		CompletedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateDecision(ctx, decision))

	again := *decision
	again.Id = uuid.New()
	assert.ErrorIs(t, repo.CreateDecision(ctx, &again), contract.ErrDuplicate)

	reloaded, err = repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, reloaded.State.Decisions, 1)
	assert.True(t, reloaded.State.HasCompleted(decision.ScenarioId.String()))

	missing, err := repo.FindByUserID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
