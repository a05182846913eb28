package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"decidely-be/internal/model"
	"decidely-be/internal/repository"
	"decidely-be/internal/repository/implementation"
	"decidely-be/pkg/database"
	"decidely-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotificationRepo(t *testing.T) repository.NotificationRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.NewSQLiteDB(name)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return implementation.NewNotificationRepository(db)
}

func TestNotificationService_HandleEvent(t *testing.T) {
	repo := newTestNotificationRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertNotificationType(ctx, &model.NotificationType{
		Code:        events.TypeLevelUp,
		DisplayName: "Level up",
		Template:    "You reached level {level}",
		TargetType:  TargetSelf,
		IsActive:    true,
	}))

	svc := NewNotificationService(repo, nil, nil, nopLogger())
	userID := uuid.New()

	require.NoError(t, svc.HandleEvent(ctx, events.NewLevelUp(userID, 3, time.Now())))
	// no notification type registered for this code
	require.NoError(t, svc.HandleEvent(ctx, events.NewStreakMilestone(userID, 7, time.Now())))

	items, total, err := svc.GetNotifications(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "You reached level 3", items[0].Message)

	require.NoError(t, svc.HandleEvent(ctx, events.NewUserDeleted(userID, time.Now())))

	_, total, err = svc.GetNotifications(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}
