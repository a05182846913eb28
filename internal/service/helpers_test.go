package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"decidely-be/internal/entity"
	"decidely-be/internal/model"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/repository/memory"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/pkg/database"
	"decidely-be/pkg/events"
	"decidely-be/pkg/progress"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
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
	return unitofwork.NewRepositoryFactory(db)
}

func testEngines() progress.Engines {
	return progress.NewEngines(map[string]progress.Config{
		progress.ProfileScenario:   {XPPerLevel: 100, Strategy: progress.StrategyAccuracy},
		progress.ProfileChallenge:  {XPPerLevel: 500, Strategy: progress.StrategyAccuracy},
		progress.ProfileReflection: {XPPerLevel: 1000, Strategy: progress.StrategyWeighted},
	})
}

func seedUser(t *testing.T, f unitofwork.RepositoryFactory, email string) *entity.User {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{
		Id:       uuid.New(),
		Email:    email,
		FullName: strings.Split(email, "@")[0],
		Role:     entity.UserRoleUser,
	}
	require.NoError(t, f.NewUnitOfWork(ctx).UserRepository().Create(ctx, u))
	return u
}

func seedScenario(t *testing.T, f unitofwork.RepositoryFactory, s *entity.Scenario) *entity.Scenario {
	t.Helper()
	ctx := context.Background()
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	if s.Type == "" {
		s.Type = entity.ScenarioTypeScenario
	}
	if s.Title == "" {
		s.Title = "Scenario " + s.Id.String()[:8]
	}
	if len(s.Options) == 0 {
		s.Options = []entity.ScenarioOption{
			{Text: "right", IsCorrect: true, Feedback: "well reasoned"},
			{Text: "wrong", IsCorrect: false, Feedback: "missed the trade-off"},
		}
	}
	if s.Difficulty == 0 {
		s.Difficulty = 1
	}
	require.NoError(t, f.NewUnitOfWork(ctx).ScenarioRepository().Create(ctx, s))
	return s
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakeEventPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *fakeEventPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fakeAttemptPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakeAttemptPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	frames map[uuid.UUID][][]byte
}

func (n *fakeNotifier) NotifyUser(userID uuid.UUID, frame []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.frames == nil {
		n.frames = make(map[uuid.UUID][][]byte)
	}
	n.frames[userID] = append(n.frames[userID], frame)
}

func (n *fakeNotifier) count(userID uuid.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.frames[userID])
}

// steppingClock returns a clock that can be moved forward by the test.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func nopLogger() logger.ILogger {
	return logger.NewNopLogger()
}

func newTestCache() *memory.ScenarioCache {
	return memory.NewScenarioCache(time.Minute)
}

func email(prefix string) string {
	return fmt.Sprintf("%s-%s@decidely.test", prefix, uuid.NewString()[:6])
}
