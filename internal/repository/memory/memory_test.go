package memory

import (
	"sync"
	"testing"
	"time"

	"decidely-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioCache(t *testing.T) {
	c := NewScenarioCache(time.Minute)
	s := &entity.Scenario{Id: uuid.New(), Title: "cached"}

	_, ok := c.Get(s.Id)
	assert.False(t, ok)

	c.Save(s)
	got, ok := c.Get(s.Id)
	require.True(t, ok)
	assert.Equal(t, "cached", got.Title)

	c.Delete(s.Id)
	_, ok = c.Get(s.Id)
	assert.False(t, ok)
}

func TestScenarioCache_Daily(t *testing.T) {
	c := NewScenarioCache(0)
	list := []*entity.Scenario{{Id: uuid.New()}, {Id: uuid.New()}}

	c.SaveDaily("2024-05-01", list)
	got, ok := c.GetDaily("2024-05-01")
	require.True(t, ok)
	assert.Len(t, got, 2)

	_, ok = c.GetDaily("2024-05-02")
	assert.False(t, ok)

	c.InvalidateDaily("2024-05-01")
	_, ok = c.GetDaily("2024-05-01")
	assert.False(t, ok)
}

func TestCoachQuota_HourAndDayWindows(t *testing.T) {
	q := NewCoachQuota(2, 3)
	user := uuid.New()
	start := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)

	assert.True(t, q.Allow(user, start))
	assert.True(t, q.Allow(user, start.Add(time.Minute)))
	assert.False(t, q.Allow(user, start.Add(2*time.Minute)), "hour window spent")

	nextHour := start.Add(time.Hour)
	assert.True(t, q.Allow(user, nextHour))
	assert.False(t, q.Allow(user, nextHour.Add(time.Minute)), "day window spent")

	assert.True(t, q.Allow(user, start.Add(24*time.Hour)), "new day")
	assert.True(t, q.Allow(uuid.New(), start), "other users are independent")
}

func TestCoachQuota_Concurrent(t *testing.T) {
	q := NewCoachQuota(10, 100)
	user := uuid.New()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Allow(user, now) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
