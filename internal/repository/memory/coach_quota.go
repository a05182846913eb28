package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultCoachPerHour = 50
	DefaultCoachPerDay  = 200
)

// CoachQuota counts coach requests per user in fixed UTC hour and day windows.
type CoachQuota struct {
	mu      sync.Mutex
	cache   *cache.Cache
	perHour int
	perDay  int
}

func NewCoachQuota(perHour, perDay int) *CoachQuota {
	if perHour <= 0 {
		perHour = DefaultCoachPerHour
	}
	if perDay <= 0 {
		perDay = DefaultCoachPerDay
	}
	return &CoachQuota{
		cache:   cache.New(24*time.Hour, time.Hour),
		perHour: perHour,
		perDay:  perDay,
	}
}

// Allow consumes one request from both windows, or none when either is spent.
func (q *CoachQuota) Allow(userID uuid.UUID, now time.Time) bool {
	now = now.UTC()
	hourKey := fmt.Sprintf("coach:h:%s:%s", userID, now.Format("2006010215"))
	dayKey := fmt.Sprintf("coach:d:%s:%s", userID, now.Format("20060102"))

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count(hourKey) >= q.perHour || q.count(dayKey) >= q.perDay {
		return false
	}
	q.incr(hourKey, time.Hour)
	q.incr(dayKey, 24*time.Hour)
	return true
}

func (q *CoachQuota) count(key string) int {
	if x, found := q.cache.Get(key); found {
		return x.(int)
	}
	return 0
}

func (q *CoachQuota) incr(key string, ttl time.Duration) {
	if _, err := q.cache.IncrementInt(key, 1); err != nil {
		q.cache.Set(key, 1, ttl)
	}
}
