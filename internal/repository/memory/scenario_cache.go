package memory

import (
	"time"

	"decidely-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultScenarioTTL = 10 * time.Minute
	dailyKeyPrefix     = "daily:"
)

// ScenarioCache keeps read-mostly catalog entries in process. Attempt
// counters are not refreshed here, so detail reads tolerate staleness up to
// the TTL.
type ScenarioCache struct {
	cache *cache.Cache
}

func NewScenarioCache(ttl time.Duration) *ScenarioCache {
	if ttl <= 0 {
		ttl = DefaultScenarioTTL
	}
	return &ScenarioCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *ScenarioCache) Save(scenario *entity.Scenario) {
	r.cache.Set(scenario.Id.String(), scenario, cache.DefaultExpiration)
}

func (r *ScenarioCache) Get(id uuid.UUID) (*entity.Scenario, bool) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.Scenario), true
	}
	return nil, false
}

func (r *ScenarioCache) Delete(id uuid.UUID) {
	r.cache.Delete(id.String())
}

// SaveDaily stores the challenge list of one calendar date.
func (r *ScenarioCache) SaveDaily(date string, scenarios []*entity.Scenario) {
	r.cache.Set(dailyKeyPrefix+date, scenarios, cache.DefaultExpiration)
}

func (r *ScenarioCache) GetDaily(date string) ([]*entity.Scenario, bool) {
	if x, found := r.cache.Get(dailyKeyPrefix + date); found {
		return x.([]*entity.Scenario), true
	}
	return nil, false
}

func (r *ScenarioCache) InvalidateDaily(date string) {
	r.cache.Delete(dailyKeyPrefix + date)
}
