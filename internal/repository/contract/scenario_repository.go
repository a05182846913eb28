package contract

import (
	"context"

	"decidely-be/internal/entity"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ScenarioRepository interface {
	Create(ctx context.Context, scenario *entity.Scenario) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Scenario, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Scenario, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// RecordAttempt increments the attempt counters in place.
	RecordAttempt(ctx context.Context, id uuid.UUID, successful bool) error
}
