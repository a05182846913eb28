package contract

import (
	"context"

	"decidely-be/internal/entity"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProgressRepository interface {
	// Ensure creates the progress row for userID if it does not exist yet.
	Ensure(ctx context.Context, userID uuid.UUID) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error)
	// FindByUserIDForUpdate locks the progress row for the rest of the
	// surrounding transaction.
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error)
	// Save writes the aggregate if its Version still matches and bumps it.
	// Returns ErrStaleVersion otherwise.
	Save(ctx context.Context, p *entity.UserProgress) error

	// CreateDecision returns ErrDuplicate when the user already completed
	// the scenario.
	CreateDecision(ctx context.Context, d *entity.DecisionRecord) error
	FindDecisions(ctx context.Context, specs ...specification.Specification) ([]*entity.DecisionRecord, error)

	// FindStandings lists active users with their progress. Specs may order
	// by the xp, level, streak and completed_scenarios columns.
	FindStandings(ctx context.Context, specs ...specification.Specification) ([]*entity.Standing, error)
	CountStandings(ctx context.Context) (int64, error)
	// FindRecentlyUpdated returns progress rows by last write, without
	// their decision history.
	FindRecentlyUpdated(ctx context.Context, minLevel, limit int) ([]*entity.UserProgress, error)
	// DeleteByUserID removes the progress row and every decision record.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
