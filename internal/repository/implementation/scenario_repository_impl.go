package implementation

import (
	"context"
	"errors"

	"decidely-be/internal/entity"
	"decidely-be/internal/mapper"
	"decidely-be/internal/model"
	"decidely-be/internal/repository/contract"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScenarioRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScenarioMapper
}

func NewScenarioRepository(db *gorm.DB) contract.ScenarioRepository {
	return &ScenarioRepositoryImpl{
		db:     db,
		mapper: mapper.NewScenarioMapper(),
	}
}

func (r *ScenarioRepositoryImpl) Create(ctx context.Context, scenario *entity.Scenario) error {
	row := r.mapper.ToModel(scenario)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateWriteError(err)
	}
	*scenario = *r.mapper.ToEntity(row)
	return nil
}

func (r *ScenarioRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Scenario, error) {
	var row model.Scenario
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

func (r *ScenarioRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Scenario, error) {
	var rows []*model.Scenario
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *ScenarioRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Scenario{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScenarioRepositoryImpl) RecordAttempt(ctx context.Context, id uuid.UUID, successful bool) error {
	updates := map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
	}
	if successful {
		updates["successful_attempts"] = gorm.Expr("successful_attempts + 1")
	}
	return r.db.WithContext(ctx).
		Model(&model.Scenario{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}
