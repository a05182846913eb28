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

type JournalRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JournalMapper
}

func NewJournalRepository(db *gorm.DB) contract.JournalRepository {
	return &JournalRepositoryImpl{
		db:     db,
		mapper: mapper.NewJournalMapper(),
	}
}

func (r *JournalRepositoryImpl) Create(ctx context.Context, entry *entity.JournalEntry) error {
	row := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(row)
	return nil
}

func (r *JournalRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JournalEntry, error) {
	var row model.JournalEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

func (r *JournalRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEntry, error) {
	var rows []*model.JournalEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *JournalRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.JournalEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *JournalRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.JournalEntry{}).Error
}

func (r *JournalRepositoryImpl) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&model.JournalEntry{}).Error
}
