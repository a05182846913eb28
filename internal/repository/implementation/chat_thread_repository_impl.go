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
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatThreadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatThreadRepository(db *gorm.DB) contract.ChatThreadRepository {
	return &ChatThreadRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatThreadRepositoryImpl) FindOrCreateByPair(ctx context.Context, a, b uuid.UUID) (*entity.ChatThread, error) {
	low, high := entity.CanonicalPair(a, b)

	candidate := &model.ChatThread{
		Id:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
		UnreadCounts:    datatypes.NewJSONType(map[string]int{}),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "participant_low"}, {Name: "participant_high"}},
			DoNothing: true,
		}).
		Create(candidate).Error
	if err != nil {
		return nil, err
	}

	var row model.ChatThread
	if err := r.db.WithContext(ctx).
		Where("participant_low = ? AND participant_high = ?", low, high).
		First(&row).Error; err != nil {
		return nil, err
	}
	return r.mapper.ThreadToEntity(&row), nil
}

func (r *ChatThreadRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatThread, error) {
	var row model.ChatThread
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&row), nil
}

func (r *ChatThreadRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.ChatThread, error) {
	var row model.ChatThread
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&row), nil
}

func (r *ChatThreadRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatThread, error) {
	var rows []*model.ChatThread
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ThreadsToEntities(rows), nil
}

func (r *ChatThreadRepositoryImpl) UpdateSummary(ctx context.Context, thread *entity.ChatThread) error {
	row := r.mapper.ThreadToModel(thread)
	return r.db.WithContext(ctx).
		Model(&model.ChatThread{}).
		Where("id = ?", row.Id).
		Updates(map[string]interface{}{
			"last_message_content":   row.LastMessageContent,
			"last_message_sender_id": row.LastMessageSenderId,
			"last_message_at":        row.LastMessageAt,
			"unread_counts":          row.UnreadCounts,
		}).Error
}

func (r *ChatThreadRepositoryImpl) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.ChatThread{}).Error
}
