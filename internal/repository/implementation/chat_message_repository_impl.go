package implementation

import (
	"context"

	"decidely-be/internal/entity"
	"decidely-be/internal/mapper"
	"decidely-be/internal/model"
	"decidely-be/internal/repository/contract"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	row := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateWriteError(err)
	}
	*message = *r.mapper.MessageToEntity(row)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var rows []*model.ChatMessage
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(rows), nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkThreadRead rewrites read_by row by row so it works on any JSON column
// dialect. Callers hold the thread lock.
func (r *ChatMessageRepositoryImpl) MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) (int, error) {
	var rows []*model.ChatMessage
	if err := r.db.WithContext(ctx).
		Select("id", "read_by").
		Where("thread_id = ?", threadID).
		Find(&rows).Error; err != nil {
		return 0, err
	}

	reader := userID.String()
	updated := 0
	for _, row := range rows {
		if containsString(row.ReadBy, reader) {
			continue
		}
		readBy := append([]string(row.ReadBy), reader)
		if err := r.db.WithContext(ctx).
			Model(&model.ChatMessage{}).
			Where("id = ?", row.Id).
			UpdateColumn("read_by", datatypes.NewJSONSlice(readBy)).Error; err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (r *ChatMessageRepositoryImpl) DeleteByThreadIDs(ctx context.Context, threadIDs []uuid.UUID) error {
	if len(threadIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("thread_id IN ?", threadIDs).Delete(&model.ChatMessage{}).Error
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
