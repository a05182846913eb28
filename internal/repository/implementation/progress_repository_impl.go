package implementation

import (
	"context"
	"errors"
	"time"

	"decidely-be/internal/entity"
	"decidely-be/internal/mapper"
	"decidely-be/internal/model"
	"decidely-be/internal/repository/contract"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProgressMapper
}

func NewProgressRepository(db *gorm.DB) contract.ProgressRepository {
	return &ProgressRepositoryImpl{
		db:     db,
		mapper: mapper.NewProgressMapper(),
	}
}

func (r *ProgressRepositoryImpl) Ensure(ctx context.Context, userID uuid.UUID) error {
	row := &model.UserProgress{
		Id:     uuid.New(),
		UserId: userID,
		Level:  1,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error
}

func (r *ProgressRepositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error) {
	return r.load(ctx, userID, false)
}

func (r *ProgressRepositoryImpl) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error) {
	return r.load(ctx, userID, true)
}

func (r *ProgressRepositoryImpl) load(ctx context.Context, userID uuid.UUID, lock bool) (*entity.UserProgress, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row model.UserProgress
	if err := db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var decisions []*model.DecisionRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Find(&decisions).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntity(&row, decisions), nil
}

func (r *ProgressRepositoryImpl) Save(ctx context.Context, p *entity.UserProgress) error {
	row := r.mapper.ToModel(p)
	result := r.db.WithContext(ctx).
		Model(&model.UserProgress{}).
		Where("id = ? AND version = ?", row.Id, row.Version).
		Updates(map[string]interface{}{
			"xp":                 row.Xp,
			"level":              row.Level,
			"streak":             row.Streak,
			"rationality_score":  row.RationalityScore,
			"decisiveness_score": row.DecisivenessScore,
			"empathy_score":      row.EmpathyScore,
			"clarity_score":      row.ClarityScore,
			"last_activity_at":   row.LastActivityAt,
			"version":            gorm.Expr("version + 1"),
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrStaleVersion
	}
	p.Version++
	return nil
}

func (r *ProgressRepositoryImpl) CreateDecision(ctx context.Context, d *entity.DecisionRecord) error {
	row := r.mapper.DecisionToModel(d)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *ProgressRepositoryImpl) FindDecisions(ctx context.Context, specs ...specification.Specification) ([]*entity.DecisionRecord, error) {
	var rows []*model.DecisionRecord
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.DecisionsToEntities(rows), nil
}

const standingColumns = `u.id AS user_id, u.full_name, u.avatar_url, u.mbti_type, u.decision_style, u.primary_bias,
	COALESCE(p.xp, 0) AS xp, COALESCE(p.level, 1) AS level, COALESCE(p.streak, 0) AS streak,
	COALESCE(p.rationality_score, 0) AS rationality_score, COALESCE(p.decisiveness_score, 0) AS decisiveness_score,
	(SELECT COUNT(*) FROM decision_records d WHERE d.user_id = u.id) AS completed_scenarios`

type standingRow struct {
	UserId             uuid.UUID
	FullName           string
	AvatarURL          *string
	MbtiType           string
	DecisionStyle      string
	PrimaryBias        string
	Xp                 int
	Level              int
	Streak             int
	RationalityScore   int
	DecisivenessScore  int
	CompletedScenarios int
}

func (r *ProgressRepositoryImpl) standings(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users AS u").
		Joins("LEFT JOIN user_progress AS p ON p.user_id = u.id").
		Where("u.deleted_at IS NULL")
}

func (r *ProgressRepositoryImpl) FindStandings(ctx context.Context, specs ...specification.Specification) ([]*entity.Standing, error) {
	var rows []standingRow
	query := applySpecifications(r.standings(ctx).Select(standingColumns), specs...)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.Standing, len(rows))
	for i, row := range rows {
		out[i] = &entity.Standing{
			UserId:             row.UserId,
			FullName:           row.FullName,
			AvatarURL:          row.AvatarURL,
			MbtiType:           row.MbtiType,
			DecisionStyle:      row.DecisionStyle,
			PrimaryBias:        row.PrimaryBias,
			Xp:                 row.Xp,
			Level:              row.Level,
			Streak:             row.Streak,
			RationalityScore:   row.RationalityScore,
			DecisivenessScore:  row.DecisivenessScore,
			CompletedScenarios: row.CompletedScenarios,
		}
	}
	return out, nil
}

func (r *ProgressRepositoryImpl) CountStandings(ctx context.Context) (int64, error) {
	var count int64
	if err := r.standings(ctx).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProgressRepositoryImpl) FindRecentlyUpdated(ctx context.Context, minLevel, limit int) ([]*entity.UserProgress, error) {
	var rows []*model.UserProgress
	if err := r.db.WithContext(ctx).
		Where("level >= ?", minLevel).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.UserProgress, len(rows))
	for i, row := range rows {
		out[i] = r.mapper.ToEntity(row, nil)
	}
	return out, nil
}

func (r *ProgressRepositoryImpl) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.DecisionRecord{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.UserProgress{}).Error
}
