package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByScenarioType struct {
	Type string
}

func (s ByScenarioType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

type ByDifficulty struct {
	Difficulty int
}

func (s ByDifficulty) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("difficulty = ?", s.Difficulty)
}

// ActiveOn matches daily challenges scheduled for Date (YYYY-MM-DD).
type ActiveOn struct {
	Date string
}

func (s ActiveOn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active_date = ?", s.Date)
}

type ByScenarioIDs struct {
	IDs []uuid.UUID
}

func (s ByScenarioIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scenario_id IN ?", s.IDs)
}
