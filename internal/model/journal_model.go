package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JournalEntry struct {
	Id         uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	UserId     uuid.UUID                   `gorm:"type:uuid;not null;index:idx_journal_user_created,priority:1"`
	Title      string                      `gorm:"type:varchar(200);not null"`
	Context    string                      `gorm:"type:text;not null"`
	Options    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Decision   string                      `gorm:"type:text"`
	Reflection string                      `gorm:"type:text"`
	CreatedAt  time.Time                   `gorm:"autoCreateTime;index:idx_journal_user_created,priority:2"`
	UpdatedAt  time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt              `gorm:"index"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
