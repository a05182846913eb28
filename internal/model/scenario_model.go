package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScenarioOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback,omitempty"`
}

type Scenario struct {
	Id                 uuid.UUID                           `gorm:"type:uuid;primaryKey"`
	Title              string                              `gorm:"type:varchar(200);not null"`
	Description        string                              `gorm:"type:text;not null"`
	Content            string                              `gorm:"type:text"`
	Category           string                              `gorm:"type:varchar(50);not null;index"`
	CreatorId          *uuid.UUID                          `gorm:"type:uuid;index"`
	XpReward           int                                 `gorm:"not null;default:10"`
	Difficulty         int                                 `gorm:"not null;default:1"`
	Type               string                              `gorm:"type:varchar(20);not null;default:'scenario';index:idx_scenarios_type_active,priority:1"`
	ActiveDate         *string                             `gorm:"type:varchar(10);index:idx_scenarios_type_active,priority:2"`
	Options            datatypes.JSONSlice[ScenarioOption] `gorm:"type:jsonb;not null"`
	Attempts           int                                 `gorm:"not null;default:0"`
	SuccessfulAttempts int                                 `gorm:"not null;default:0"`
	CreatedAt          time.Time                           `gorm:"autoCreateTime"`
	UpdatedAt          time.Time                           `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt                      `gorm:"index"`
}

func (Scenario) TableName() string {
	return "scenarios"
}
