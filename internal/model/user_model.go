package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash *string   `gorm:"type:varchar(255)"`
	FullName     string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(50);not null;default:'user'"`
	AvatarURL    *string   `gorm:"type:text"`

	// decision profile, filled in during onboarding
	MbtiType            string         `gorm:"type:varchar(10);not null;default:''"`
	DecisionStyle       string         `gorm:"type:varchar(50);not null;default:''"`
	PrimaryBias         string         `gorm:"type:varchar(50);not null;default:''"`
	OnboardingCompleted bool           `gorm:"not null;default:false"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
