package specification

import (
	"strings"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ExcludeID struct {
	ID uuid.UUID
}

func (s ExcludeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id <> ?", s.ID)
}

// NameOrEmailLike is a case-insensitive substring match on full name or email.
type NameOrEmailLike struct {
	Query string
}

func (s NameOrEmailLike) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(s.Query) + "%"
	return db.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
}
