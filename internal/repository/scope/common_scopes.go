package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// RecentActivityFirst orders threads by their last message, untouched threads last.
func RecentActivityFirst(db *gorm.DB) *gorm.DB {
	return db.Order("last_message_at IS NULL").Order("last_message_at DESC")
}

// UserCreated keeps scenarios that a user authored.
func UserCreated(db *gorm.DB) *gorm.DB {
	return db.Where("creator_id IS NOT NULL")
}
