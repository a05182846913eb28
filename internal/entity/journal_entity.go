package entity

import (
	"time"

	"github.com/google/uuid"
)

type JournalEntry struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Title      string
	Context    string
	Options    []string
	Decision   string
	Reflection string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
