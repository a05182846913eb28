package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateJournalEntryRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Context    string   `json:"context" validate:"required"`
	Options    []string `json:"options" validate:"omitempty,max=10,dive,max=500"`
	Decision   string   `json:"decision"`
	Reflection string   `json:"reflection"`
}

type JournalEntryResponse struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Context    string    `json:"context"`
	Options    []string  `json:"options"`
	Decision   string    `json:"decision"`
	Reflection string    `json:"reflection"`
	CreatedAt  time.Time `json:"createdAt"`
}

type JournalListResponse struct {
	Items []JournalEntryResponse `json:"items"`
	Total int64                  `json:"total"`
}
