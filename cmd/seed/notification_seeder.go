package main

import (
	"log"

	"decidely-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedNotificationTypes populates the database with default notification types.
func SeedNotificationTypes(db *gorm.DB) {
	types := []model.NotificationType{
		{
			Code:        "DECISION_RECORDED",
			DisplayName: "Decision Recorded",
			Template:    "You earned {xp} XP on \"{title}\"",
			TargetType:  "SELF",
			Priority:    "LOW",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "LEVEL_UP",
			DisplayName: "Level Up",
			Template:    "You reached level {level}!",
			TargetType:  "SELF",
			Priority:    "HIGH",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "STREAK_MILESTONE",
			DisplayName: "Streak Milestone",
			Template:    "{streak} days in a row. Keep going!",
			TargetType:  "SELF",
			Priority:    "MEDIUM",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "SCENARIO_PUBLISHED",
			DisplayName: "New Scenario",
			Template:    "A new scenario is available: \"{title}\"",
			TargetType:  "BROADCAST",
			Priority:    "LOW",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
	}

	for _, t := range types {
		err := db.Where("code = ?", t.Code).FirstOrCreate(&t).Error
		if err != nil {
			log.Printf("Failed to seed notification type %s: %v", t.Code, err)
		} else {
			log.Printf("Seeded notification type: %s", t.Code)
		}
	}
}
