package main

import (
	"log"
	"os"
	"time"

	"decidely-be/internal/entity"
	"decidely-be/internal/model"
	"decidely-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Scenario Catalog...")
	SeedScenarios(db, time.Now().UTC())

	log.Println("Seeding Notification Types...")
	SeedNotificationTypes(db)

	log.Println("✅ Seeding completed")
}

// SeedScenarios inserts the starter catalog plus today's daily challenge. Titles are the
// idempotency key.
func SeedScenarios(db *gorm.DB, today time.Time) {
	activeDate := today.Format(entity.ActiveDateLayout)

	scenarios := []model.Scenario{
		{
			Title:       "Career Change Decision",
			Description: "You've been offered a new job with better pay but longer hours. Your current job is stable but has limited growth.",
			Content:     "You have a family to support and value work-life balance.",
			Category:    "Career",
			Difficulty:  3,
			XpReward:    50,
			Type:        string(entity.ScenarioTypeScenario),
			Options: datatypes.NewJSONSlice([]model.ScenarioOption{
				{Text: "Negotiate hours with the new employer before deciding", IsCorrect: true, Feedback: "You gathered the missing information first."},
				{Text: "Accept the new job immediately", IsCorrect: false, Feedback: "Pay went up but the family trade-off was never weighed."},
				{Text: "Stay without asking about growth paths", IsCorrect: false, Feedback: "Stability is kept but the growth problem remains."},
			}),
		},
		{
			Title:       "Investment Opportunity",
			Description: "A friend offers you a chance to invest in their startup. It's risky but could be very profitable.",
			Content:     "You have some savings but need to be careful with your money.",
			Category:    "Finance",
			Difficulty:  4,
			XpReward:    75,
			Type:        string(entity.ScenarioTypeScenario),
			Options: datatypes.NewJSONSlice([]model.ScenarioOption{
				{Text: "Invest only what you can afford to lose", IsCorrect: true, Feedback: "Risk is capped and the friendship is supported."},
				{Text: "Invest your entire savings", IsCorrect: false, Feedback: "Concentrated risk with no safety net."},
			}),
		},
		{
			Title:       "Phishing Awareness",
			Description: "An urgent email from 'IT' asks you to confirm your password through a link.",
			Content:     "The sender domain differs by one letter from your company's domain.",
			Category:    "Phishing Awareness",
			Difficulty:  2,
			XpReward:    25,
			Type:        string(entity.ScenarioTypeDailyChallenge),
			ActiveDate:  &activeDate,
			Options: datatypes.NewJSONSlice([]model.ScenarioOption{
				{Text: "Report the email to the security team without clicking", IsCorrect: true, Feedback: "Reporting protects colleagues who got the same email."},
				{Text: "Click the link to check whether it looks real", IsCorrect: false, Feedback: "Opening the link can already compromise the device."},
				{Text: "Reply and ask the sender to confirm", IsCorrect: false, Feedback: "Attackers will happily confirm."},
			}),
		},
	}

	for _, s := range scenarios {
		var existing model.Scenario
		if err := db.Where("title = ?", s.Title).First(&existing).Error; err == nil {
			log.Printf("Scenario '%s' already exists, skipping...", s.Title)
			continue
		}

		s.Id = uuid.New()
		if err := db.Create(&s).Error; err != nil {
			log.Printf("Error creating scenario '%s': %v", s.Title, err)
		} else {
			log.Printf("Created scenario: %s (%s)", s.Title, s.Type)
		}
	}
}
