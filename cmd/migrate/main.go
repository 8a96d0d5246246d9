package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"grant-insight-be/internal/model"
	"grant-insight-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. AutoMigrate all concierge tables
	models := []interface{}{
		&model.ConversationTurn{},
		&model.LearningRecord{},
		&model.DailyAnalytics{},
		&model.Grant{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Indexes AutoMigrate does not express well
	postMigrationSQL := []string{
		// Popular-query lookups filter on usage and feedback together.
		`CREATE INDEX IF NOT EXISTS idx_learning_records_usage_feedback
		 ON learning_records (usage_count DESC, feedback_score DESC);`,

		// Daily aggregation scans by calendar day.
		`CREATE INDEX IF NOT EXISTS idx_conversation_turns_created_date
		 ON conversation_turns ((created_at::date));`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
