// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"mentora/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Problem{},
		&models.Solution{},
		&models.SolutionAttachment{},
		&models.AISummary{},
		&models.Review{},
		&models.Location{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates the listing and lookup indexes the query layer
// relies on.
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	// Problem listing and lock lookups
	db.Exec("CREATE INDEX IF NOT EXISTS idx_problems_status ON problems(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_problems_owner ON problems(owner_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_problems_solver ON problems(current_solver_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_problems_mode ON problems(mode)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_problems_created ON problems(created_at DESC)")

	// Solution lookups
	db.Exec("CREATE INDEX IF NOT EXISTS idx_solutions_problem ON solutions(problem_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_solutions_author ON solutions(author_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_solutions_accepted ON solutions(is_accepted)")

	// Review lookups; the acceptance transaction upserts on this pair
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_reviewer_solution ON reviews(reviewer_id, solution_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_reviews_reviewee ON reviews(reviewee_id)")

	log.Println("✅ Indexes created successfully")
}
