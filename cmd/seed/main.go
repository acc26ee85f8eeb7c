// cmd/seed/main.go - Loads demo accounts and problems for local development.
//
// Usage:
//
//	go run ./cmd/seed
package main

import (
	"log"

	"mentora/database"
	"mentora/models"
	"mentora/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	db := database.GetDB()

	accounts := services.NewAccountService(db)
	problems := services.NewProblemService(db, nil, nil)

	log.Println("🔄 Seeding demo accounts...")

	demoUsers := []services.RegisterInput{
		{Username: "maria", Email: "maria@example.com", DisplayName: "Maria Santos", Password: "password123", University: "Palawan State University"},
		{Username: "juan", Email: "juan@example.com", DisplayName: "Juan Dela Cruz", Password: "password123", University: "Palawan State University"},
		{Username: "ana", Email: "ana@example.com", DisplayName: "Ana Reyes", Password: "password123", University: "Palawan State University"},
	}

	users := make(map[string]uint)
	for _, input := range demoUsers {
		var existing models.User
		if err := db.Where("username = ?", input.Username).First(&existing).Error; err == nil {
			users[input.Username] = existing.ID
			continue
		}
		user, err := accounts.CreateAccount(input)
		if err != nil {
			log.Fatalf("❌ Failed to create %s: %v", input.Username, err)
		}
		users[input.Username] = user.ID
	}

	// Mark the demo solvers verified so they can accept problems.
	db.Model(&models.UserProfile{}).
		Where("user_id IN ?", []uint{users["juan"], users["ana"]}).
		Update("id_status", models.IDStatusVerified)

	log.Println("🔄 Seeding demo problems...")

	demoProblems := []struct {
		owner string
		input services.CreateProblemInput
	}{
		{"maria", services.CreateProblemInput{
			Title:          "Help with calculus limits",
			Subject:        "Mathematics",
			Description:    "I can't figure out limits approaching infinity for rational functions.",
			Tags:           "calculus,limits",
			Mode:           models.ModeOnline,
			Urgency:        models.UrgencyHigh,
		}},
		{"maria", services.CreateProblemInput{
			Title:          "Review my physics lab report",
			Subject:        "Physics",
			Description:    "Need someone to check my error analysis before Friday.",
			Tags:           "physics,lab-report",
			Mode:           models.ModeInPerson,
			Urgency:        models.UrgencyMedium,
			LocationLabel:  "PSU Main Library",
		}},
		{"ana", services.CreateProblemInput{
			Title:          "Debug my sorting assignment",
			Subject:        "Computer Science",
			Description:    "My merge sort loops forever on even-length inputs.",
			Tags:           "go,algorithms",
			Mode:           models.ModeOnline,
			Urgency:        models.UrgencyLow,
		}},
	}

	created := 0
	for _, p := range demoProblems {
		var count int64
		db.Model(&models.Problem{}).
			Where("owner_id = ? AND title = ?", users[p.owner], p.input.Title).
			Count(&count)
		if count > 0 {
			continue
		}
		if _, err := problems.CreateProblem(users[p.owner], p.input); err != nil {
			log.Fatalf("❌ Failed to create problem %q: %v", p.input.Title, err)
		}
		created++
	}

	log.Printf("✅ Seed complete: %d users, %d new problems", len(users), created)
}
