// ~/Documents/CODING/mentora/main.go
package main

import (
	"log"
	"os"
	"time"

	"mentora/database"
	"mentora/handlers"
	"mentora/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire services and handlers
	handlers.Init()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // 10MB, attachments and ID documents
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)

	// Problem routes (all require authentication)
	problemGroup := api.Group("/problems")
	problemGroup.Use(middleware.AuthMiddleware)
	problemGroup.Get("/", handlers.BrowseProblems)
	problemGroup.Post("/", handlers.CreateProblem)
	problemGroup.Get("/:slug", handlers.GetProblem)
	problemGroup.Put("/:slug", handlers.UpdateProblem)
	problemGroup.Delete("/:slug", handlers.DeleteProblem)
	problemGroup.Post("/:slug/accept", handlers.AcceptProblem)
	problemGroup.Post("/:slug/release", handlers.ReleaseProblem)
	problemGroup.Post("/:slug/meeting-reply", handlers.MeetingReply)
	problemGroup.Post("/:slug/location", handlers.PickLocation)
	problemGroup.Post("/:slug/solutions", handlers.SubmitSolution)

	// Solution routes
	solutionGroup := api.Group("/solutions")
	solutionGroup.Use(middleware.AuthMiddleware)
	solutionGroup.Put("/:id", handlers.UpdateSolution)
	solutionGroup.Delete("/:id", handlers.DeleteSolution)
	solutionGroup.Post("/:id/accept", handlers.AcceptSolution)

	// User routes
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)
	userGroup.Put("/me", handlers.UpdateCurrentUser)
	userGroup.Get("/me/dashboard", handlers.Dashboard)

	// Review routes
	api.Get("/reviews", middleware.AuthMiddleware, handlers.GetReviews)

	// Identity verification routes
	api.Post("/verification", middleware.AuthMiddleware, handlers.UploadID)
	api.Get("/verification", middleware.AuthMiddleware, handlers.GetVerification)

	// Map of in-person problems
	api.Get("/map", middleware.AuthMiddleware, handlers.MapProblems)

	// Live problem event feed
	app.Use("/ws/problems/:slug", handlers.WebsocketUpgrade)
	app.Get("/ws/problems/:slug", handlers.ProblemEvents)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🗂️ Object storage configured: %v", os.Getenv("S3_BUCKET_NAME") != "")
	log.Printf("🪪 OCR verification configured: %v", os.Getenv("OCRSPACE_API_KEY") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

// Helper functions

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
