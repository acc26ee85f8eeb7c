// handlers/handlers.go - Service wiring and error mapping
package handlers

import (
	"errors"
	"log"

	"mentora/database"
	"mentora/services"
	"mentora/utils"

	"github.com/gofiber/fiber/v2"
)

var (
	accountService      *services.AccountService
	problemService      *services.ProblemService
	verificationService *services.VerificationService
	objectStorage       *utils.ObjectStorage
	eventHub            *Hub
)

// Init wires the handler package against the database, object storage
// and the OCR collaborator. Storage and OCR are optional; their absence
// degrades uploads and verification rather than failing startup.
func Init() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before handlers.Init")
	}

	eventHub = NewHub()

	var store services.ObjectStore
	s, err := utils.NewObjectStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to configure object storage: %v", err)
	}
	if s != nil {
		objectStorage = s
		store = s
	} else {
		log.Println("Warning: object storage not configured, uploads disabled")
	}

	var ocr services.TextExtractor
	if c := services.NewOCRSpaceClientFromEnv(); c != nil {
		ocr = c
	} else {
		log.Println("Warning: OCRSPACE_API_KEY not set, ID verification degrades to pending")
	}

	accountService = services.NewAccountService(db)
	problemService = services.NewProblemService(db, store, eventHub)
	verificationService = services.NewVerificationService(db, store, ocr)
}

// respondError translates domain errors into HTTP responses. Every
// lock-related outcome is a user-visible response, never a crash.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "An error occurred. Please try again later."

	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrInvalidState):
		status = fiber.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, services.ErrDuplicateDocument):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrServiceUnavailable):
		status = fiber.StatusServiceUnavailable
		message = "A required service is temporarily unavailable. Please try again later."
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
		message = "Not found"
	default:
		log.Printf("internal error: %v", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
