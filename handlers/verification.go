// handlers/verification.go - Identity document upload
package handlers

import (
	"io"

	"mentora/middleware"

	"github.com/gofiber/fiber/v2"
)

// UploadID runs the identity verification gate over an uploaded
// document. Duplicate documents are rejected; analysis failures leave
// the status pending with a warning rather than erroring.
// POST /api/verification
func UploadID(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("id_document")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "An ID document file is required",
		})
	}

	f, err := header.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Unable to read the uploaded file"})
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Unable to read the uploaded file"})
	}

	result, err := verificationService.Verify(userID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"id_status": result.Status,
		"message":   result.Message,
	})
}

// GetVerification returns the caller's verification state.
// GET /api/verification
func GetVerification(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	status, err := verificationService.Status(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "id_status": status})
}
