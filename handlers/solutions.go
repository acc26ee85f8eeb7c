// handlers/solutions.go - Solution submission and acceptance
package handlers

import (
	"io"
	"mime/multipart"
	"strconv"

	"mentora/middleware"
	"mentora/services"

	"github.com/gofiber/fiber/v2"
)

// SubmitSolution records a solution by the current lock holder.
// Accepts multipart (content + attachments) or plain JSON.
// POST /api/problems/:slug/solutions
func SubmitSolution(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	content, files, err := parseSolutionBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	solution, err := problemService.SubmitSolution(c.Params("slug"), userID, content, files)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"message":  "Solution submitted successfully. Waiting for the problem owner to review it.",
		"solution": serializeSolution(solution, nil),
	})
}

// UpdateSolution revises an unaccepted solution, author only.
// PUT /api/solutions/:id
func UpdateSolution(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	solutionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid solution ID"})
	}

	content, files, err := parseSolutionBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	solution, err := problemService.UpdateSolution(uint(solutionID), userID, content, files)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Solution updated successfully.",
		"solution": serializeSolution(solution, nil),
	})
}

// DeleteSolution removes an unaccepted solution, author only.
// DELETE /api/solutions/:id
func DeleteSolution(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	solutionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid solution ID"})
	}

	if err := problemService.DeleteSolution(uint(solutionID), userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Solution deleted."})
}

// AcceptSolution lets the owner accept a solution with a rating and
// comment, closing the problem.
// POST /api/solutions/:id/accept
func AcceptSolution(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	solutionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid solution ID"})
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	solution, err := problemService.AcceptSolution(uint(solutionID), userID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Solution accepted and reviewer feedback recorded.",
		"solution": serializeSolution(solution, nil),
	})
}

// parseSolutionBody reads the content field and attachments from a
// multipart form, falling back to JSON when the form is absent.
func parseSolutionBody(c *fiber.Ctx) (string, []services.AttachmentInput, error) {
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		content := ""
		if vals := form.Value["content"]; len(vals) > 0 {
			content = vals[0]
		}
		files, err := readAttachments(form.File["attachments"])
		if err != nil {
			return "", nil, err
		}
		return content, files, nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", nil, err
	}
	return req.Content, nil, nil
}

func readAttachments(headers []*multipart.FileHeader) ([]services.AttachmentInput, error) {
	var files []services.AttachmentInput
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, services.AttachmentInput{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
