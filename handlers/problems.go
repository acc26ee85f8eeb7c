// handlers/problems.go - Problem listing, CRUD and lock transitions
package handlers

import (
	"strconv"

	"mentora/middleware"
	"mentora/models"
	"mentora/services"

	"github.com/gofiber/fiber/v2"
)

// BrowseProblems lists unsolved problems with filters and pagination.
// GET /api/problems
func BrowseProblems(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "5"))

	subject := c.Query("subject")
	if subject == "All Categories" {
		subject = ""
	}

	filters := services.BrowseFilters{
		Query:    c.Query("query"),
		Subject:  subject,
		Mode:     normalizeMode(c.Query("mode")),
		Sort:     c.Query("sort", "recent"),
		Page:     page,
		PageSize: pageSize,
	}

	problems, total, err := problemService.Browse(filters)
	if err != nil {
		return respondError(c, err)
	}

	payload := make([]ProblemView, 0, len(problems))
	for i := range problems {
		payload = append(payload, serializeProblem(&problems[i], problems[i].Owner.Profile))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"problems": payload,
		"total":    total,
		"page":     filters.Page,
	})
}

// GetProblem returns the detail view for a problem.
// GET /api/problems/:slug
func GetProblem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	problem, err := problemService.GetBySlug(c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	solutions := make([]SolutionView, 0, len(problem.Solutions))
	for i := range problem.Solutions {
		s := &problem.Solutions[i]
		view := serializeSolution(s, s.Author.Profile)
		solutions = append(solutions, view)
	}

	isOwner := problem.OwnerID == userID
	isCurrentSolver := problem.HeldBy(userID)

	var solverDetails *AuthorView
	if problem.CurrentSolver != nil {
		v := serializeAuthor(problem.CurrentSolver, problem.CurrentSolver.Profile)
		solverDetails = &v
	}

	profile, err := accountService.Profile(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"problem":            serializeProblem(problem, problem.Owner.Profile),
		"solutions":          solutions,
		"is_owner":           isOwner,
		"is_current_solver":  isCurrentSolver,
		"is_locked_by_other": problem.CurrentSolverID != nil && !isCurrentSolver,
		"is_solved":          problem.IsSolved(),
		"can_accept":         !isOwner && !problem.IsSolved() && (problem.CurrentSolverID == nil || isCurrentSolver),
		"solver":             solverDetails,
		"is_user_verified":   profile.IsVerified(),
	})
}

// CreateProblem posts a new problem.
// POST /api/problems
func CreateProblem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req services.CreateProblemInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	problem, err := problemService.CreateProblem(userID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Problem posted successfully.",
		"problem": serializeProblem(problem, nil),
	})
}

// UpdateProblem edits an unsolved problem, owner only.
// PUT /api/problems/:slug
func UpdateProblem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req services.CreateProblemInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	problem, err := problemService.UpdateProblem(c.Params("slug"), userID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Problem updated.",
		"problem": serializeProblem(problem, nil),
	})
}

// DeleteProblem removes a problem while no irreversible state exists.
// DELETE /api/problems/:slug
func DeleteProblem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := problemService.DeleteProblem(c.Params("slug"), userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Problem removed."})
}

// AcceptProblem locks the problem for the caller. In-person problems
// require a meeting proposal in the body.
// POST /api/problems/:slug/accept
func AcceptProblem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		MeetingNote string `json:"meeting_note"`
	}
	_ = c.BodyParser(&req)

	problem, err := problemService.Accept(c.Params("slug"), userID, req.MeetingNote)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Problem locked. You can now work on your solution.",
		"status":  problem.Status,
	})
}

// ReleaseProblem gives the lock back.
// POST /api/problems/:slug/release
func ReleaseProblem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if _, err := problemService.Release(c.Params("slug"), userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "The problem lock has been released for other solvers.",
		"status":  models.StatusOpen,
	})
}

// MeetingReply records the owner's reply to the solver's proposal.
// POST /api/problems/:slug/meeting-reply
func MeetingReply(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Reply string `json:"reply"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if _, err := problemService.MeetingReply(c.Params("slug"), userID, req.Reply); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Meeting reply sent."})
}

// PickLocation stores a meeting point for an in-person problem.
// POST /api/problems/:slug/location
func PickLocation(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req services.LocationInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	location, err := problemService.PickLocation(c.Params("slug"), userID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "location": location})
}

// MapProblems lists in-person problems with their meeting points.
// GET /api/map
func MapProblems(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "12"))

	problems, err := problemService.MapProblems(limit)
	if err != nil {
		return respondError(c, err)
	}

	payload := make([]fiber.Map, 0, len(problems))
	for i := range problems {
		p := &problems[i]
		payload = append(payload, fiber.Map{
			"problem":   serializeProblem(p, p.Owner.Profile),
			"location":  p.LocationLabel,
			"locations": p.Locations,
		})
	}

	return c.JSON(fiber.Map{"success": true, "requests": payload})
}

// normalizeMode maps UI values like "In-Person" onto the stored enum.
func normalizeMode(mode string) string {
	switch mode {
	case "online", "Online":
		return models.ModeOnline
	case "in_person", "in-person", "In-Person":
		return models.ModeInPerson
	default:
		return ""
	}
}
