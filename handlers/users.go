// handlers/users.go - Profile, dashboard and received reviews
package handlers

import (
	"time"

	"mentora/database"
	"mentora/middleware"
	"mentora/models"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the caller's account and profile.
// GET /api/users/me
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	db := database.GetDB()
	var user models.User
	if err := db.Preload("Profile").First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	profile, err := accountService.Profile(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userInfo(&user),
		"profile": fiber.Map{
			"avatar":        profile.Avatar,
			"initials":      Initials(user.Name()),
			"bio":           profile.Bio,
			"skills":        profile.Skills,
			"credits":       profile.Credits,
			"rating":        profile.Rating,
			"id_status":     profile.IDStatus,
			"location_text": profile.LocationText,
			"joined":        user.CreatedAt.Format("January 2006"),
		},
	})
}

// UpdateCurrentUser edits the caller's display name, skills and bio.
// PUT /api/users/me
func UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		DisplayName string `json:"display_name"`
		Skills      string `json:"skills"`
		Bio         string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := accountService.UpdateProfile(userID, req.DisplayName, req.Skills, req.Bio); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Profile updated successfully."})
}

// Dashboard summarizes the caller's marketplace activity.
// GET /api/users/me/dashboard
func Dashboard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	db := database.GetDB()

	profile, err := accountService.Profile(userID)
	if err != nil {
		return respondError(c, err)
	}

	var problemsPosted, solutionsAuthored, pendingSolutions int64
	db.Model(&models.Problem{}).Where("owner_id = ?", userID).Count(&problemsPosted)
	db.Model(&models.Solution{}).Where("author_id = ?", userID).Count(&solutionsAuthored)
	db.Model(&models.Solution{}).
		Joins("JOIN problems ON problems.id = solutions.problem_id").
		Where("problems.owner_id = ? AND solutions.is_accepted = ?", userID, false).
		Count(&pendingSolutions)

	var avgRating float64
	row := db.Model(&models.Review{}).Where("reviewee_id = ?", userID).
		Select("COALESCE(AVG(rating), 5)").Row()
	if err := row.Scan(&avgRating); err != nil {
		avgRating = 5.0
	}

	var recent []models.Problem
	db.Where("owner_id = ?", userID).
		Preload("Solutions").
		Order("created_at DESC").Limit(5).
		Find(&recent)

	activity := make([]fiber.Map, 0, len(recent))
	for i := range recent {
		p := &recent[i]
		activity = append(activity, fiber.Map{
			"title":     p.Title,
			"slug":      p.Slug,
			"status":    p.Status,
			"time":      RelativeTime(p.CreatedAt, time.Now()),
			"responses": len(p.Solutions),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"credits":            profile.Credits,
			"problems_posted":    problemsPosted,
			"solutions_authored": solutionsAuthored,
			"pending_solutions":  pendingSolutions,
			"average_rating":     avgRating,
		},
		"recent_activity": activity,
	})
}

// GetReviews lists reviews the caller received on their solutions,
// with a star distribution.
// GET /api/reviews
func GetReviews(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	db := database.GetDB()

	var reviews []models.Review
	if err := db.Where("reviewee_id = ?", userID).
		Preload("Reviewer").
		Preload("Reviewer.Profile").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return respondError(c, err)
	}

	entries := make([]ReviewView, 0, len(reviews))
	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	total := 0
	for i := range reviews {
		r := &reviews[i]
		entries = append(entries, ReviewView{
			Rating:  r.Rating,
			Comment: r.Comment,
			Time:    RelativeTime(r.CreatedAt, time.Now()),
			Author:  serializeAuthor(&r.Reviewer, r.Reviewer.Profile),
		})
		if r.Rating >= 1 && r.Rating <= 5 {
			distribution[r.Rating]++
		}
		total += r.Rating
	}

	average := 5.0
	if len(reviews) > 0 {
		average = float64(total) / float64(len(reviews))
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"reviews":             entries,
		"total_reviews":       len(entries),
		"average_rating":      average,
		"rating_distribution": distribution,
	})
}
