// services/problem_service.go - Problem lifecycle and lock state machine
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mentora/models"
	"mentora/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ObjectStore is the slice of the object-storage client the problem
// workflow needs for solution attachments.
type ObjectStore interface {
	Upload(objectName string, data []byte, contentType string) error
	SignedURL(objectName string, expiry time.Duration) (string, error)
	Delete(objectName string) error
}

// EventSink receives lock-transition events for live problem pages.
type EventSink interface {
	Publish(slug string, event map[string]interface{})
}

type ProblemService struct {
	db     *gorm.DB
	store  ObjectStore
	events EventSink
}

// NewProblemService wires the problem workflow. store and events may be
// nil; attachments and live updates are then disabled.
func NewProblemService(db *gorm.DB, store ObjectStore, events EventSink) *ProblemService {
	return &ProblemService{db: db, store: store, events: events}
}

type CreateProblemInput struct {
	Title         string `json:"title"`
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	Tags          string `json:"tags"`
	Mode          string `json:"mode"`
	Urgency       string `json:"urgency"`
	LocationLabel string `json:"location_label"`
}

// AttachmentInput is an uploaded file accompanying a solution.
type AttachmentInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

type LocationInput struct {
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// ================== PROBLEM CRUD ==================

// NormalizeProblemInput validates the editable problem fields and fills
// in the mode and urgency defaults. Create and update share it so an
// edit cannot smuggle in values a create would reject.
func NormalizeProblemInput(in CreateProblemInput) (CreateProblemInput, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return in, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Mode == "" {
		in.Mode = models.ModeOnline
	}
	if in.Mode != models.ModeOnline && in.Mode != models.ModeInPerson {
		return in, fmt.Errorf("%w: unknown session mode %q", ErrValidation, in.Mode)
	}
	if in.Urgency == "" {
		in.Urgency = models.UrgencyMedium
	}
	if in.Urgency != models.UrgencyLow && in.Urgency != models.UrgencyMedium && in.Urgency != models.UrgencyHigh {
		return in, fmt.Errorf("%w: unknown urgency %q", ErrValidation, in.Urgency)
	}
	return in, nil
}

// CreateProblem posts a new problem owned by ownerID. Credits offered
// are fixed at the default; the slug is derived from the title.
func (s *ProblemService) CreateProblem(ownerID uint, in CreateProblemInput) (*models.Problem, error) {
	in, err := NormalizeProblemInput(in)
	if err != nil {
		return nil, err
	}

	problem := &models.Problem{
		OwnerID:       ownerID,
		Title:         in.Title,
		Slug:          s.generateUniqueSlug(in.Title),
		Subject:       in.Subject,
		Description:   in.Description,
		Tags:          in.Tags,
		Mode:          in.Mode,
		Urgency:       in.Urgency,
		LocationLabel: in.LocationLabel,
		Status:        models.StatusOpen,
	}
	if err := s.db.Create(problem).Error; err != nil {
		return nil, err
	}
	return problem, nil
}

// UpdateProblem edits an open or in-progress problem. Only the owner
// may edit; the slug is stable once assigned.
func (s *ProblemService) UpdateProblem(slug string, ownerID uint, in CreateProblemInput) (*models.Problem, error) {
	in, err := NormalizeProblemInput(in)
	if err != nil {
		return nil, err
	}

	var problem models.Problem
	if err := s.db.Where("slug = ?", slug).First(&problem).Error; err != nil {
		return nil, s.notFound(err)
	}
	if problem.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the problem owner can edit it", ErrForbidden)
	}
	if problem.IsSolved() {
		return nil, fmt.Errorf("%w: solved problems cannot be edited", ErrInvalidState)
	}

	updates := map[string]interface{}{
		"title":          in.Title,
		"subject":        in.Subject,
		"description":    in.Description,
		"tags":           in.Tags,
		"mode":           in.Mode,
		"urgency":        in.Urgency,
		"location_label": in.LocationLabel,
		"updated_at":     time.Now(),
	}
	if err := s.db.Model(&problem).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

// DeleteProblem removes a problem before any irreversible state exists.
func (s *ProblemService) DeleteProblem(slug string, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var problem models.Problem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).First(&problem).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckDeleteProblem(&problem, userID); err != nil {
			return err
		}
		return tx.Select("Solutions", "Locations").Delete(&problem).Error
	})
}

// GetBySlug loads a problem with its owner, solver and solutions.
func (s *ProblemService) GetBySlug(slug string) (*models.Problem, error) {
	var problem models.Problem
	err := s.db.Where("slug = ?", slug).
		Preload("Owner").
		Preload("Owner.Profile").
		Preload("CurrentSolver").
		Preload("CurrentSolver.Profile").
		Preload("Solutions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Solutions.Author").
		Preload("Solutions.Author.Profile").
		Preload("Solutions.Attachments").
		Preload("Solutions.Reviews").
		Preload("Locations").
		First(&problem).Error
	if err != nil {
		return nil, s.notFound(err)
	}
	return &problem, nil
}

// BrowseFilters narrow and order the problem listing.
type BrowseFilters struct {
	Query    string
	Subject  string
	Mode     string
	Sort     string // recent | credits-desc | responses-desc
	Page     int
	PageSize int
}

// Browse lists unsolved problems for the marketplace feed.
func (s *ProblemService) Browse(f BrowseFilters) ([]models.Problem, int64, error) {
	q := s.db.Model(&models.Problem{}).
		Where("status <> ?", models.StatusSolved).
		Preload("Owner").
		Preload("Owner.Profile").
		Preload("Solutions")

	if f.Query != "" {
		q = q.Where("title ILIKE ?", "%"+f.Query+"%")
	}
	if f.Subject != "" {
		q = q.Where("LOWER(subject) = LOWER(?)", f.Subject)
	}
	if f.Mode == models.ModeOnline || f.Mode == models.ModeInPerson {
		q = q.Where("mode = ?", f.Mode)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "credits-desc":
		q = q.Order("credits_offered DESC")
	case "responses-desc":
		q = q.Joins("LEFT JOIN solutions ON solutions.problem_id = problems.id").
			Group("problems.id").
			Order("COUNT(solutions.id) DESC")
	default:
		q = q.Order("problems.created_at DESC")
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 || size > 50 {
		size = 5
	}

	var problems []models.Problem
	err := q.Limit(size).Offset((page - 1) * size).Find(&problems).Error
	return problems, total, err
}

// MapProblems lists in-person problems with their meeting points.
func (s *ProblemService) MapProblems(limit int) ([]models.Problem, error) {
	if limit <= 0 {
		limit = 12
	}
	var problems []models.Problem
	err := s.db.Where("mode = ?", models.ModeInPerson).
		Preload("Owner").
		Preload("Owner.Profile").
		Preload("Locations").
		Order("created_at DESC").
		Limit(limit).
		Find(&problems).Error
	return problems, err
}

// ================== LOCK STATE MACHINE ==================

// Accept locks the problem for userID. The row lock on the problem is
// taken before any validation so that two concurrent accepts serialize;
// the loser re-reads a held lock and observes ErrConflict.
func (s *ProblemService) Accept(slug string, userID uint, meetingNote string) (*models.Problem, error) {
	var problem models.Problem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).First(&problem).Error; err != nil {
			return s.notFound(err)
		}

		var profile models.UserProfile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return fmt.Errorf("%w: you must verify your ID before accepting problems", ErrForbidden)
		}

		if err := CheckAccept(&problem, &profile, userID, meetingNote); err != nil {
			return err
		}

		changed := ApplyAccept(&problem, userID, meetingNote, time.Now())
		if len(changed) == 0 {
			return nil
		}
		return tx.Model(&problem).Select(changed).Updates(&problem).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(slug, "locked", map[string]interface{}{"solver_id": userID, "status": problem.Status})
	return &problem, nil
}

// Release gives the lock back so other solvers can claim the problem.
func (s *ProblemService) Release(slug string, userID uint) (*models.Problem, error) {
	var problem models.Problem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).First(&problem).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckRelease(&problem, userID); err != nil {
			return err
		}
		changed := ApplyRelease(&problem)
		return tx.Model(&problem).Select(changed).Updates(map[string]interface{}{
			"current_solver_id":        nil,
			"status":                   models.StatusOpen,
			"solver_meeting_note":      "",
			"solver_meeting_noted_at":  nil,
			"owner_meeting_reply":      "",
			"owner_meeting_replied_at": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(slug, "released", map[string]interface{}{"status": models.StatusOpen})
	return &problem, nil
}

// MeetingReply records the owner's answer to the solver's proposal.
func (s *ProblemService) MeetingReply(slug string, ownerID uint, text string) (*models.Problem, error) {
	var problem models.Problem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).First(&problem).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckMeetingReply(&problem, ownerID, text); err != nil {
			return err
		}
		now := time.Now()
		problem.OwnerMeetingReply = strings.TrimSpace(text)
		problem.OwnerMeetingRepliedAt = &now
		return tx.Model(&problem).
			Select("owner_meeting_reply", "owner_meeting_replied_at").
			Updates(&problem).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(slug, "meeting-reply", map[string]interface{}{"reply": problem.OwnerMeetingReply})
	return &problem, nil
}

// SubmitSolution records a solution by the current lock holder.
// Attachments are uploaded to object storage before the transaction so
// no row lock is held during network IO; the holder check is re-run
// under the lock because the initial page-level checks happen outside
// any lock boundary.
func (s *ProblemService) SubmitSolution(slug string, userID uint, content string, files []AttachmentInput) (*models.Solution, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: solution content is required", ErrValidation)
	}

	attachments, err := s.uploadAttachments(files)
	if err != nil {
		return nil, err
	}

	var solution models.Solution
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var problem models.Problem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).First(&problem).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckSubmitSolution(&problem, userID); err != nil {
			return err
		}

		solution = models.Solution{
			ProblemID: problem.ID,
			AuthorID:  userID,
			Content:   content,
		}
		if err := tx.Create(&solution).Error; err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].SolutionID = solution.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return err
			}
		}
		summary := models.AISummary{
			ProblemID:   problem.ID,
			SummaryText: GenerateSummaryPlaceholder(content),
		}
		return tx.Create(&summary).Error
	})
	if err != nil {
		s.discardAttachments(attachments)
		return nil, err
	}
	solution.Attachments = attachments
	s.publish(slug, "solution-submitted", map[string]interface{}{"solution_id": solution.ID})
	return &solution, nil
}

// UpdateSolution lets the author revise an unaccepted solution. The
// author and accepted checks run again under a row lock inside the
// transaction: an acceptance can commit between the page-level read and
// the write, and an accepted solution must stay immutable.
func (s *ProblemService) UpdateSolution(solutionID, userID uint, content string, files []AttachmentInput) (*models.Solution, error) {
	var solution models.Solution
	if err := s.db.First(&solution, solutionID).Error; err != nil {
		return nil, s.notFound(err)
	}
	if err := CheckEditSolution(&solution, userID); err != nil {
		return nil, err
	}

	attachments, err := s.uploadAttachments(files)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&solution, solutionID).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckEditSolution(&solution, userID); err != nil {
			return err
		}
		if err := tx.Model(&solution).Update("content", content).Error; err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].SolutionID = solution.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return err
			}
		}
		summary := models.AISummary{
			ProblemID:   solution.ProblemID,
			SummaryText: GenerateSummaryPlaceholder(content),
		}
		return tx.Create(&summary).Error
	})
	if err != nil {
		s.discardAttachments(attachments)
		return nil, err
	}
	return &solution, nil
}

// DeleteSolution removes an unaccepted solution authored by userID. The
// solution row is locked before validation so a concurrent acceptance
// cannot slip in and leave a solved problem with no accepted solution.
func (s *ProblemService) DeleteSolution(solutionID, userID uint) error {
	var solution models.Solution
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&solution, solutionID).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckEditSolution(&solution, userID); err != nil {
			return err
		}
		if err := tx.Where("solution_id = ?", solution.ID).
			Find(&solution.Attachments).Error; err != nil {
			return err
		}
		return tx.Select("Attachments").Delete(&solution).Error
	})
	if err != nil {
		return err
	}
	s.discardAttachments(solution.Attachments)
	return nil
}

// AcceptSolution atomically accepts a solution, solves the problem and
// records the owner's review. Both the solution and its problem are
// locked before validation; the review is upserted so an owner who
// already reviewed this solution does not create a duplicate. The
// solver is credited the problem's offer inside the same transaction.
func (s *ProblemService) AcceptSolution(solutionID, requesterID uint, rating int, comment string) (*models.Solution, error) {
	var solution models.Solution
	var problem models.Problem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&solution, solutionID).Error; err != nil {
			return s.notFound(err)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&problem, solution.ProblemID).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckAcceptSolution(&problem, &solution, requesterID, rating); err != nil {
			return err
		}

		if err := tx.Model(&solution).Update("is_accepted", true).Error; err != nil {
			return err
		}
		// Pin the solver in case the pointer drifted between submit and
		// accept; solved implies the accepted author holds the record.
		if err := tx.Model(&problem).Updates(map[string]interface{}{
			"status":            models.StatusSolved,
			"current_solver_id": solution.AuthorID,
		}).Error; err != nil {
			return err
		}

		var review models.Review
		err := tx.Where("reviewer_id = ? AND solution_id = ?", requesterID, solution.ID).
			First(&review).Error
		switch {
		case err == nil:
			if err := tx.Model(&review).Updates(map[string]interface{}{
				"rating":  rating,
				"comment": comment,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				ReviewerID: requesterID,
				RevieweeID: solution.AuthorID,
				SolutionID: &solution.ID,
				Rating:     rating,
				Comment:    comment,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Award the offered credits to the solver.
		var solverProfile models.UserProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", solution.AuthorID).First(&solverProfile).Error; err != nil {
			return err
		}
		return tx.Model(&solverProfile).
			Update("credits", gorm.Expr("credits + ?", problem.CreditsOffered)).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(problem.Slug, "solved", map[string]interface{}{"solution_id": solution.ID})
	return &solution, nil
}

// PickLocation stores a meeting point for an in-person problem.
func (s *ProblemService) PickLocation(slug string, userID uint, in LocationInput) (*models.Location, error) {
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	var location models.Location
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var problem models.Problem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).First(&problem).Error; err != nil {
			return s.notFound(err)
		}
		if err := CheckPickLocation(&problem, userID); err != nil {
			return err
		}
		location = models.Location{
			ProblemID: problem.ID,
			Title:     in.Title,
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			Address:   in.Address,
		}
		return tx.Create(&location).Error
	})
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// ================== HELPERS ==================

func (s *ProblemService) uploadAttachments(files []AttachmentInput) ([]models.SolutionAttachment, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: attachment storage is not configured", ErrValidation)
	}
	attachments := make([]models.SolutionAttachment, 0, len(files))
	for _, f := range files {
		key := fmt.Sprintf("solution_attachments/%s_%s", uuid.New().String()[:8], f.FileName)
		if err := s.store.Upload(key, f.Data, f.ContentType); err != nil {
			s.discardAttachments(attachments)
			return nil, err
		}
		attachments = append(attachments, models.SolutionAttachment{
			ObjectKey:  key,
			FileName:   f.FileName,
			Size:       int64(len(f.Data)),
			UploadedAt: time.Now(),
		})
	}
	return attachments, nil
}

// discardAttachments best-effort deletes uploaded objects after a
// failed transaction.
func (s *ProblemService) discardAttachments(attachments []models.SolutionAttachment) {
	if s.store == nil {
		return
	}
	for _, a := range attachments {
		_ = s.store.Delete(a.ObjectKey)
	}
}

func (s *ProblemService) publish(slug, kind string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{"event": kind, "at": time.Now().Unix()}
	for k, v := range payload {
		event[k] = v
	}
	s.events.Publish(slug, event)
}

func (s *ProblemService) notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// generateUniqueSlug slugifies the title and appends a numeric suffix
// until the slug is free.
func (s *ProblemService) generateUniqueSlug(title string) string {
	base := utils.Slugify(title)
	if base == "" {
		base = "problem"
	}
	candidate := base
	for suffix := 2; ; suffix++ {
		var count int64
		s.db.Model(&models.Problem{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
