// services/problem_guards.go - Lock state machine validation
package services

import (
	"fmt"
	"strings"
	"time"

	"mentora/models"
)

// The guards below validate a transition against rows that the caller
// has already fetched under an exclusive row lock. They are pure so the
// state machine can be exercised without a database; the services in
// problem_service.go re-fetch with FOR UPDATE and call them inside the
// same transaction.

// CheckAccept validates the Accept transition for user on problem.
// The meeting note is required for in-person problems.
func CheckAccept(problem *models.Problem, profile *models.UserProfile, userID uint, meetingNote string) error {
	if problem.IsSolved() {
		return fmt.Errorf("%w: this problem has already been solved", ErrInvalidState)
	}
	if problem.OwnerID == userID {
		return fmt.Errorf("%w: you cannot accept your own problem", ErrForbidden)
	}
	if profile == nil || !profile.IsVerified() {
		return fmt.Errorf("%w: you must verify your ID before accepting problems", ErrForbidden)
	}
	if problem.CurrentSolverID != nil && *problem.CurrentSolverID != userID {
		return fmt.Errorf("%w: another solver is already working on this problem", ErrConflict)
	}
	if problem.Mode == models.ModeInPerson && strings.TrimSpace(meetingNote) == "" {
		return fmt.Errorf("%w: a meeting proposal is required for in-person problems", ErrValidation)
	}
	return nil
}

// ApplyAccept records the lock transition on the problem and returns
// the columns that changed. Re-accepting by the holder is a no-op apart
// from refreshing the meeting proposal on in-person problems.
func ApplyAccept(problem *models.Problem, userID uint, meetingNote string, now time.Time) []string {
	var changed []string
	if !problem.HeldBy(userID) {
		problem.CurrentSolverID = &userID
		changed = append(changed, "current_solver_id")
	}
	if problem.Status != models.StatusInProgress {
		problem.Status = models.StatusInProgress
		changed = append(changed, "status")
	}
	if problem.Mode == models.ModeInPerson {
		problem.SolverMeetingNote = strings.TrimSpace(meetingNote)
		problem.SolverMeetingNotedAt = &now
		// A fresh proposal invalidates any earlier owner reply.
		problem.OwnerMeetingReply = ""
		problem.OwnerMeetingRepliedAt = nil
		changed = append(changed,
			"solver_meeting_note", "solver_meeting_noted_at",
			"owner_meeting_reply", "owner_meeting_replied_at")
	}
	return changed
}

// CheckRelease validates that user may release the lock on problem.
func CheckRelease(problem *models.Problem, userID uint) error {
	if !problem.HeldBy(userID) {
		return fmt.Errorf("%w: you are not the current solver for this problem", ErrForbidden)
	}
	if problem.IsSolved() {
		return fmt.Errorf("%w: solved problems cannot be released", ErrInvalidState)
	}
	return nil
}

// ApplyRelease reopens the problem and clears the meeting thread.
func ApplyRelease(problem *models.Problem) []string {
	problem.CurrentSolverID = nil
	problem.Status = models.StatusOpen
	problem.SolverMeetingNote = ""
	problem.SolverMeetingNotedAt = nil
	problem.OwnerMeetingReply = ""
	problem.OwnerMeetingRepliedAt = nil
	return []string{
		"current_solver_id", "status",
		"solver_meeting_note", "solver_meeting_noted_at",
		"owner_meeting_reply", "owner_meeting_replied_at",
	}
}

// CheckSubmitSolution validates that user may attach a solution to
// problem. The lock must still be held by the submitter; the service
// re-runs this check under the row lock to catch a lock stolen or
// released between the page load and the write.
func CheckSubmitSolution(problem *models.Problem, userID uint) error {
	if problem.OwnerID == userID {
		return fmt.Errorf("%w: you cannot submit a solution to your own problem", ErrForbidden)
	}
	if problem.IsSolved() {
		return fmt.Errorf("%w: this problem is already solved", ErrInvalidState)
	}
	if !problem.HeldBy(userID) {
		return fmt.Errorf("%w: the lock for this problem is no longer assigned to you", ErrConflict)
	}
	return nil
}

// CheckEditSolution validates an author's edit or delete of a solution.
// Accepted solutions are immutable; they back a solved problem.
func CheckEditSolution(solution *models.Solution, userID uint) error {
	if solution.AuthorID != userID {
		return fmt.Errorf("%w: only the author can modify this solution", ErrForbidden)
	}
	if solution.IsAccepted {
		return fmt.Errorf("%w: accepted solutions cannot be modified", ErrInvalidState)
	}
	return nil
}

// CheckAcceptSolution validates the owner's acceptance of solution.
// A solved problem already carries its accepted solution, so any further
// acceptance — a second solution by the same author or re-accepting the
// winning one — is rejected rather than marking two rows accepted or
// paying the credit transfer twice.
func CheckAcceptSolution(problem *models.Problem, solution *models.Solution, requesterID uint, rating int) error {
	if problem.OwnerID != requesterID {
		return fmt.Errorf("%w: only the problem owner can accept a solution", ErrForbidden)
	}
	if problem.IsSolved() || solution.IsAccepted {
		return fmt.Errorf("%w: this problem already has an accepted solution", ErrInvalidState)
	}
	if problem.CurrentSolverID == nil || *problem.CurrentSolverID != solution.AuthorID {
		return fmt.Errorf("%w: this solution does not belong to the current solver", ErrConflict)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

// CheckMeetingReply validates the owner's reply to a solver's meeting
// proposal on an in-person problem.
func CheckMeetingReply(problem *models.Problem, userID uint, text string) error {
	if problem.OwnerID != userID {
		return fmt.Errorf("%w: only the problem owner can reply to a meeting proposal", ErrForbidden)
	}
	if problem.CurrentSolverID == nil {
		return fmt.Errorf("%w: no solver currently holds this problem", ErrInvalidState)
	}
	if strings.TrimSpace(problem.SolverMeetingNote) == "" {
		return fmt.Errorf("%w: the solver has not proposed a meeting yet", ErrInvalidState)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: reply text is required", ErrValidation)
	}
	return nil
}

// CheckDeleteProblem validates owner deletion. Solved problems carry an
// accepted solution and a review, which must not be destroyed.
func CheckDeleteProblem(problem *models.Problem, userID uint) error {
	if problem.OwnerID != userID {
		return fmt.Errorf("%w: only the problem owner can delete it", ErrForbidden)
	}
	if problem.IsSolved() {
		return fmt.Errorf("%w: solved problems cannot be deleted", ErrInvalidState)
	}
	return nil
}

// CheckPickLocation validates that user may set the meeting point:
// either the owner or the current lock holder, on an in-person problem
// that is not yet solved.
func CheckPickLocation(problem *models.Problem, userID uint) error {
	if problem.Mode != models.ModeInPerson {
		return fmt.Errorf("%w: meeting points only apply to in-person problems", ErrInvalidState)
	}
	if problem.IsSolved() {
		return fmt.Errorf("%w: this problem has already been solved", ErrInvalidState)
	}
	if problem.OwnerID != userID && !problem.HeldBy(userID) {
		return fmt.Errorf("%w: only the owner or the current solver can pick a meeting point", ErrForbidden)
	}
	return nil
}
