// services/problem_guards_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"mentora/models"
)

func verifiedProfile() *models.UserProfile {
	return &models.UserProfile{IDStatus: models.IDStatusVerified}
}

func openProblem(ownerID uint) *models.Problem {
	return &models.Problem{
		ID:      1,
		OwnerID: ownerID,
		Mode:    models.ModeOnline,
		Status:  models.StatusOpen,
	}
}

func TestCheckAccept(t *testing.T) {
	const owner, solver, other = 1, 2, 3

	t.Run("verified solver can accept an open problem", func(t *testing.T) {
		if err := CheckAccept(openProblem(owner), verifiedProfile(), solver, ""); err != nil {
			t.Fatalf("expected accept to pass, got %v", err)
		}
	})

	t.Run("owner cannot accept own problem", func(t *testing.T) {
		err := CheckAccept(openProblem(owner), verifiedProfile(), owner, "")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unverified solver is rejected", func(t *testing.T) {
		profile := &models.UserProfile{IDStatus: models.IDStatusPending}
		err := CheckAccept(openProblem(owner), profile, solver, "")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("nil profile is rejected", func(t *testing.T) {
		err := CheckAccept(openProblem(owner), nil, solver, "")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("lock held by another solver conflicts", func(t *testing.T) {
		p := openProblem(owner)
		holder := uint(other)
		p.CurrentSolverID = &holder
		p.Status = models.StatusInProgress

		err := CheckAccept(p, verifiedProfile(), solver, "")
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("holder may re-accept", func(t *testing.T) {
		p := openProblem(owner)
		holder := uint(solver)
		p.CurrentSolverID = &holder
		p.Status = models.StatusInProgress

		if err := CheckAccept(p, verifiedProfile(), solver, ""); err != nil {
			t.Fatalf("expected re-accept to pass, got %v", err)
		}
	})

	t.Run("solved problem is terminal", func(t *testing.T) {
		p := openProblem(owner)
		p.Status = models.StatusSolved

		err := CheckAccept(p, verifiedProfile(), solver, "")
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("in-person accept requires a meeting note", func(t *testing.T) {
		p := openProblem(owner)
		p.Mode = models.ModeInPerson

		err := CheckAccept(p, verifiedProfile(), solver, "   ")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if err := CheckAccept(p, verifiedProfile(), solver, "Library, 3pm"); err != nil {
			t.Fatalf("expected accept with note to pass, got %v", err)
		}
	})
}

func TestApplyAccept(t *testing.T) {
	const owner, solver = 1, 2
	now := time.Now()

	t.Run("first accept locks the problem", func(t *testing.T) {
		p := openProblem(owner)
		changed := ApplyAccept(p, solver, "", now)

		if !p.HeldBy(solver) {
			t.Fatal("expected lock to be assigned to solver")
		}
		if p.Status != models.StatusInProgress {
			t.Fatalf("expected status in_progress, got %s", p.Status)
		}
		if len(changed) != 2 {
			t.Fatalf("expected 2 changed columns, got %v", changed)
		}
	})

	t.Run("re-accept by holder changes nothing for online problems", func(t *testing.T) {
		p := openProblem(owner)
		ApplyAccept(p, solver, "", now)

		changed := ApplyAccept(p, solver, "", now)
		if len(changed) != 0 {
			t.Fatalf("expected idempotent re-accept, got changed columns %v", changed)
		}
	})

	t.Run("fresh in-person proposal clears the owner reply", func(t *testing.T) {
		p := openProblem(owner)
		p.Mode = models.ModeInPerson
		ApplyAccept(p, solver, "Library, 3pm", now)

		p.OwnerMeetingReply = "See you there"
		replied := now
		p.OwnerMeetingRepliedAt = &replied

		ApplyAccept(p, solver, "Canteen instead, 4pm", now.Add(time.Hour))

		if p.SolverMeetingNote != "Canteen instead, 4pm" {
			t.Fatalf("expected refreshed meeting note, got %q", p.SolverMeetingNote)
		}
		if p.OwnerMeetingReply != "" || p.OwnerMeetingRepliedAt != nil {
			t.Fatal("expected owner reply to be cleared by a fresh proposal")
		}
	})
}

func TestCheckRelease(t *testing.T) {
	const owner, solver, other = 1, 2, 3

	p := openProblem(owner)
	holder := uint(solver)
	p.CurrentSolverID = &holder
	p.Status = models.StatusInProgress

	t.Run("holder may release", func(t *testing.T) {
		if err := CheckRelease(p, solver); err != nil {
			t.Fatalf("expected release to pass, got %v", err)
		}
	})

	t.Run("non-holder may not release", func(t *testing.T) {
		if err := CheckRelease(p, other); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("owner may not release the solver's lock", func(t *testing.T) {
		if err := CheckRelease(p, owner); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestApplyRelease(t *testing.T) {
	const owner, solver = 1, 2
	now := time.Now()

	p := openProblem(owner)
	p.Mode = models.ModeInPerson
	ApplyAccept(p, solver, "Library, 3pm", now)
	p.OwnerMeetingReply = "ok"
	p.OwnerMeetingRepliedAt = &now

	ApplyRelease(p)

	if p.CurrentSolverID != nil {
		t.Fatal("expected lock to be cleared")
	}
	if p.Status != models.StatusOpen {
		t.Fatalf("expected status open, got %s", p.Status)
	}
	if p.SolverMeetingNote != "" || p.OwnerMeetingReply != "" {
		t.Fatal("expected the meeting thread to be cleared on release")
	}
}

func TestCheckSubmitSolution(t *testing.T) {
	const owner, solver, other = 1, 2, 3

	held := openProblem(owner)
	holder := uint(solver)
	held.CurrentSolverID = &holder
	held.Status = models.StatusInProgress

	t.Run("holder may submit", func(t *testing.T) {
		if err := CheckSubmitSolution(held, solver); err != nil {
			t.Fatalf("expected submit to pass, got %v", err)
		}
	})

	t.Run("owner may not submit to own problem", func(t *testing.T) {
		if err := CheckSubmitSolution(held, owner); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("lost lock conflicts", func(t *testing.T) {
		if err := CheckSubmitSolution(held, other); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("released lock conflicts", func(t *testing.T) {
		if err := CheckSubmitSolution(openProblem(owner), solver); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("solved problem is terminal", func(t *testing.T) {
		p := openProblem(owner)
		p.CurrentSolverID = &holder
		p.Status = models.StatusSolved
		if err := CheckSubmitSolution(p, solver); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestCheckAcceptSolution(t *testing.T) {
	const owner, solver, other = 1, 2, 3

	p := openProblem(owner)
	holder := uint(solver)
	p.CurrentSolverID = &holder
	p.Status = models.StatusInProgress
	sol := &models.Solution{ID: 10, ProblemID: p.ID, AuthorID: solver}

	t.Run("owner accepts with a valid rating", func(t *testing.T) {
		if err := CheckAcceptSolution(p, sol, owner, 5); err != nil {
			t.Fatalf("expected accept to pass, got %v", err)
		}
	})

	t.Run("non-owner may not accept", func(t *testing.T) {
		if err := CheckAcceptSolution(p, sol, other, 5); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("stale solution from a previous solver conflicts", func(t *testing.T) {
		stale := &models.Solution{ID: 11, ProblemID: p.ID, AuthorID: other}
		if err := CheckAcceptSolution(p, stale, owner, 5); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			if err := CheckAcceptSolution(p, sol, owner, rating); !errors.Is(err, ErrValidation) {
				t.Fatalf("rating %d: expected ErrValidation, got %v", rating, err)
			}
		}
	})

	t.Run("solved problem admits no further acceptance", func(t *testing.T) {
		solved := openProblem(owner)
		solved.CurrentSolverID = &holder
		solved.Status = models.StatusSolved
		accepted := &models.Solution{ID: 10, ProblemID: solved.ID, AuthorID: solver, IsAccepted: true}
		second := &models.Solution{ID: 11, ProblemID: solved.ID, AuthorID: solver}

		if err := CheckAcceptSolution(solved, second, owner, 4); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("second solution by the pinned author: expected ErrInvalidState, got %v", err)
		}
		if err := CheckAcceptSolution(solved, accepted, owner, 4); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("re-accepting the winning solution: expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("already accepted solution cannot be accepted again", func(t *testing.T) {
		accepted := &models.Solution{ID: 10, ProblemID: p.ID, AuthorID: solver, IsAccepted: true}
		if err := CheckAcceptSolution(p, accepted, owner, 5); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestCheckEditSolution(t *testing.T) {
	const solver, other = 2, 3

	t.Run("author edits an unaccepted solution", func(t *testing.T) {
		sol := &models.Solution{ID: 10, AuthorID: solver}
		if err := CheckEditSolution(sol, solver); err != nil {
			t.Fatalf("expected edit to pass, got %v", err)
		}
	})

	t.Run("non-author may not edit", func(t *testing.T) {
		sol := &models.Solution{ID: 10, AuthorID: solver}
		if err := CheckEditSolution(sol, other); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("accepted solution is immutable", func(t *testing.T) {
		sol := &models.Solution{ID: 10, AuthorID: solver, IsAccepted: true}
		if err := CheckEditSolution(sol, solver); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestNormalizeProblemInput(t *testing.T) {
	t.Run("defaults are filled in", func(t *testing.T) {
		in, err := NormalizeProblemInput(CreateProblemInput{
			Title:       "  Help with limits  ",
			Description: "Rational functions at infinity.",
		})
		if err != nil {
			t.Fatalf("expected valid input, got %v", err)
		}
		if in.Title != "Help with limits" {
			t.Fatalf("expected trimmed title, got %q", in.Title)
		}
		if in.Mode != models.ModeOnline || in.Urgency != models.UrgencyMedium {
			t.Fatalf("expected defaults online/medium, got %s/%s", in.Mode, in.Urgency)
		}
	})

	t.Run("missing title or description", func(t *testing.T) {
		_, err := NormalizeProblemInput(CreateProblemInput{Title: "   ", Description: "x"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("blank title: expected ErrValidation, got %v", err)
		}
		_, err = NormalizeProblemInput(CreateProblemInput{Title: "x", Description: ""})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("blank description: expected ErrValidation, got %v", err)
		}
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		_, err := NormalizeProblemInput(CreateProblemInput{
			Title: "x", Description: "y", Mode: "hybrid",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("unknown urgency is rejected", func(t *testing.T) {
		_, err := NormalizeProblemInput(CreateProblemInput{
			Title: "x", Description: "y", Urgency: "asap",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestCheckMeetingReply(t *testing.T) {
	const owner, solver = 1, 2

	p := openProblem(owner)
	p.Mode = models.ModeInPerson
	holder := uint(solver)
	p.CurrentSolverID = &holder
	p.Status = models.StatusInProgress
	p.SolverMeetingNote = "Library, 3pm"

	t.Run("owner replies to a proposal", func(t *testing.T) {
		if err := CheckMeetingReply(p, owner, "See you there"); err != nil {
			t.Fatalf("expected reply to pass, got %v", err)
		}
	})

	t.Run("solver may not reply to own proposal", func(t *testing.T) {
		if err := CheckMeetingReply(p, solver, "hello"); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("no proposal yet", func(t *testing.T) {
		bare := openProblem(owner)
		bare.CurrentSolverID = &holder
		if err := CheckMeetingReply(bare, owner, "hello"); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("empty reply text", func(t *testing.T) {
		if err := CheckMeetingReply(p, owner, "  "); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestCheckDeleteProblem(t *testing.T) {
	const owner, other = 1, 3

	t.Run("owner deletes an open problem", func(t *testing.T) {
		if err := CheckDeleteProblem(openProblem(owner), owner); err != nil {
			t.Fatalf("expected delete to pass, got %v", err)
		}
	})

	t.Run("non-owner may not delete", func(t *testing.T) {
		if err := CheckDeleteProblem(openProblem(owner), other); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("solved problems are kept", func(t *testing.T) {
		p := openProblem(owner)
		p.Status = models.StatusSolved
		if err := CheckDeleteProblem(p, owner); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestCheckPickLocation(t *testing.T) {
	const owner, solver, other = 1, 2, 3

	p := openProblem(owner)
	p.Mode = models.ModeInPerson
	holder := uint(solver)
	p.CurrentSolverID = &holder
	p.Status = models.StatusInProgress

	t.Run("owner and holder may pick", func(t *testing.T) {
		if err := CheckPickLocation(p, owner); err != nil {
			t.Fatalf("owner: expected pick to pass, got %v", err)
		}
		if err := CheckPickLocation(p, solver); err != nil {
			t.Fatalf("holder: expected pick to pass, got %v", err)
		}
	})

	t.Run("bystander may not pick", func(t *testing.T) {
		if err := CheckPickLocation(p, other); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("online problems have no meeting point", func(t *testing.T) {
		if err := CheckPickLocation(openProblem(owner), owner); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}
