// models/problem.go
package models

import "time"

// Problem lifecycle states. A problem is OPEN until a solver locks it,
// IN_PROGRESS while exactly one solver holds the lock, and SOLVED once
// the owner accepts a solution. SOLVED is terminal.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusSolved     = "solved"
)

// Session modes.
const (
	ModeOnline   = "online"
	ModeInPerson = "in_person"
)

// Urgency levels.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

type Problem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OwnerID        uint   `gorm:"not null;index" json:"owner_id"`
	Title          string `gorm:"not null" json:"title"`
	Slug           string `gorm:"uniqueIndex;not null" json:"slug"`
	Subject        string `json:"subject"`
	Description    string `json:"description"`
	Tags           string `json:"tags"`
	Mode           string `gorm:"default:online" json:"mode"`
	Urgency        string `gorm:"default:medium" json:"urgency"`
	CreditsOffered int    `gorm:"default:10" json:"credits_offered"`
	Status         string `gorm:"default:open;index" json:"status"`
	LocationLabel  string `json:"location_label"`

	// The lock. CurrentSolverID is non-null only while a solver holds the
	// problem; it is pinned to the accepted solution's author on solve.
	CurrentSolverID *uint `gorm:"index" json:"current_solver_id"`

	// Meeting negotiation thread, populated only for in-person problems.
	SolverMeetingNote     string     `json:"solver_meeting_note"`
	SolverMeetingNotedAt  *time.Time `json:"solver_meeting_noted_at"`
	OwnerMeetingReply     string     `json:"owner_meeting_reply"`
	OwnerMeetingRepliedAt *time.Time `json:"owner_meeting_replied_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Owner         User       `gorm:"foreignKey:OwnerID" json:"-"`
	CurrentSolver *User      `gorm:"foreignKey:CurrentSolverID" json:"-"`
	Solutions     []Solution `gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE" json:"solutions,omitempty"`
	Locations     []Location `gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE" json:"locations,omitempty"`
}

// IsSolved reports whether the problem reached its terminal state.
func (p *Problem) IsSolved() bool {
	return p.Status == StatusSolved
}

// HeldBy reports whether userID currently holds the problem lock.
func (p *Problem) HeldBy(userID uint) bool {
	return p.CurrentSolverID != nil && *p.CurrentSolverID == userID
}

// Location is a proposed meeting point for an in-person problem.
type Location struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProblemID uint      `gorm:"not null;index" json:"problem_id"`
	Title     string    `json:"title"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
