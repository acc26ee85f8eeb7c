// models/solution.go
package models

import "time"

type Solution struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProblemID  uint   `gorm:"not null;index" json:"problem_id"`
	AuthorID   uint   `gorm:"not null;index" json:"author_id"`
	Content    string `gorm:"not null" json:"content"`
	IsAccepted bool   `gorm:"default:false" json:"is_accepted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Problem     Problem              `gorm:"foreignKey:ProblemID" json:"-"`
	Author      User                 `gorm:"foreignKey:AuthorID" json:"-"`
	Attachments []SolutionAttachment `gorm:"foreignKey:SolutionID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Reviews     []Review             `gorm:"foreignKey:SolutionID" json:"reviews,omitempty"`
}

// SolutionAttachment references a supporting file stored in object storage.
type SolutionAttachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SolutionID uint      `gorm:"not null;index" json:"solution_id"`
	ObjectKey  string    `gorm:"not null" json:"-"`
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// AISummary is a generated recap of a submitted solution, kept per problem.
type AISummary struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProblemID   uint      `gorm:"not null;index" json:"problem_id"`
	SummaryText string    `json:"summary_text"`
	CreatedAt   time.Time `json:"created_at"`
}
