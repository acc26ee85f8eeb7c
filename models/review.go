// models/review.go
package models

import "time"

// Review is the owner's feedback recorded when a solution is accepted.
// At most one review exists per (reviewer, solution) pair; the
// acceptance transaction upserts rather than inserting blindly.
type Review struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ReviewerID uint   `gorm:"not null;index" json:"reviewer_id"`
	RevieweeID uint   `gorm:"not null;index" json:"reviewee_id"`
	SolutionID *uint  `gorm:"index" json:"solution_id"`
	Rating     int    `gorm:"default:5" json:"rating"`
	Comment    string `json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Reviewer User      `gorm:"foreignKey:ReviewerID" json:"-"`
	Reviewee User      `gorm:"foreignKey:RevieweeID" json:"-"`
	Solution *Solution `gorm:"foreignKey:SolutionID" json:"-"`
}
