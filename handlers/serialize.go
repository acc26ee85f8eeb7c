// handlers/serialize.go - Display projections for the presentation layer
package handlers

import (
	"fmt"
	"strings"
	"time"

	"mentora/models"
)

// AuthorView is the display-ready author card attached to problems,
// solutions and reviews.
type AuthorView struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Avatar     string  `json:"avatar"`
	Initials   string  `json:"initials"`
	Credits    int     `json:"credits"`
	Rating     float64 `json:"rating"`
	IsVerified bool    `json:"is_verified"`
}

type ProblemView struct {
	ID              uint       `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	Description     string     `json:"description"`
	Tags            []string   `json:"tags"`
	Mode            string     `json:"mode"`
	Urgency         string     `json:"urgency"`
	Status          string     `json:"status"`
	OwnerID         uint       `json:"owner_id"`
	CurrentSolverID *uint      `json:"current_solver_id"`
	Time            string     `json:"time"`
	Responses       int        `json:"responses"`
	Credits         int        `json:"credits"`
	LocationLabel   string     `json:"location_label"`
	Author          AuthorView `json:"author"`

	SolverMeetingNote     string     `json:"solver_meeting_note,omitempty"`
	SolverMeetingNotedAt  *time.Time `json:"solver_meeting_noted_at,omitempty"`
	OwnerMeetingReply     string     `json:"owner_meeting_reply,omitempty"`
	OwnerMeetingRepliedAt *time.Time `json:"owner_meeting_replied_at,omitempty"`
}

type SolutionView struct {
	ID          uint             `json:"id"`
	Content     string           `json:"content"`
	Accepted    bool             `json:"accepted"`
	Time        string           `json:"time"`
	Helpful     int              `json:"helpful"`
	Author      AuthorView       `json:"author"`
	Attachments []AttachmentView `json:"attachments"`
}

type AttachmentView struct {
	ID       uint   `json:"id"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	URL      string `json:"url,omitempty"`
}

type ReviewView struct {
	Rating  int        `json:"rating"`
	Comment string     `json:"comment"`
	Time    string     `json:"time"`
	Author  AuthorView `json:"author"`
}

func serializeAuthor(user *models.User, profile *models.UserProfile) AuthorView {
	if user == nil {
		return AuthorView{Name: "Unknown", Initials: "??", Rating: 5.0}
	}
	view := AuthorView{
		ID:       user.ID,
		Name:     user.Name(),
		Initials: Initials(user.Name()),
		Rating:   5.0,
	}
	if profile != nil {
		view.Avatar = profile.Avatar
		view.Credits = profile.Credits
		view.Rating = profile.Rating
		view.IsVerified = profile.IsVerified()
	}
	return view
}

func serializeProblem(p *models.Problem, ownerProfile *models.UserProfile) ProblemView {
	view := ProblemView{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Subject:         subjectOrGeneral(p.Subject),
		Description:     p.Description,
		Tags:            SplitTags(p.Tags),
		Mode:            p.Mode,
		Urgency:         p.Urgency,
		Status:          p.Status,
		OwnerID:         p.OwnerID,
		CurrentSolverID: p.CurrentSolverID,
		Time:            RelativeTime(p.CreatedAt, time.Now()),
		Responses:       len(p.Solutions),
		Credits:         p.CreditsOffered,
		LocationLabel:   p.LocationLabel,
		Author:          serializeAuthor(&p.Owner, p.Owner.Profile),
	}
	if p.Mode == models.ModeInPerson {
		view.SolverMeetingNote = p.SolverMeetingNote
		view.SolverMeetingNotedAt = p.SolverMeetingNotedAt
		view.OwnerMeetingReply = p.OwnerMeetingReply
		view.OwnerMeetingRepliedAt = p.OwnerMeetingRepliedAt
	}
	if ownerProfile != nil {
		view.Author = serializeAuthor(&p.Owner, ownerProfile)
	}
	return view
}

func serializeSolution(s *models.Solution, authorProfile *models.UserProfile) SolutionView {
	view := SolutionView{
		ID:          s.ID,
		Content:     s.Content,
		Accepted:    s.IsAccepted,
		Time:        RelativeTime(s.CreatedAt, time.Now()),
		Helpful:     len(s.Reviews),
		Author:      serializeAuthor(&s.Author, authorProfile),
		Attachments: make([]AttachmentView, 0, len(s.Attachments)),
	}
	for _, a := range s.Attachments {
		av := AttachmentView{ID: a.ID, FileName: a.FileName, Size: a.Size}
		if objectStorage != nil {
			if url, err := objectStorage.SignedURL(a.ObjectKey, time.Hour); err == nil {
				av.URL = url
			}
		}
		view.Attachments = append(view.Attachments, av)
	}
	return view
}

// Formatting helpers

// Initials returns the one- or two-letter monogram for a display name.
// Slicing happens on runes, not bytes, so accented names keep valid
// UTF-8 monograms.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return strings.ToUpper(firstRunes(name, 2))
	case 1:
		return strings.ToUpper(firstRunes(parts[0], 2))
	default:
		return strings.ToUpper(firstRunes(parts[0], 1) + firstRunes(parts[1], 1))
	}
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// SplitTags turns the stored comma string into a display list,
// defaulting to General when no tags were given.
func SplitTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{"General"}
	}
	return out
}

// RelativeTime renders "N <unit> ago" for display timestamps.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/(24*30)), "month")
	default:
		return plural(int(d.Hours()/(24*365)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func subjectOrGeneral(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return "General"
	}
	return subject
}
