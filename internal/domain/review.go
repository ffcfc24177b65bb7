package domain

import "time"

// Review is append-only: created once through the submission flow, never
// edited or deleted. Sub-ratings are optional; older records may lack them.
type Review struct {
	ID             int64
	ProfessorID    string
	AuthorID       string
	AuthorName     string
	Rating         int // 1-5
	Clarity        *float64
	Fairness       *float64
	Punctuality    *float64
	WouldTakeAgain *float64
	Comment        string
	CreatedAt      time.Time
}

// Identity is the authenticated caller, passed explicitly into the
// submission operation. DisplayName may be empty.
type Identity struct {
	UserID      string
	DisplayName string
}

func (i Identity) Anonymous() bool { return i.UserID == "" }
