package domain

// Professor is a first-class entity with a generated opaque key. Course
// sections and reviews reference professors by ID, never by display name;
// the name is only used during catalog ingestion to resolve feed rows to an
// existing entity.
type Professor struct {
	ID             string // UUID
	DisplayName    string
	NormalizedName string // lowercased, trimmed; ingestion lookup key
	Department     *string
}

// Tier is the discrete badge classification derived from a mean rating.
type Tier string

const (
	TierPositive Tier = "positive"
	TierNeutral  Tier = "neutral"
	TierNegative Tier = "negative"
)

// RatingSummary is derived on demand from the full review set of one
// professor and never persisted. Means are rounded to one decimal.
type RatingSummary struct {
	Overall        float64
	Clarity        float64
	Fairness       float64
	Punctuality    float64
	WouldTakeAgain float64
	ReviewCount    int
	Tier           Tier
}

// ProfessorView is the read model served by the API: the professor plus a
// freshly computed summary, nil when no reviews exist.
type ProfessorView struct {
	Professor
	Summary *RatingSummary
}
