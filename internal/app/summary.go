package app

import (
	"math"
	"strconv"

	"campus_catalog/internal/domain"
)

// NoRatingDisplay is shown wherever a professor has no reviews yet.
const NoRatingDisplay = "Sin calificación"

// Summarize computes the per-field arithmetic mean over the full review set
// of one professor, rounded to one decimal. Returns nil for an empty set.
//
// Sub-ratings absent on older records count as zero in their field's mean
// (they drag the mean down rather than shrinking N). See DESIGN.md.
func Summarize(rs []domain.Review) *domain.RatingSummary {
	if len(rs) == 0 {
		return nil
	}
	var overall, clarity, fairness, punctuality, wta float64
	for _, r := range rs {
		overall += float64(r.Rating)
		clarity += orZero(r.Clarity)
		fairness += orZero(r.Fairness)
		punctuality += orZero(r.Punctuality)
		wta += orZero(r.WouldTakeAgain)
	}
	n := float64(len(rs))
	s := &domain.RatingSummary{
		Overall:        round1(overall / n),
		Clarity:        round1(clarity / n),
		Fairness:       round1(fairness / n),
		Punctuality:    round1(punctuality / n),
		WouldTakeAgain: round1(wta / n),
		ReviewCount:    len(rs),
	}
	s.Tier = TierFor(s.Overall)
	return s
}

// TierFor maps a mean rating to its badge tier: >=4 positive, >=3 neutral,
// else negative.
func TierFor(mean float64) domain.Tier {
	switch {
	case mean >= 4:
		return domain.TierPositive
	case mean >= 3:
		return domain.TierNeutral
	default:
		return domain.TierNegative
	}
}

// DisplayRating renders the badge text: "4.0/5", or NoRatingDisplay when the
// summary is absent.
func DisplayRating(s *domain.RatingSummary) string {
	if s == nil {
		return NoRatingDisplay
	}
	return strconv.FormatFloat(s.Overall, 'f', 1, 64) + "/5"
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
