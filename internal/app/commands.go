package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"campus_catalog/internal/domain"
)

// AnonymousAuthor is the fallback display name when the authenticated
// identity carries no name of its own.
const AnonymousAuthor = "Usuario Anónimo"

// ReviewInput is the submission payload. The comment is required here, not
// just at the form layer; sub-ratings are optional but bounded when present.
type ReviewInput struct {
	Rating         int      `json:"rating" validate:"required,min=1,max=5"`
	Clarity        *float64 `json:"clarity" validate:"omitempty,min=1,max=5"`
	Fairness       *float64 `json:"fairness" validate:"omitempty,min=1,max=5"`
	Punctuality    *float64 `json:"punctuality" validate:"omitempty,min=1,max=5"`
	WouldTakeAgain *float64 `json:"would_take_again" validate:"omitempty,min=1,max=5"`
	Comment        string   `json:"comment" validate:"required"`
}

type ReviewService struct {
	catalog  domain.CatalogRepository
	reviews  domain.ReviewRepository
	cache    domain.Cache
	validate *validator.Validate
}

func NewReviewService(c domain.CatalogRepository, r domain.ReviewRepository, cache domain.Cache) *ReviewService {
	return &ReviewService{
		catalog:  c,
		reviews:  r,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SubmitReview appends exactly one review for the professor on behalf of the
// given identity. The identity is an explicit argument; nothing here reads
// ambient session state. An anonymous identity is rejected before any write.
// On success the professor's cached review pages are invalidated so the very
// next aggregation includes the new record.
func (s *ReviewService) SubmitReview(ctx context.Context, ident domain.Identity, professorID string, in ReviewInput) (*domain.Review, error) {
	if ident.Anonymous() {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidReview, err)
	}
	if _, err := s.catalog.GetProfessor(ctx, professorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(ident.DisplayName)
	if name == "" {
		name = AnonymousAuthor
	}

	rv := &domain.Review{
		ProfessorID:    professorID,
		AuthorID:       ident.UserID,
		AuthorName:     name,
		Rating:         in.Rating,
		Clarity:        in.Clarity,
		Fairness:       in.Fairness,
		Punctuality:    in.Punctuality,
		WouldTakeAgain: in.WouldTakeAgain,
		Comment:        in.Comment,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.reviews.InsertReview(ctx, rv); err != nil {
		return nil, fmt.Errorf("insert review for %s: %w", professorID, err)
	}

	if s.cache != nil {
		s.invalidateReviews(ctx, professorID)
	}
	return rv, nil
}

// invalidate the most common review cache variants
func (s *ReviewService) invalidateReviews(ctx context.Context, professorID string) {
	// The API default is limit=50, sort=-created_at. Invalidate that first.
	_ = s.cache.Del(ctx, reviewsKey(professorID, 50, "-created_at"))
	for _, lim := range []int{100, 200} {
		_ = s.cache.Del(ctx, reviewsKey(professorID, lim, "-created_at"))
	}
}
