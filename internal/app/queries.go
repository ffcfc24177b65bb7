package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"campus_catalog/internal/domain"
)

type QueryService struct {
	catalog  domain.CatalogRepository
	reviews  domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(c domain.CatalogRepository, r domain.ReviewRepository, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{catalog: c, reviews: r, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) GetCourse(ctx context.Context, id string) (domain.CourseView, error) {
	key := fmt.Sprintf("course:%s", id)
	var cv domain.CourseView
	if ok, _ := s.cache.Get(ctx, key, &cv); ok {
		return cv, nil
	}
	cv, err := s.catalog.GetCourse(ctx, id)
	if err != nil {
		return domain.CourseView{}, err
	}
	_ = s.cache.Set(ctx, key, cv, int(s.cacheTTL.Seconds()))
	return cv, nil
}

func (s *QueryService) SearchCourses(ctx context.Context, q domain.CoursesQuery) (domain.CoursesPage, error) {
	key := fmt.Sprintf("courses:%s:%s:%d", deref(q.Q), deref(q.Department), q.Limit)
	var out domain.CoursesPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.catalog.SearchCourses(ctx, q)
	if err != nil {
		return domain.CoursesPage{}, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// GetProfessor returns the professor with a summary recomputed from the full
// review set on every call; summaries themselves are never cached. A failure
// loading the reviews is logged and downgraded to "no summary" — the caller
// cannot tell it apart from "no reviews yet".
func (s *QueryService) GetProfessor(ctx context.Context, id string) (domain.ProfessorView, error) {
	p, err := s.catalog.GetProfessor(ctx, id)
	if err != nil {
		return domain.ProfessorView{}, err
	}
	rs, err := s.reviews.ListAllReviews(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("professor_id", id).Msg("load reviews for summary failed")
		return domain.ProfessorView{Professor: p}, nil
	}
	return domain.ProfessorView{Professor: p, Summary: Summarize(rs)}, nil
}

func (s *QueryService) ListReviews(ctx context.Context, professorID string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	key := reviewsKey(professorID, pg.Limit, pg.Sort)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.reviews.ListReviews(ctx, professorID, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array (prevents tests
	// from mutating the cached value)
	copyRS := deepCopyReviewsPage(rs)

	// optional size guard
	if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyRS, int(s.cacheTTL.Seconds()))
	}
	return copyRS, nil
}

func reviewsKey(professorID string, limit int, sort string) string {
	return fmt.Sprintf("reviews:%s:%d:%s", professorID, limit, sort)
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.Review, n)
		copy(out.Items, in.Items)
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
