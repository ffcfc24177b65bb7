package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidReview   = errors.New("invalid review")
)

type CatalogRepository interface {
	// Write paths (ingestion)
	UpsertProfessor(ctx context.Context, p Professor) error
	UpsertCourse(ctx context.Context, c Course) error
	UpsertSections(ctx context.Context, ss []Section) error
	LogMiss(ctx context.Context, courseID string, status int, reason string) error

	// Read paths
	GetProfessor(ctx context.Context, id string) (Professor, error)
	GetProfessorByNormalizedName(ctx context.Context, name string) (Professor, error)
	GetCourse(ctx context.Context, id string) (CourseView, error)
	SearchCourses(ctx context.Context, q CoursesQuery) (CoursesPage, error)
}

type ReviewRepository interface {
	InsertReview(ctx context.Context, r *Review) error
	ListReviews(ctx context.Context, professorID string, pg PageQuery) (ReviewsPage, error)
	// ListAllReviews returns every review for one professor; the aggregator
	// consumes the full set.
	ListAllReviews(ctx context.Context, professorID string) ([]Review, error)
}

type RegistrarClient interface {
	GetCourse(ctx context.Context, code string) (map[string]any, error)
	GetSections(ctx context.Context, code, term string) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries

type CoursesQuery struct {
	Q          *string
	Department *string
	Limit      int
}

type PageQuery struct {
	Limit int
	Sort  string
}

type CoursesPage struct {
	Items []Course
}

type ReviewsPage struct {
	Items []Review
}
