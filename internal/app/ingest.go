package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"campus_catalog/internal/domain"
)

type IngestionService struct {
	registrar domain.RegistrarClient
	repo      domain.CatalogRepository
	cache     domain.Cache
}

func NewIngestionService(c domain.RegistrarClient, r domain.CatalogRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{registrar: c, repo: r, cache: cache}
}

// IngestCourse pulls one course and its sections for a term from the
// registrar feed. Known 404/401/403 responses are recorded as misses and end
// the ingest gracefully; anything else bubbles up.
func (s *IngestionService) IngestCourse(ctx context.Context, code, term string) error {
	p, err := s.registrar.GetCourse(ctx, code)
	if err != nil {
		low := strings.ToLower(err.Error())

		// 404: course not found -> record miss, evict stale cache, stop.
		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.repo.LogMiss(ctx, code, 404, "not found")
			if s.cache != nil {
				s.invalidateCourse(ctx, code)
			}
			return nil
		}

		// 401/403: feed credentials rejected or course inactive -> miss, stop.
		if strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized") {
			_ = s.repo.LogMiss(ctx, code, 403, "inactive")
			if s.cache != nil {
				s.invalidateCourse(ctx, code)
			}
			return nil
		}

		// Anything else is unexpected (network/5xx/JSON/etc.) -> bubble up.
		return err
	}

	course := mapCourse(code, p)
	if err := s.repo.UpsertCourse(ctx, course); err != nil {
		return err
	}
	if s.cache != nil {
		s.invalidateCourse(ctx, course.ID)
	}

	// Sections: best-effort. 404/401/403 are misses, other errors surface.
	rows, rerr := s.registrar.GetSections(ctx, code, term)
	if rerr != nil {
		low := strings.ToLower(rerr.Error())
		switch {
		case errors.Is(rerr, domain.ErrNotFound) || strings.Contains(low, "not found"):
			_ = s.repo.LogMiss(ctx, code, 404, "sections")
		case strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized"):
			_ = s.repo.LogMiss(ctx, code, 403, "sections")
		default:
			return rerr
		}
		return nil
	}

	if len(rows) == 0 {
		return nil
	}

	sections, err := s.mapSections(ctx, course, term, rows)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertSections(ctx, sections); err != nil {
		return fmt.Errorf("upsert sections failed for %s: %w", code, err)
	}
	if s.cache != nil {
		s.invalidateCourse(ctx, course.ID)
	}
	return nil
}

// mapSections resolves each feed row to a Section. The feed names
// instructors by display name only; resolveProfessor turns that into the
// stable professor key, creating the entity on first sight.
func (s *IngestionService) mapSections(ctx context.Context, course domain.Course, term string, rows []map[string]any) ([]domain.Section, error) {
	out := make([]domain.Section, 0, len(rows))
	for _, row := range rows {
		sec := mapSection(course.ID, term, row)

		if name := instructorName(row); name != "" {
			p, err := s.resolveProfessor(ctx, name, course.Department)
			if err != nil {
				return nil, err
			}
			sec.ProfessorID = &p.ID
		} else {
			log.Debug().Str("course", course.ID).Str("section", sec.SectionCode).
				Msg("feed row without instructor")
		}
		out = append(out, sec)
	}
	return out, nil
}

// resolveProfessor maps a feed display name to the professor entity, keyed by
// a generated UUID. Two professors sharing a display name still conflate
// here — the feed offers nothing better to tell them apart.
func (s *IngestionService) resolveProfessor(ctx context.Context, displayName string, dept *string) (domain.Professor, error) {
	norm := NormalizeProfessorName(displayName)
	p, err := s.repo.GetProfessorByNormalizedName(ctx, norm)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Professor{}, err
	}

	p = domain.Professor{
		ID:             uuid.NewString(),
		DisplayName:    strings.TrimSpace(displayName),
		NormalizedName: norm,
		Department:     dept,
	}
	if err := s.repo.UpsertProfessor(ctx, p); err != nil {
		return domain.Professor{}, err
	}
	// Re-read by name: a concurrent worker may have won the insert, and the
	// unique key on normalized_name keeps exactly one row.
	return s.repo.GetProfessorByNormalizedName(ctx, norm)
}

// NormalizeProfessorName is the canonical ingestion lookup key for a display
// name: trimmed, lowercased, inner whitespace collapsed.
func NormalizeProfessorName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (s *IngestionService) invalidateCourse(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, fmt.Sprintf("course:%s", id))
}
