package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"campus_catalog/internal/adapters/observability"
	"campus_catalog/internal/app"
	"campus_catalog/internal/domain"
)

type Handlers struct {
	Q    *app.QueryService
	R    *app.ReviewService
	Auth TokenValidator
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/courses", h.searchCourses)
	s.mux.Get("/v1/courses/{id}", h.getCourse)
	s.mux.Get("/v1/professors/{id}", h.getProfessor)
	s.mux.Get("/v1/professors/{id}/reviews", h.listReviews)
	s.mux.With(RequireAuth(h.Auth)).Post("/v1/professors/{id}/reviews", h.submitReview)
}

// ---- response shapes ----

type summaryResp struct {
	Overall        float64 `json:"overall"`
	Clarity        float64 `json:"clarity"`
	Fairness       float64 `json:"fairness"`
	Punctuality    float64 `json:"punctuality"`
	WouldTakeAgain float64 `json:"would_take_again"`
	ReviewCount    int     `json:"review_count"`
	Tier           string  `json:"tier"`
}

type professorResp struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Department  *string      `json:"department,omitempty"`
	Summary     *summaryResp `json:"summary"`
	Display     string       `json:"display"`
}

type sectionResp struct {
	ID          string  `json:"id"`
	Term        string  `json:"term"`
	SectionCode string  `json:"section_code"`
	ProfessorID *string `json:"professor_id,omitempty"`
	Schedule    *string `json:"schedule,omitempty"`
	Room        *string `json:"room,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
}

type courseResp struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Title       string        `json:"title"`
	Department  *string       `json:"department,omitempty"`
	Level       *int          `json:"level,omitempty"`
	Description *string       `json:"description,omitempty"`
	Sections    []sectionResp `json:"sections,omitempty"`
}

type reviewResp struct {
	ID             int64     `json:"id"`
	ProfessorID    string    `json:"professor_id"`
	AuthorName     string    `json:"author_name"`
	Rating         int       `json:"rating"`
	Clarity        *float64  `json:"clarity,omitempty"`
	Fairness       *float64  `json:"fairness,omitempty"`
	Punctuality    *float64  `json:"punctuality,omitempty"`
	WouldTakeAgain *float64  `json:"would_take_again,omitempty"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

func toCourseResp(cv domain.CourseView) courseResp {
	out := courseResp{
		ID:          cv.ID,
		Code:        cv.Code,
		Title:       cv.Title,
		Department:  cv.Department,
		Level:       cv.Level,
		Description: cv.Description,
	}
	for _, s := range cv.Sections {
		out.Sections = append(out.Sections, sectionResp{
			ID:          s.ID,
			Term:        s.Term,
			SectionCode: s.SectionCode,
			ProfessorID: s.ProfessorID,
			Schedule:    s.Schedule,
			Room:        s.Room,
			Capacity:    s.Capacity,
		})
	}
	return out
}

func toProfessorResp(pv domain.ProfessorView) professorResp {
	out := professorResp{
		ID:          pv.ID,
		DisplayName: pv.DisplayName,
		Department:  pv.Department,
		Display:     app.DisplayRating(pv.Summary),
	}
	if s := pv.Summary; s != nil {
		out.Summary = &summaryResp{
			Overall:        s.Overall,
			Clarity:        s.Clarity,
			Fairness:       s.Fairness,
			Punctuality:    s.Punctuality,
			WouldTakeAgain: s.WouldTakeAgain,
			ReviewCount:    s.ReviewCount,
			Tier:           string(s.Tier),
		}
	}
	return out
}

func toReviewResp(r domain.Review) reviewResp {
	return reviewResp{
		ID:             r.ID,
		ProfessorID:    r.ProfessorID,
		AuthorName:     r.AuthorName,
		Rating:         r.Rating,
		Clarity:        r.Clarity,
		Fairness:       r.Fairness,
		Punctuality:    r.Punctuality,
		WouldTakeAgain: r.WouldTakeAgain,
		Comment:        r.Comment,
		CreatedAt:      r.CreatedAt,
	}
}

// ---- helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request, def, max int) (int, bool) {
	limit := def
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > max {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and "+strconv.Itoa(max))
			return 0, false
		}
		limit = l
	}
	return limit, true
}

func optParam(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

// ---- handlers ----

func (h *Handlers) searchCourses(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 25, 100)
	if !ok {
		return
	}
	q := domain.CoursesQuery{
		Q:          optParam(r, "q"),
		Department: optParam(r, "department"),
		Limit:      limit,
	}
	out, err := h.Q.SearchCourses(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Search Failed", "could not search courses")
		return
	}
	items := make([]courseResp, 0, len(out.Items))
	for _, c := range out.Items {
		items = append(items, toCourseResp(domain.CourseView{Course: c}))
	}
	writeWithETag(w, r, map[string]any{"items": items})
}

func (h *Handlers) getCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cv, err := h.Q.GetCourse(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "course not found")
		return
	}
	writeWithETag(w, r, toCourseResp(cv))
}

func (h *Handlers) getProfessor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pv, err := h.Q.GetProfessor(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "professor not found")
		return
	}
	writeWithETag(w, r, toProfessorResp(pv))
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, ok := parseLimit(w, r, 50, 200)
	if !ok {
		return
	}

	// Newest first; aligns with DB index on (professor_id, created_at, id)
	page := domain.PageQuery{Limit: limit, Sort: "-created_at"}
	out, err := h.Q.ListReviews(r.Context(), id, page)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "reviews not found")
		return
	}
	items := make([]reviewResp, 0, len(out.Items))
	for _, rv := range out.Items {
		items = append(items, toReviewResp(rv))
	}
	writeWithETag(w, r, map[string]any{"items": items})
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in app.ReviewInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	rv, err := h.R.SubmitReview(r.Context(), IdentityFrom(r), id, in)
	switch {
	case err == nil:
		observability.ObserveReviewSubmission("ok")
		writeJSON(w, http.StatusCreated, toReviewResp(*rv))
	case errors.Is(err, domain.ErrUnauthenticated):
		observability.ObserveReviewSubmission("rejected")
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "sign in to submit a review")
	case errors.Is(err, domain.ErrInvalidReview):
		observability.ObserveReviewSubmission("rejected")
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Review", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveReviewSubmission("rejected")
		writeProblem(w, http.StatusNotFound, "Not Found", "professor not found")
	default:
		observability.ObserveReviewSubmission("failed")
		log.Error().Err(err).Str("professor_id", id).Msg("review submission failed")
		writeProblem(w, http.StatusServiceUnavailable, "Transient Failure", "could not save the review, try again")
	}
}
