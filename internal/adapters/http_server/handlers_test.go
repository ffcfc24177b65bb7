package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpserver "campus_catalog/internal/adapters/http_server"
	"campus_catalog/internal/app"
	"campus_catalog/internal/auth"
	"campus_catalog/internal/domain"
)

// ---- fakes ----

type memCatalog struct {
	professors map[string]domain.Professor
	courses    map[string]domain.CourseView
}

func (m *memCatalog) UpsertProfessor(ctx context.Context, p domain.Professor) error { return nil }
func (m *memCatalog) UpsertCourse(ctx context.Context, c domain.Course) error       { return nil }
func (m *memCatalog) UpsertSections(ctx context.Context, ss []domain.Section) error { return nil }
func (m *memCatalog) LogMiss(ctx context.Context, id string, status int, reason string) error {
	return nil
}
func (m *memCatalog) GetProfessor(ctx context.Context, id string) (domain.Professor, error) {
	p, ok := m.professors[id]
	if !ok {
		return domain.Professor{}, domain.ErrNotFound
	}
	return p, nil
}
func (m *memCatalog) GetProfessorByNormalizedName(ctx context.Context, name string) (domain.Professor, error) {
	return domain.Professor{}, domain.ErrNotFound
}
func (m *memCatalog) GetCourse(ctx context.Context, id string) (domain.CourseView, error) {
	cv, ok := m.courses[id]
	if !ok {
		return domain.CourseView{}, domain.ErrNotFound
	}
	return cv, nil
}
func (m *memCatalog) SearchCourses(ctx context.Context, q domain.CoursesQuery) (domain.CoursesPage, error) {
	var out []domain.Course
	for _, cv := range m.courses {
		out = append(out, cv.Course)
	}
	return domain.CoursesPage{Items: out}, nil
}

type memReviews struct {
	items  []domain.Review
	nextID int64
}

func (m *memReviews) InsertReview(ctx context.Context, r *domain.Review) error {
	m.nextID++
	r.ID = m.nextID
	m.items = append(m.items, *r)
	return nil
}
func (m *memReviews) ListReviews(ctx context.Context, professorID string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	rs, _ := m.ListAllReviews(ctx, professorID)
	return domain.ReviewsPage{Items: rs}, nil
}
func (m *memReviews) ListAllReviews(ctx context.Context, professorID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range m.items {
		if r.ProfessorID == professorID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memCache struct{ store map[string][]byte }

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	return nil
}
func (c *memCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- fixture ----

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *memReviews, *auth.JWTAuthenticator) {
	t.Helper()

	cat := &memCatalog{
		professors: map[string]domain.Professor{
			"p-1": {ID: "p-1", DisplayName: "Jane Doe", NormalizedName: "jane doe"},
		},
		courses: map[string]domain.CourseView{
			"CS-1337": {Course: domain.Course{ID: "CS-1337", Code: "CS-1337", Title: "Computer Science I"}},
		},
	}
	rev := &memReviews{}
	cache := &memCache{}
	authn := auth.NewJWTAuthenticator(testSecret, "campus-catalog", "campus-auth")

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:    app.NewQueryService(cat, rev, cache, time.Minute),
		R:    app.NewReviewService(cat, rev, cache),
		Auth: authn,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, rev, authn
}

func bearerToken(t *testing.T, a *auth.JWTAuthenticator, userID, name string) string {
	t.Helper()
	tok, err := a.GenerateToken(userID, name, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + tok
}

func postReview(t *testing.T, ts *httptest.Server, authz string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/professors/p-1/reviews", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	return res
}

// ---- tests ----

func TestGetProfessor_NoReviews(t *testing.T) {
	ts, _, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/v1/professors/p-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var body struct {
		DisplayName string          `json:"display_name"`
		Summary     json.RawMessage `json:"summary"`
		Display     string          `json:"display"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.DisplayName != "Jane Doe" || string(body.Summary) != "null" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Display != "Sin calificación" {
		t.Fatalf("display: %q", body.Display)
	}
}

func TestSubmitReview_RequiresAuth(t *testing.T) {
	ts, rev, _ := newTestServer(t)

	res := postReview(t, ts, "", map[string]any{"rating": 5, "comment": "ok"})
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", res.StatusCode)
	}
	if res.Header.Get("Content-Type") != "application/problem+json" {
		t.Fatalf("content type %q", res.Header.Get("Content-Type"))
	}

	res2 := postReview(t, ts, "Bearer not-a-token", map[string]any{"rating": 5, "comment": "ok"})
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", res2.StatusCode)
	}

	if len(rev.items) != 0 {
		t.Fatalf("nothing may be persisted without auth")
	}
}

func TestSubmitReview_ThenAggregated(t *testing.T) {
	ts, _, authn := newTestServer(t)
	authz := bearerToken(t, authn, "u-1", "Carla")

	for _, rating := range []int{5, 4, 3} {
		res := postReview(t, ts, authz, map[string]any{"rating": rating, "comment": "buen curso"})
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("status %d, want 201", res.StatusCode)
		}
		res.Body.Close()
	}

	res, err := http.Get(ts.URL + "/v1/professors/p-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()

	var body struct {
		Summary *struct {
			Overall     float64 `json:"overall"`
			ReviewCount int     `json:"review_count"`
			Tier        string  `json:"tier"`
		} `json:"summary"`
		Display string `json:"display"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary == nil || body.Summary.Overall != 4.0 || body.Summary.ReviewCount != 3 {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}
	if body.Summary.Tier != "positive" || body.Display != "4.0/5" {
		t.Fatalf("tier=%q display=%q", body.Summary.Tier, body.Display)
	}
}

func TestSubmitReview_InvalidPayload(t *testing.T) {
	ts, rev, authn := newTestServer(t)
	authz := bearerToken(t, authn, "u-1", "Carla")

	res := postReview(t, ts, authz, map[string]any{"rating": 9, "comment": "x"})
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", res.StatusCode)
	}
	if len(rev.items) != 0 {
		t.Fatalf("invalid payload must not persist")
	}
}

func TestSubmitReview_UnknownProfessor(t *testing.T) {
	ts, _, authn := newTestServer(t)
	authz := bearerToken(t, authn, "u-1", "Carla")

	b, _ := json.Marshal(map[string]any{"rating": 5, "comment": "ok"})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/professors/p-missing/reviews", bytes.NewReader(b))
	req.Header.Set("Authorization", authz)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", res.StatusCode)
	}
}

func TestGetCourse_ETagRoundTrip(t *testing.T) {
	ts, _, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/v1/courses/CS-1337")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	etag := res.Header.Get("ETag")
	if res.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("status %d etag %q", res.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/courses/CS-1337", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("status %d, want 304", res2.StatusCode)
	}
}

func TestGetCourse_NotFound(t *testing.T) {
	ts, _, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/v1/courses/NOPE-0000")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", res.StatusCode)
	}
	var p struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if p.Title != "Not Found" || p.Status != 404 {
		t.Fatalf("unexpected problem: %+v", p)
	}
}
