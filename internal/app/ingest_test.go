package app_test

import (
	"context"
	"errors"
	"testing"

	"campus_catalog/internal/app"
)

type fakeRegistrar struct {
	course     map[string]any
	sections   []map[string]any
	courseErr  error
	sectionErr error
}

func (f *fakeRegistrar) GetCourse(ctx context.Context, code string) (map[string]any, error) {
	if f.courseErr != nil {
		return nil, f.courseErr
	}
	return f.course, nil
}
func (f *fakeRegistrar) GetSections(ctx context.Context, code, term string) ([]map[string]any, error) {
	if f.sectionErr != nil {
		return nil, f.sectionErr
	}
	return f.sections, nil
}

func TestIngestCourse_ResolvesProfessorsToStableKeys(t *testing.T) {
	reg := &fakeRegistrar{
		course: map[string]any{"code": "CS-1337", "title": "Computer Science I", "department": "CS"},
		sections: []map[string]any{
			{"section": "001", "instructor": "Jane Doe", "room": "ECSS 2.306", "capacity": 60.0},
			{"section": "002", "instructor": "jane  doe"}, // same person, messy feed spelling
			{"section": "003", "instructor": "John Roe"},
		},
	}
	cat := &fakeCatalog{}
	ing := app.NewIngestionService(reg, cat, &fakeCache{})

	if err := ing.IngestCourse(context.Background(), "CS-1337", "2026F"); err != nil {
		t.Fatalf("err: %v", err)
	}

	cv, err := cat.GetCourse(context.Background(), "CS-1337")
	if err != nil {
		t.Fatalf("course not stored: %v", err)
	}
	if cv.Title != "Computer Science I" || len(cv.Sections) != 3 {
		t.Fatalf("unexpected course view: %+v", cv)
	}

	// one professor entity per person, sections share the stable key
	if len(cat.byName) != 2 {
		t.Fatalf("expected 2 professors, got %d", len(cat.byName))
	}
	s1, s2 := cv.Sections[0], cv.Sections[1]
	if s1.ProfessorID == nil || s2.ProfessorID == nil || *s1.ProfessorID != *s2.ProfessorID {
		t.Fatalf("same-name sections must share a professor key: %+v %+v", s1.ProfessorID, s2.ProfessorID)
	}
	jane, _ := cat.GetProfessorByNormalizedName(context.Background(), "jane doe")
	if jane.DisplayName != "Jane Doe" {
		t.Fatalf("unexpected professor: %+v", jane)
	}
}

func TestIngestCourse_SecondRunReusesProfessorKey(t *testing.T) {
	reg := &fakeRegistrar{
		course:   map[string]any{"code": "CS-1337", "title": "Computer Science I"},
		sections: []map[string]any{{"section": "001", "instructor": "Jane Doe"}},
	}
	cat := &fakeCatalog{}
	ing := app.NewIngestionService(reg, cat, &fakeCache{})

	if err := ing.IngestCourse(context.Background(), "CS-1337", "2026F"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := cat.GetProfessorByNormalizedName(context.Background(), "jane doe")

	if err := ing.IngestCourse(context.Background(), "CS-1337", "2026S"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := cat.GetProfessorByNormalizedName(context.Background(), "jane doe")
	if first.ID != second.ID {
		t.Fatalf("professor key must be stable across runs: %s != %s", first.ID, second.ID)
	}
}

func TestIngestCourse_NotFoundLogsMissAndStops(t *testing.T) {
	reg := &fakeRegistrar{courseErr: errors.New("registrar: not found")}
	cat := &fakeCatalog{}
	ing := app.NewIngestionService(reg, cat, &fakeCache{})

	if err := ing.IngestCourse(context.Background(), "NOPE-0000", "2026F"); err != nil {
		t.Fatalf("404 must end the ingest gracefully, got %v", err)
	}
	if len(cat.misses) != 1 || cat.misses[0] != "NOPE-0000:not found" {
		t.Fatalf("expected recorded miss, got %v", cat.misses)
	}
	if len(cat.courses) != 0 {
		t.Fatalf("nothing may be stored on a miss")
	}
}

func TestIngestCourse_UnexpectedErrorBubbles(t *testing.T) {
	reg := &fakeRegistrar{courseErr: errors.New("remote 500")}
	ing := app.NewIngestionService(reg, &fakeCatalog{}, &fakeCache{})

	if err := ing.IngestCourse(context.Background(), "CS-1337", "2026F"); err == nil {
		t.Fatalf("transient error must bubble up")
	}
}

func TestNormalizeProfessorName(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":       "jane doe",
		"  jane   DOE  ": "jane doe",
		"JANE DOE":       "jane doe",
	}
	for in, want := range cases {
		if got := app.NormalizeProfessorName(in); got != want {
			t.Fatalf("NormalizeProfessorName(%q): want %q, got %q", in, want, got)
		}
	}
}
