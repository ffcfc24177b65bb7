package domain

// Course is read-only reference data owned by the registrar feed.
type Course struct {
	ID          string // registrar course code, e.g. "CS-1337"
	Code        string
	Title       string
	Department  *string
	Level       *int
	Description *string
	RawJSON     []byte // full registrar payload
}

// Section identifies one offering of a course in a term. ProfessorID is the
// stable professor key resolved at ingestion time; nil when the feed row
// carried no instructor.
type Section struct {
	ID          string
	CourseID    string
	Term        string
	SectionCode string
	ProfessorID *string
	Schedule    *string
	Room        *string
	Capacity    *int
}

// CourseView joins a course with its sections for the read path.
type CourseView struct {
	Course
	Sections []Section
}
