package mysql

import (
	"context"
	"database/sql"
	"strings"

	"campus_catalog/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}
func nullF64(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- write paths (ingestion) ----

func (r *Repo) UpsertProfessor(ctx context.Context, p domain.Professor) error {
	_, err := r.db.ExecContext(ctx, upsertProfessorSQL,
		p.ID,
		p.DisplayName,
		p.NormalizedName,
		valStr(p.Department),
	)
	return err
}

func (r *Repo) UpsertCourse(ctx context.Context, c domain.Course) error {
	_, err := r.db.ExecContext(ctx, upsertCourseSQL,
		c.ID,
		c.Code,
		c.Title,
		valStr(c.Department),
		valInt(c.Level),
		valStr(c.Description),
		string(c.RawJSON),
	)
	return err
}

func (r *Repo) UpsertSections(ctx context.Context, ss []domain.Section) error {
	if len(ss) == 0 {
		return nil
	}
	values := make([]string, 0, len(ss))
	args := make([]any, 0, len(ss)*8)
	for _, s := range ss {
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args,
			s.ID,
			s.CourseID,
			s.Term,
			s.SectionCode,
			valStr(s.ProfessorID),
			valStr(s.Schedule),
			valStr(s.Room),
			valInt(s.Capacity),
		)
	}
	sqlStr := insertSectionsPrefix + strings.Join(values, ",") + insertSectionsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, courseID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, courseID, status, reason)
	return err
}

// ---- review write path ----

func (r *Repo) InsertReview(ctx context.Context, rv *domain.Review) error {
	var createdAt any
	if !rv.CreatedAt.IsZero() {
		createdAt = rv.CreatedAt
	}
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ProfessorID,
		rv.AuthorID,
		rv.AuthorName,
		rv.Rating,
		valF64(rv.Clarity),
		valF64(rv.Fairness),
		valF64(rv.Punctuality),
		valF64(rv.WouldTakeAgain),
		rv.Comment,
		createdAt,
	)
	if err != nil {
		return err
	}
	rv.ID, err = res.LastInsertId()
	return err
}

// ---- read paths ----

func (r *Repo) GetProfessor(ctx context.Context, id string) (domain.Professor, error) {
	return r.scanProfessor(r.db.QueryRowContext(ctx, getProfessorSQL, id))
}

func (r *Repo) GetProfessorByNormalizedName(ctx context.Context, name string) (domain.Professor, error) {
	return r.scanProfessor(r.db.QueryRowContext(ctx, getProfessorByNameSQL, name))
}

func (r *Repo) scanProfessor(row *sql.Row) (domain.Professor, error) {
	var p domain.Professor
	var dept sql.NullString
	if err := row.Scan(&p.ID, &p.DisplayName, &p.NormalizedName, &dept); err != nil {
		if err == sql.ErrNoRows {
			return domain.Professor{}, domain.ErrNotFound
		}
		return domain.Professor{}, err
	}
	p.Department = nullStr(dept)
	return p, nil
}

func (r *Repo) GetCourse(ctx context.Context, id string) (domain.CourseView, error) {
	row := r.db.QueryRowContext(ctx, getCourseSQL, id)

	var cv domain.CourseView
	var dept, desc sql.NullString
	var level sql.NullInt64
	if err := row.Scan(&cv.ID, &cv.Code, &cv.Title, &dept, &level, &desc); err != nil {
		if err == sql.ErrNoRows {
			return domain.CourseView{}, domain.ErrNotFound
		}
		return domain.CourseView{}, err
	}
	cv.Department = nullStr(dept)
	cv.Level = nullInt(level)
	cv.Description = nullStr(desc)

	rows, err := r.db.QueryContext(ctx, listSectionsSQL, id)
	if err != nil {
		return domain.CourseView{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Section
		var profID, schedule, room sql.NullString
		var capacity sql.NullInt64
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Term, &s.SectionCode, &profID, &schedule, &room, &capacity); err != nil {
			return domain.CourseView{}, err
		}
		s.ProfessorID = nullStr(profID)
		s.Schedule = nullStr(schedule)
		s.Room = nullStr(room)
		s.Capacity = nullInt(capacity)
		cv.Sections = append(cv.Sections, s)
	}
	if err := rows.Err(); err != nil {
		return domain.CourseView{}, err
	}
	return cv, nil
}

func (r *Repo) SearchCourses(ctx context.Context, q domain.CoursesQuery) (domain.CoursesPage, error) {
	sqlStr := `
SELECT id, code, title, department, level, description
FROM courses`
	var where []string
	var args []any
	if q.Q != nil {
		where = append(where, "(code LIKE ? OR title LIKE ?)")
		like := "%" + *q.Q + "%"
		args = append(args, like, like)
	}
	if q.Department != nil {
		where = append(where, "department = ?")
		args = append(args, *q.Department)
	}
	if len(where) > 0 {
		sqlStr += "\nWHERE " + strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}
	sqlStr += "\nORDER BY id\nLIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return domain.CoursesPage{}, err
	}
	defer rows.Close()

	var out []domain.Course
	for rows.Next() {
		var c domain.Course
		var dept, desc sql.NullString
		var level sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &dept, &level, &desc); err != nil {
			return domain.CoursesPage{}, err
		}
		c.Department = nullStr(dept)
		c.Level = nullInt(level)
		c.Description = nullStr(desc)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return domain.CoursesPage{}, err
	}
	return domain.CoursesPage{Items: out}, nil
}

func (r *Repo) ListReviews(ctx context.Context, professorID string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	limit := pg.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, professorID, limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out, err := scanReviews(rows)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}

func (r *Repo) ListAllReviews(ctx context.Context, professorID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listAllReviewsSQL, professorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func scanReviews(rows *sql.Rows) ([]domain.Review, error) {
	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var clarity, fairness, punctuality, wta sql.NullFloat64
		var createdAt sql.NullTime
		if err := rows.Scan(
			&rv.ID,
			&rv.ProfessorID,
			&rv.AuthorID,
			&rv.AuthorName,
			&rv.Rating,
			&clarity,
			&fairness,
			&punctuality,
			&wta,
			&rv.Comment,
			&createdAt,
		); err != nil {
			return nil, err
		}
		rv.Clarity = nullF64(clarity)
		rv.Fairness = nullF64(fairness)
		rv.Punctuality = nullF64(punctuality)
		rv.WouldTakeAgain = nullF64(wta)
		if createdAt.Valid {
			rv.CreatedAt = createdAt.Time
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
