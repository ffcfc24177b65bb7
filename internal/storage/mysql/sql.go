package mysql

const upsertProfessorSQL = `
INSERT INTO professors
  (id, display_name, normalized_name, department)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  display_name = VALUES(display_name),
  department   = COALESCE(VALUES(department), professors.department),
  updated_at   = CURRENT_TIMESTAMP
`

const upsertCourseSQL = `
INSERT INTO courses
  (id, code, title, department, level, description, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  code        = VALUES(code),
  title       = VALUES(title),
  department  = VALUES(department),
  level       = VALUES(level),
  description = VALUES(description),
  raw         = VALUES(raw),
  updated_at  = CURRENT_TIMESTAMP
`

const insertSectionsPrefix = "INSERT INTO sections\n  (id, course_id, term, section_code, professor_id, schedule, room, capacity)\nVALUES "

const insertSectionsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  section_code = VALUES(section_code),\n" +
	"  professor_id = VALUES(professor_id),\n" +
	"  schedule     = VALUES(schedule),\n" +
	"  room         = VALUES(room),\n" +
	"  capacity     = VALUES(capacity)\n"

// Reviews are append-only: plain INSERT, no upsert clause.
const insertReviewSQL = `
INSERT INTO reviews
  (professor_id, author_id, author_name, rating, clarity, fairness, punctuality, would_take_again, comment, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
`

const insertMissSQL = `
INSERT INTO ingest_misses (course_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getProfessorSQL = `
SELECT id, display_name, normalized_name, department
FROM professors
WHERE id = ?
`

const getProfessorByNameSQL = `
SELECT id, display_name, normalized_name, department
FROM professors
WHERE normalized_name = ?
`

const getCourseSQL = `
SELECT id, code, title, department, level, description
FROM courses
WHERE id = ?
`

const listSectionsSQL = `
SELECT id, course_id, term, section_code, professor_id, schedule, room, capacity
FROM sections
WHERE course_id = ?
ORDER BY term DESC, section_code
`

const listReviewsSQL = `
SELECT id, professor_id, author_id, author_name, rating, clarity, fairness, punctuality, would_take_again, comment, created_at
FROM reviews
WHERE professor_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listAllReviewsSQL = `
SELECT id, professor_id, author_id, author_name, rating, clarity, fairness, punctuality, would_take_again, comment, created_at
FROM reviews
WHERE professor_id = ?
ORDER BY created_at DESC, id DESC
`
