package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"campus_catalog/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Registrar feeds differ across campuses; accept the spellings we have seen.
var courseAliases = map[string][]string{
	"code":        {"code", "course_code", "courseCode", "number", "course_number"},
	"title":       {"title", "name", "course_title", "courseTitle"},
	"department":  {"department", "dept", "subject", "subject_area"},
	"description": {"description", "desc", "catalog_description", "summary"},
}

var sectionAliases = map[string][]string{
	"id":         {"id", "section_id", "sectionId", "crn"},
	"section":    {"section", "section_code", "sectionCode", "group"},
	"instructor": {"instructor", "instructor_name", "professor", "teacher", "docente", "instructor.name"},
	"schedule":   {"schedule", "meeting_times", "meetingTimes", "horario", "times"},
	"room":       {"room", "location", "classroom", "aula"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// firstIntFlexible: int from several paths (float64/int/string).
func firstIntFlexible(m map[string]any, paths ...string) *int {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int(v)
			return &x
		case int:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.Atoi(s); err == nil {
				return &n
			}
		}
	}
	return nil
}

/********** course mapper **********/

func mapCourse(code string, p map[string]any) domain.Course {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).
			Str("context", "mapCourse").
			Msg("failed to marshal course payload to JSON")
	}

	c := domain.Course{
		ID:          code,
		Code:        code,
		Department:  firstNonEmptyAlias(p, courseAliases, "department"),
		Description: firstNonEmptyAlias(p, courseAliases, "description"),
		Level:       firstIntFlexible(p, "level", "course_level", "year"),
		RawJSON:     raw,
	}
	if s := firstNonEmptyAlias(p, courseAliases, "code"); s != nil {
		c.Code = *s
	}
	if s := firstNonEmptyAlias(p, courseAliases, "title"); s != nil {
		c.Title = *s
	}
	return c
}

/********** section mapper **********/

func mapSection(courseID, term string, row map[string]any) domain.Section {
	sec := domain.Section{
		CourseID: courseID,
		Term:     term,
		Schedule: firstNonEmptyAlias(row, sectionAliases, "schedule"),
		Room:     firstNonEmptyAlias(row, sectionAliases, "room"),
		Capacity: firstIntFlexible(row, "capacity", "seats", "max_enrollment", "cupo"),
	}

	if s := firstNonEmptyAlias(row, sectionAliases, "section"); s != nil {
		sec.SectionCode = *s
	}

	// Stable section key: explicit feed id when present, else composed from
	// course/term/section so re-ingesting upserts instead of duplicating.
	if s := firstNonEmptyAlias(row, sectionAliases, "id"); s != nil {
		sec.ID = *s
	} else {
		sec.ID = courseID + ":" + term + ":" + sec.SectionCode
	}
	return sec
}

// instructorName extracts the instructor display name from a feed row,
// composing first+last when no single field is present.
func instructorName(row map[string]any) string {
	if s := firstNonEmptyAlias(row, sectionAliases, "instructor"); s != nil {
		return strings.TrimSpace(*s)
	}
	first := lookupStr(row, "instructor_first_name")
	last := lookupStr(row, "instructor_last_name")
	return strings.TrimSpace(strings.Join(strings.Fields(first+" "+last), " "))
}
