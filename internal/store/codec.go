package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/skiptrack/internal/model"
)

// formatVersion is the version written into every stored document.
const formatVersion = 1

// ErrUnsupportedVersion is returned when the stored collection was written by
// a newer release. Such data is never overwritten.
var ErrUnsupportedVersion = errors.New("stored course list uses an unsupported format version")

// ErrIDSpaceExhausted is returned by Create once a stored course holds the
// largest id a course may have.
var ErrIDSpaceExhausted = errors.New("no course ids left")

// document is the stored form of the collection. Version 0 is the legacy
// bare JSON array of courses.
type document struct {
	Version int            `json:"version"`
	NextID  int64          `json:"next_id"`
	Courses []model.Course `json:"courses"`
}

type corruptError struct {
	raw string
	err error
}

func (e *corruptError) Error() string {
	return fmt.Sprintf("stored course list is corrupt: %v", e.err)
}

func (e *corruptError) Unwrap() error {
	return e.err
}

func emptyDocument() document {
	return document{Version: formatVersion, NextID: 1, Courses: []model.Course{}}
}

func decode(raw string, ok bool) (document, error) {
	if !ok {
		return emptyDocument(), nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return emptyDocument(), nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var courses []model.Course
		if err := json.Unmarshal([]byte(trimmed), &courses); err != nil {
			return document{}, &corruptError{raw: raw, err: err}
		}
		doc := emptyDocument()
		if courses != nil {
			doc.Courses = courses
		}
		doc.NextID = nextIDAfter(doc.Courses, 1)
		return doc, nil
	}

	var doc document
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return document{}, &corruptError{raw: raw, err: err}
	}
	if doc.Version > formatVersion {
		return document{}, fmt.Errorf("%w: %d (supported: %d)", ErrUnsupportedVersion, doc.Version, formatVersion)
	}
	if doc.Version < 1 {
		return document{}, &corruptError{raw: raw, err: fmt.Errorf("missing version")}
	}
	if doc.Courses == nil {
		doc.Courses = []model.Course{}
	}
	doc.NextID = nextIDAfter(doc.Courses, doc.NextID)
	return doc, nil
}

func encode(doc document) (string, error) {
	doc.Version = formatVersion
	if doc.Courses == nil {
		doc.Courses = []model.Course{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// nextIDAfter returns the smallest id not below floor that is greater than
// every id in courses. Ids stay below math.MaxInt64; 0 means none are left.
func nextIDAfter(courses []model.Course, floor int64) int64 {
	next := floor
	if next < 1 {
		next = 1
	}
	for _, c := range courses {
		if c.ID == math.MaxInt64 {
			return 0
		}
		if c.ID >= next {
			next = c.ID + 1
		}
	}
	if next == math.MaxInt64 {
		return 0
	}
	return next
}
