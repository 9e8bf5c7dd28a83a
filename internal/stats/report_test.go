package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/skiptrack/internal/model"
)

func TestSummarizeCountsAtCap(t *testing.T) {
	courses := []model.Course{
		{ID: 1, Name: "Algebra", Missed: 6, Cap: 6},
		{ID: 2, Name: "History", Missed: 2, Cap: 10},
		{ID: 3, Name: "Physics", Missed: 13, Cap: 12},
	}
	s := Summarize(courses)
	if s.Courses != 3 || s.Missed != 21 || s.AtCap != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestFormatCoursesWithoutColor(t *testing.T) {
	lines := FormatCourses([]model.Course{{ID: 7, Name: "Algebra", Missed: 6, Cap: 6}}, false)
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID Name") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "at cap") {
		t.Fatalf("expected status column, got %q", lines[1])
	}
	if strings.Contains(lines[1], "\x1b[") {
		t.Fatalf("expected no escape codes, got %q", lines[1])
	}
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, nil, false); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "No courses yet.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestWriteReportSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	courses := []model.Course{{ID: 1, Name: "Algebra", Missed: 1, Cap: 6}}
	if err := WriteReport(&buf, courses, false); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if !strings.Contains(buf.String(), "1 courses, 1 missed sessions, 0 at cap") {
		t.Fatalf("missing summary line: %q", buf.String())
	}
}

func TestShouldUseColorFalseForBuffers(t *testing.T) {
	if ShouldUseColor(&bytes.Buffer{}) {
		t.Fatalf("expected no color for a buffer")
	}
}
