package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/skiptrack/internal/model"
)

// Summary aggregates the course collection.
type Summary struct {
	Courses int
	Missed  int
	AtCap   int
}

var atCapStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F")).Bold(true)

// Summarize totals missed sessions and counts courses at or over their cap.
func Summarize(courses []model.Course) Summary {
	s := Summary{Courses: len(courses)}
	for _, c := range courses {
		s.Missed += c.Missed
		if c.AtCap() {
			s.AtCap++
		}
	}
	return s
}

// FormatCourses renders one aligned line per course under a header. Rows at
// or over their cap are highlighted when color is true.
func FormatCourses(courses []model.Course, color bool) []string {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			strconv.Itoa(c.Missed),
			strconv.Itoa(c.Cap),
			strconv.Itoa(c.Remaining()),
			c.Status(),
		})
	}
	lines := renderTable(courseColumns, rows)
	if !color {
		return lines
	}
	for i, c := range courses {
		if c.AtCap() {
			lines[i+1] = atCapStyle.Render(lines[i+1])
		}
	}
	return lines
}

// WriteReport prints the course table followed by a summary line.
func WriteReport(w io.Writer, courses []model.Course, color bool) error {
	if len(courses) == 0 {
		_, err := fmt.Fprintln(w, "No courses yet. Add one with: skiptrack add --name <name> --credits <2|3|4>")
		return err
	}
	for _, line := range FormatCourses(courses, color) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	s := Summarize(courses)
	_, err := fmt.Fprintf(w, "\n%d courses, %d missed sessions, %d at cap\n", s.Courses, s.Missed, s.AtCap)
	return err
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
