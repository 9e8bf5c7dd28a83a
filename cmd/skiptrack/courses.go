package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/skiptrack/internal/model"
	"github.com/verte-zerg/skiptrack/internal/stats"
	"github.com/verte-zerg/skiptrack/internal/store"
)

var (
	addName      string
	addCredits   int
	adjustBy     int
	clearYes     bool
	exportFormat string
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a course",
		Args:  cobra.NoArgs,
		RunE:  runAddCmd,
	}
	cmd.Flags().StringVar(&addName, "name", "", "course name")
	cmd.Flags().IntVar(&addCredits, "credits", 0, "course credits: 2, 3 or 4")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("credits")
	return cmd
}

func runAddCmd(cmd *cobra.Command, _ []string) error {
	return withCourses(cmd, func(courses *store.Courses) error {
		course, err := courses.Create(cmd.Context(), addName, addCredits)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Added %s (id %d, limit %d skips)\n", course.Name, course.ID, course.Cap)
		return nil
	})
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List courses and their missed sessions",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	return withCourses(cmd, func(courses *store.Courses) error {
		all, err := courses.ReadAll(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return stats.WriteReport(out, all, stats.ShouldUseColor(out))
	})
}

// newAdjustCmd builds miss and unmiss. sign is applied to --by.
func newAdjustCmd(use, short string, sign int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdjustCmd(cmd, args, sign)
		},
	}
	cmd.Flags().IntVar(&adjustBy, "by", 1, "number of sessions")
	return cmd
}

func runAdjustCmd(cmd *cobra.Command, args []string, sign int) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if adjustBy < 1 {
		return fmt.Errorf("--by must be >= 1")
	}
	return withCourses(cmd, func(courses *store.Courses) error {
		if _, err := findCourse(cmd, courses, id); err != nil {
			return err
		}
		if err := courses.AdjustCounter(cmd.Context(), id, sign*adjustBy); err != nil {
			return err
		}
		course, err := findCourse(cmd, courses, id)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s: %d of %d skips used (%s)\n", course.Name, course.Missed, course.Cap, course.Status())
		return nil
	})
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withCourses(cmd, func(courses *store.Courses) error {
		course, err := findCourse(cmd, courses, id)
		if err != nil {
			return err
		}
		if err := courses.Delete(cmd.Context(), id); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Deleted %s\n", course.Name)
		return nil
	})
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored course",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "confirm removal of all data")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to clear without --yes")
	}
	return withCourses(cmd, func(courses *store.Courses) error {
		if err := courses.ClearAll(cmd.Context()); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Cleared all courses\n")
		return nil
	})
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print all courses as JSON, YAML or TOML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json, yaml or toml")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	switch format {
	case "json", "yaml", "yml", "toml":
	default:
		return fmt.Errorf("--format must be json, yaml or toml")
	}
	return withCourses(cmd, func(courses *store.Courses) error {
		all, err := courses.ReadAll(cmd.Context())
		if err != nil {
			return err
		}
		return writeExport(cmd.OutOrStdout(), format, all)
	})
}

type exportDocument struct {
	Courses []model.Course `json:"courses" yaml:"courses" toml:"courses"`
}

func writeExport(w io.Writer, format string, courses []model.Course) error {
	doc := exportDocument{Courses: courses}
	if doc.Courses == nil {
		doc.Courses = []model.Course{}
	}
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "toml":
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode toml: %w", err)
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// withCourses resolves settings, opens the store for one subcommand and
// closes it afterwards.
func withCourses(cmd *cobra.Command, fn func(*store.Courses) error) error {
	if err := resolveSettings(cmd); err != nil {
		return err
	}
	log := cliLogger(cmd)
	courses, closeStore, err := openCourses(cmd.Context(), log)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(courses)
}

func findCourse(cmd *cobra.Command, courses *store.Courses, id int64) (model.Course, error) {
	all, err := courses.ReadAll(cmd.Context())
	if err != nil {
		return model.Course{}, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Course{}, fmt.Errorf("no course with id %d", id)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid course id %q", arg)
	}
	return id, nil
}
