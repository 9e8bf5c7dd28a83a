package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/skiptrack/internal/config"
	"github.com/verte-zerg/skiptrack/internal/model"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{
		config.EnvBackend, config.EnvDBPath, config.EnvRedisURL, config.EnvRedisPrefix,
		config.EnvPostgresURL, config.EnvKey, config.EnvLogLevel, config.EnvLogFormat, config.EnvLogFile,
	} {
		t.Setenv(key, "")
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddListMissDelete(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "courses.db")

	out, err := run(t, "--db", db, "add", "--name", "Algebra", "--credits", "2")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added Algebra (id 1, limit 6 skips)") {
		t.Fatalf("unexpected add output %q", out)
	}

	out, err = run(t, "--db", db, "miss", "1", "--by", "7")
	if err != nil {
		t.Fatalf("miss: %v", err)
	}
	if !strings.Contains(out, "Algebra: 7 of 6 skips used (over cap)") {
		t.Fatalf("unexpected miss output %q", out)
	}

	out, err = run(t, "--db", db, "unmiss", "1")
	if err != nil {
		t.Fatalf("unmiss: %v", err)
	}
	if !strings.Contains(out, "6 of 6 skips used (at cap)") {
		t.Fatalf("unexpected unmiss output %q", out)
	}

	out, err = run(t, "--db", db, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Algebra") || !strings.Contains(out, "1 courses, 6 missed sessions, 1 at cap") {
		t.Fatalf("unexpected list output %q", out)
	}

	if _, err := run(t, "--db", db, "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = run(t, "--db", db, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.HasPrefix(out, "No courses yet.") {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestAddRejectsInvalidCredits(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "--db", filepath.Join(dir, "c.db"), "add", "--name", "Physics", "--credits", "5")
	if err == nil || !strings.Contains(err.Error(), "credits") {
		t.Fatalf("expected credits error, got %v", err)
	}
}

func TestMissUnknownID(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "--db", filepath.Join(dir, "c.db"), "miss", "42")
	if err == nil || !strings.Contains(err.Error(), "no course with id 42") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestClearRequiresYes(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "c.db")
	if _, err := run(t, "--db", db, "add", "--name", "Algebra", "--credits", "2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := run(t, "--db", db, "clear"); err == nil {
		t.Fatalf("expected clear without --yes to fail")
	}
	if _, err := run(t, "--db", db, "clear", "--yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, err := run(t, "--db", db, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc exportDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.Courses) != 0 {
		t.Fatalf("expected no courses, got %+v", doc.Courses)
	}
}

func TestExportYAML(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "c.db")
	if _, err := run(t, "--db", db, "add", "--name", "History", "--credits", "3"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := run(t, "--db", db, "export", "--format", "yaml")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc struct {
		Courses []model.Course `yaml:"courses"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(doc.Courses) != 1 || doc.Courses[0].Name != "History" || doc.Courses[0].Cap != 10 {
		t.Fatalf("unexpected export: %+v", doc.Courses)
	}
}

func TestExportTOML(t *testing.T) {
	var buf bytes.Buffer
	courses := []model.Course{{ID: 3, Name: "Physics", Missed: 2, Cap: 12}}
	if err := writeExport(&buf, "toml", courses); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[[courses]]") || !strings.Contains(out, `name = "Physics"`) {
		t.Fatalf("unexpected toml %q", out)
	}
}

func TestConfigFileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	fileDB := filepath.Join(dir, "file.db")
	content := "[storage]\ndb = \"" + fileDB + "\"\nkey = \"from-file\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvKey, "from-env")

	list, _, err := newRootCmd().Find([]string{"list"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := list.ParseFlags([]string{"--backend", "memory"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := resolveSettings(list); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if storageBackend != "memory" {
		t.Fatalf("expected flag to win, got %q", storageBackend)
	}
	if storageDBPath != fileDB {
		t.Fatalf("expected db from file, got %q", storageDBPath)
	}
	if storageKey != "from-env" {
		t.Fatalf("expected env to override file, got %q", storageKey)
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should parse: %v", err)
	}
}
