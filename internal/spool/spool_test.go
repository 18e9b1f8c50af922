package spool

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/models"
)

func testJob() *models.ResolvedJob {
	return &models.ResolvedJob{
		JobRecord: models.JobRecord{
			SCM:           "git",
			RepositoryURL: "git@x:o/r.git",
			Project:       "o/r",
			Target:        "main",
			Task:          "deploy",
			Commit:        "abc123",
			ViewURL:       "http://x/compare",
			Notifications: "all",
			CommitMessages: map[string]string{
				"abc123": "fix things",
				"def456": "multi\nline\nmessage",
			},
		},
		MatchedTarget: "main",
		BuildCommand:  "make deploy",
	}
}

func testSettings() config.Settings {
	return config.Settings{MailTo: "builds@example.com", Mode: "normal"}
}

func TestEmitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	job := testJob()

	path, err := NewEmitter(dir).Emit(job, testSettings())
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	parsed, err := ParseJobFile(path)
	if err != nil {
		t.Fatalf("ParseJobFile() error = %v", err)
	}

	got := parsed.Job
	if got.SCM != job.SCM || got.Project != job.Project ||
		got.RepositoryURL != job.RepositoryURL || got.Commit != job.Commit ||
		got.Task != job.Task || got.ViewURL != job.ViewURL ||
		got.Notifications != job.Notifications {
		t.Errorf("parsed job = %+v", got)
	}
	if got.MatchedTarget != "main" || got.BuildCommand != "make deploy" {
		t.Errorf("resolution fields = %q %q", got.MatchedTarget, got.BuildCommand)
	}
	if !reflect.DeepEqual(got.CommitMessages, job.CommitMessages) {
		t.Errorf("CommitMessages = %v, want %v", got.CommitMessages, job.CommitMessages)
	}
	if parsed.MailTo != "builds@example.com" || parsed.Mode != "normal" {
		t.Errorf("settings = %q %q", parsed.MailTo, parsed.Mode)
	}
}

func TestEmitEscapesHostileMessages(t *testing.T) {
	dir := t.TempDir()
	job := testJob()
	job.CommitMessages = map[string]string{
		"evil = id": "line one\nbuildCommand = rm -rf /\nback\\slash",
	}

	path, err := NewEmitter(dir).Emit(job, testSettings())
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// No raw newline from the message may start a new entry
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "buildCommand") && !strings.Contains(line, "make deploy") {
			t.Errorf("injected entry survived: %q", line)
		}
	}

	parsed, err := ParseJobFile(path)
	if err != nil {
		t.Fatalf("ParseJobFile() error = %v", err)
	}
	if !reflect.DeepEqual(parsed.Job.CommitMessages, job.CommitMessages) {
		t.Errorf("CommitMessages = %v, want %v", parsed.Job.CommitMessages, job.CommitMessages)
	}
}

func TestEmitFileName(t *testing.T) {
	dir := t.TempDir()
	e := NewEmitter(dir)
	e.now = func() time.Time {
		return time.Date(2026, 8, 23, 14, 30, 5, 0, time.UTC)
	}

	path, err := e.Emit(testJob(), testSettings())
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got := filepath.Base(path); got != "20260823-143005.job" {
		t.Errorf("file name = %q", got)
	}
}

func TestEmitSameSecondCollision(t *testing.T) {
	dir := t.TempDir()
	e := NewEmitter(dir)
	e.now = func() time.Time {
		return time.Date(2026, 8, 23, 14, 30, 5, 0, time.UTC)
	}

	first, err := e.Emit(testJob(), testSettings())
	if err != nil {
		t.Fatalf("first Emit() error = %v", err)
	}
	second, err := e.Emit(testJob(), testSettings())
	if err != nil {
		t.Fatalf("second Emit() error = %v", err)
	}

	if first == second {
		t.Fatalf("both emits wrote %q", first)
	}
	if got := filepath.Base(second); got != "20260823-143005-1.job" {
		t.Errorf("second file name = %q", got)
	}
}

func TestEmitMissingDirectory(t *testing.T) {
	e := NewEmitter(filepath.Join(t.TempDir(), "does", "not", "exist"))
	if _, err := e.Emit(testJob(), testSettings()); err == nil {
		t.Error("Emit() error = nil, want write failure")
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	tests := []string{
		"plain",
		"with\nnewline",
		"with\r\ncrlf",
		`back\slash`,
		`trailing backslash\`,
		"",
	}

	for _, s := range tests {
		if got := unescape(escapeValue(s)); got != s {
			t.Errorf("unescape(escapeValue(%q)) = %q", s, got)
		}
	}

	keys := []string{"abc123", "id with spaces", "id=with=equals", "mix \n= all\\"}
	for _, s := range keys {
		if got := unescape(escapeKey(s)); got != s {
			t.Errorf("unescape(escapeKey(%q)) = %q", s, got)
		}
	}
}
