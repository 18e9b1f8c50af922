package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/spool"
	"github.com/lei/hookspool/pkg/logger"
)

type conn struct {
	io.Reader
	io.Writer
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Settings: config.Settings{
			SpoolDir:      t.TempDir(),
			Notifications: "all",
			Mode:          "normal",
			MailTo:        "builds@example.com",
		},
		Projects: config.ProjectTable{
			"o/r": {
				"main":           "make deploy",
				"release":        "make release",
				"release-hotfix": "make hotfix",
			},
		},
	}
}

// handle runs one raw request through the pipeline and returns the
// response text.
func handle(t *testing.T, cfg *config.Config, method, path, body string) string {
	t.Helper()

	raw := fmt.Sprintf("%s %s HTTP/1.1\r\nContent-Length: %d\r\n\r\n%s",
		method, path, len(body), body)

	var out strings.Builder
	p := New(cfg, logger.Nop())
	p.Handle(conn{Reader: strings.NewReader(raw), Writer: &out})
	return out.String()
}

func spoolFiles(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	entries, err := os.ReadDir(cfg.Settings.SpoolDir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestHandleGiteaPush(t *testing.T) {
	cfg := testConfig(t)
	body := `{"repository":{"ssh_url":"git@x:o/r.git","full_name":"o/r"},` +
		`"ref":"refs/heads/main","after":"abc123","compare_url":"http://x/compare"}`

	resp := handle(t, cfg, "POST", "/gitea", body)
	if !strings.HasPrefix(resp, "HTTP/1.1 200 ") {
		t.Fatalf("response = %q, want 200", resp)
	}
	if !strings.Contains(resp, "Connection: close") {
		t.Errorf("response missing Connection: close: %q", resp)
	}

	files := spoolFiles(t, cfg)
	if len(files) != 1 {
		t.Fatalf("spool files = %v, want exactly one", files)
	}

	parsed, err := spool.ParseJobFile(filepath.Join(cfg.Settings.SpoolDir, files[0]))
	if err != nil {
		t.Fatalf("ParseJobFile() error = %v", err)
	}
	job := parsed.Job
	if job.MatchedTarget != "main" || job.BuildCommand != "make deploy" || job.Commit != "abc123" {
		t.Errorf("job = %+v", job)
	}
	if parsed.MailTo != "builds@example.com" || parsed.Mode != "normal" {
		t.Errorf("settings = %q %q", parsed.MailTo, parsed.Mode)
	}
}

func TestHandleLightweightMissingTarget(t *testing.T) {
	cfg := testConfig(t)
	body := `{"scm":"git","repositoryUrl":"u","project":"o/r"}`

	resp := handle(t, cfg, "POST", "/", body)
	if !strings.HasPrefix(resp, "HTTP/1.1 422 ") {
		t.Fatalf("response = %q, want 422", resp)
	}
	if !strings.Contains(resp, `"target"`) {
		t.Errorf("response does not name the missing field: %q", resp)
	}
	if files := spoolFiles(t, cfg); len(files) != 0 {
		t.Errorf("spool files = %v, want none on validation failure", files)
	}
}

func TestHandleAmbiguousTarget(t *testing.T) {
	cfg := testConfig(t)
	body := `{"scm":"git","repositoryUrl":"u","project":"o/r","target":"release"}`

	resp := handle(t, cfg, "POST", "/", body)
	if !strings.HasPrefix(resp, "HTTP/1.1 422 ") {
		t.Fatalf("response = %q, want 422", resp)
	}
	if !strings.Contains(resp, "release") || !strings.Contains(resp, "release-hotfix") {
		t.Errorf("response does not list the candidates: %q", resp)
	}
	if files := spoolFiles(t, cfg); len(files) != 0 {
		t.Errorf("spool files = %v, want none", files)
	}
}

func TestHandleAdhoc(t *testing.T) {
	cfg := testConfig(t)
	body := `{"scm":"git","repositoryUrl":"u","repositoryName":"o/r","commit":"c1","branch":"main"}`

	resp := handle(t, cfg, "PUT", "/adhoc", body)
	if !strings.HasPrefix(resp, "HTTP/1.1 200 ") {
		t.Fatalf("response = %q, want 200", resp)
	}
	if files := spoolFiles(t, cfg); len(files) != 1 {
		t.Errorf("spool files = %v, want one", files)
	}
}

func TestHandleVersion(t *testing.T) {
	cfg := testConfig(t)

	resp := handle(t, cfg, "GET", "/version", "")
	if !strings.HasPrefix(resp, "HTTP/1.1 200 ") {
		t.Fatalf("response = %q, want 200", resp)
	}
	if !strings.Contains(resp, "hookspool") {
		t.Errorf("response missing version string: %q", resp)
	}
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   string
	}{
		{"unknown path", "POST", "/unknown", "{}", "HTTP/1.1 404 "},
		{"unknown path any method", "DELETE", "/unknown", "{}", "HTTP/1.1 404 "},
		{"wrong method on ingest path", "DELETE", "/gitea", "{}", "HTTP/1.1 405 "},
		{"wrong method on version", "POST", "/version", "{}", "HTTP/1.1 405 "},
		{"undecodable body", "POST", "/gitea", "not json", "HTTP/1.1 400 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			resp := handle(t, cfg, tt.method, tt.path, tt.body)
			if !strings.HasPrefix(resp, tt.want) {
				t.Errorf("response = %q, want prefix %q", resp, tt.want)
			}
			if files := spoolFiles(t, cfg); len(files) != 0 {
				t.Errorf("spool files = %v, want none", files)
			}
		})
	}
}

func TestHandleMalformedStream(t *testing.T) {
	cfg := testConfig(t)

	var out strings.Builder
	p := New(cfg, logger.Nop())
	p.Handle(conn{Reader: strings.NewReader("POST /gitea HTTP/1.1\r\n\r\n"), Writer: &out})

	if !strings.HasPrefix(out.String(), "HTTP/1.1 400 ") {
		t.Errorf("response = %q, want 400 for missing content-length", out.String())
	}
}
