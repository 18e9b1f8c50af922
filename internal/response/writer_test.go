package response

import (
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, 422, "missing required field \"target\"\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got := b.String()
	want := "HTTP/1.1 422 Unprocessable Entity\r\n" +
		"Connection: close\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Length: 32\r\n" +
		"\r\n" +
		"missing required field \"target\"\n"
	if got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}

func TestWriteNoBody(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, 404, ""); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got := b.String()
	if got != "HTTP/1.1 404 Not Found\r\nConnection: close\r\n\r\n" {
		t.Errorf("Write() = %q", got)
	}
	if strings.Contains(got, "Content-Length") {
		t.Error("bodiless response must not carry Content-Length")
	}
}
