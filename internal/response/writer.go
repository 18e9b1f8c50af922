// Package response writes the minimal HTTP/1.x response for a
// single-connection invocation. Exactly one status line and a handful
// of headers go out; message text exists for human operators, not for
// machine parsing.
package response

import (
	"fmt"
	"io"
	"strings"
)

// statusText covers the codes this gateway emits
var statusText = map[int]string{
	200: "OK",
	204: "No Content",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	422: "Unprocessable Entity",
	500: "Internal Server Error",
}

// Write emits one response over w and returns any write error. The
// connection is always closed afterwards, so Connection: close is
// unconditional.
func Write(w io.Writer, status int, body string) error {
	text, ok := statusText[status]
	if !ok {
		text = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, text)
	b.WriteString("Connection: close\r\n")
	if body != "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	}
	b.WriteString("\r\n")
	b.WriteString(body)

	_, err := io.WriteString(w, b.String())
	return err
}
