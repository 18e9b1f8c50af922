// Package request parses the inbound byte stream of a single
// socket-activated connection. The stream is shaped like an HTTP/1.x
// request, but this is deliberately the minimum needed for
// JSON-bearing requests from trusted webhook senders: no chunked
// transfer, no multipart, no continuation lines.
package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed indicates the request line, headers or body could not
// be read. Callers report it as a generic malformed-request failure
// with no detailed diagnosis.
var ErrMalformed = errors.New("malformed request")

// Request is a minimally parsed inbound request
type Request struct {
	Method  string
	Path    string
	Proto   string
	Headers map[string]string
	Body    []byte
}

// Read consumes exactly one request from r: a request line, header
// lines until an empty line, then exactly content-length body bytes.
//
// A line is a header if and only if it contains a colon; it is split
// on the first colon, keys are lower-cased and trimmed, values are
// trimmed. Duplicate headers overwrite. The first non-header line is
// the request line and must have exactly three whitespace-separated
// fields; later non-header lines are ignored.
func Read(r *bufio.Reader) (*Request, error) {
	req := &Request{Headers: make(map[string]string)}

	sawRequestLine := false
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read header line: %v", ErrMalformed, err)
		}
		if line == "" {
			break
		}
		if i := strings.IndexByte(line, ':'); i >= 0 {
			key := strings.ToLower(strings.TrimSpace(line[:i]))
			req.Headers[key] = strings.TrimSpace(line[i+1:])
			continue
		}
		if sawRequestLine {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: bad request line %q", ErrMalformed, line)
		}
		req.Method, req.Path, req.Proto = fields[0], fields[1], fields[2]
		sawRequestLine = true
	}

	if !sawRequestLine {
		return nil, fmt.Errorf("%w: no request line", ErrMalformed)
	}

	// content-length is required; absence is an error, not a
	// zero-length default.
	value, ok := req.Headers["content-length"]
	if !ok {
		return nil, fmt.Errorf("%w: missing content-length", ErrMalformed)
	}
	length, err := strconv.Atoi(value)
	if err != nil || length < 0 {
		return nil, fmt.Errorf("%w: bad content-length %q", ErrMalformed, value)
	}

	req.Body = make([]byte, length)
	if _, err := io.ReadFull(r, req.Body); err != nil {
		return nil, fmt.Errorf("%w: short body: %v", ErrMalformed, err)
	}

	return req, nil
}

// readLine reads one line and strips the trailing CRLF or LF
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
