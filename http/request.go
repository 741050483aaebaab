package http

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Request is one parsed HTTP/1.x request head. Body is the connection's
// buffered reader positioned just past the header block; callers read at
// most the declared content length from it.
type Request struct {
	Method  string
	Path    string
	Proto   string
	Headers Headers

	Body io.Reader
}

// Parse reads one request head from reader. Malformed input is reported
// as ErrMalformedRequest; network errors pass through untouched.
func (req *Request) Parse(reader *bufio.Reader) error {
	requestLine, err := reader.ReadString('\n')
	if err != nil {
		return err
	}

	requestLine = strings.TrimSpace(requestLine)
	parts := strings.Split(requestLine, " ")
	if len(parts) != 3 {
		return fmt.Errorf("%w: bad request line %q", ErrMalformedRequest, requestLine)
	}
	req.Method, req.Path, req.Proto = parts[0], parts[1], parts[2]
	if req.Method == "" || req.Path == "" || !strings.HasPrefix(req.Proto, "HTTP/") {
		return fmt.Errorf("%w: bad request line %q", ErrMalformedRequest, requestLine)
	}

	req.Headers = req.Headers[:0]
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break // end of headers
		}
		i := strings.Index(line, ":")
		if i <= 0 {
			return fmt.Errorf("%w: bad header line %q", ErrMalformedRequest, line)
		}
		if len(req.Headers) == maxHeaderCount {
			return fmt.Errorf("%w: too many header fields", ErrMalformedRequest)
		}
		req.Headers.Add(strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]))
	}

	req.Body = reader
	return nil
}
