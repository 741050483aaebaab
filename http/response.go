package http

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Response is one HTTP/1.x response. Body may be nil, a fixed buffer, or
// an open *os.File; file bodies are streamed during Write, never buffered
// whole. A negative ContentLength means the size is unknown and the
// connection close delimits the body.
type Response struct {
	Status        uint16
	Headers       Headers
	ContentLength int64
	Body          io.Reader
}

// NewResponse builds the canned status-only response: the reason phrase
// as a plain-text body.
func NewResponse(status uint16) Response {
	body := StatusText(status)
	resp := Response{
		Status:        status,
		Headers:       Headers{},
		ContentLength: int64(len(body)),
		Body:          strings.NewReader(body),
	}
	resp.Headers.Add("content-type", "text/plain; charset=utf-8")
	return resp
}

// Write serializes the response to writer and flushes it. Informational
// (1xx) responses are a bare status line. The final response always
// carries connection: close; this server serves one request per
// connection.
func (resp *Response) Write(writer *bufio.Writer) error {
	if closer, ok := resp.Body.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				slog.Error("closing response body error", "error", err)
			}
		}()
	}

	if _, err := fmt.Fprintf(writer, "HTTP/1.1 %d %s\r\n", resp.Status, StatusText(resp.Status)); err != nil {
		return err
	}
	if resp.Status < 200 {
		if _, err := writer.WriteString("\r\n"); err != nil {
			return err
		}
		return writer.Flush()
	}

	for _, f := range resp.Headers {
		if _, err := fmt.Fprintf(writer, "%s: %s\r\n", f.Name, f.Value); err != nil {
			return err
		}
	}
	if _, err := writer.WriteString("connection: close\r\n"); err != nil {
		return err
	}
	if resp.ContentLength >= 0 {
		if _, err := writer.WriteString("content-length: " + strconv.FormatInt(resp.ContentLength, 10) + "\r\n"); err != nil {
			return err
		}
	}
	if _, err := writer.WriteString("\r\n"); err != nil {
		return err
	}

	if resp.Body != nil {
		if _, err := io.Copy(writer, resp.Body); err != nil {
			return err
		}
	}
	return writer.Flush()
}
