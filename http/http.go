// Package http implements a minimal concurrent HTTP/1.x server: one
// accept loop feeding a bounded connection queue consumed by a fixed pool
// of workers, each serving a single request per connection.
package http

import "errors"

const (
	MethodGet = "GET"

	DefaultReadBufferSize  = 4096 // 4kB
	DefaultWriteBufferSize = 4096 // 4kB

	// Header fields per request; anything beyond is malformed input.
	maxHeaderCount = 256
)

var (
	// ErrMalformedRequest marks byte streams that do not parse as an
	// HTTP/1.x request head.
	ErrMalformedRequest = errors.New("http: malformed request")

	// ErrNotFound marks resources that cannot be served. Missing files,
	// unreadable files and paths escaping the document root all map here;
	// the client is never told which it was.
	ErrNotFound = errors.New("http: resource not found")

	errMethodNotAllowed = errors.New("http: method not allowed")
)
