package http

import (
	"strconv"
	"strings"
)

// Field is a single header name/value pair.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields. Lookups are
// case-insensitive and return the first match, so duplicate fields are
// harmless: the first one wins.
type Headers []Field

func (h *Headers) Add(name, value string) {
	*h = append(*h, Field{Name: name, Value: value})
}

func (h Headers) Get(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the first value for name, or fallback when absent.
func (h Headers) Value(name, fallback string) string {
	if v, found := h.Get(name); found {
		return v
	}
	return fallback
}

// ContentLength reports the declared body length. A missing or invalid
// content-length header counts as zero, not as an error.
func (h Headers) ContentLength() int {
	n, err := strconv.Atoi(h.Value("content-length", "0"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
