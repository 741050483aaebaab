package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadersGetIsCaseInsensitive(t *testing.T) {
	var h Headers
	h.Add("Content-Type", "text/html")

	v, found := h.Get("content-type")
	assert.True(t, found)
	assert.Equal(t, "text/html", v)

	v, found = h.Get("CONTENT-TYPE")
	assert.True(t, found)
	assert.Equal(t, "text/html", v)

	_, found = h.Get("content-length")
	assert.False(t, found)
}

func TestHeadersFirstMatchWins(t *testing.T) {
	var h Headers
	h.Add("X-Thing", "first")
	h.Add("x-thing", "second")

	v, found := h.Get("X-Thing")
	assert.True(t, found)
	assert.Equal(t, "first", v)
}

func TestHeadersValueFallback(t *testing.T) {
	var h Headers
	h.Add("expect", "100-continue")

	assert.Equal(t, "100-continue", h.Value("Expect", ""))
	assert.Equal(t, "nothing", h.Value("accept", "nothing"))
}

func TestHeadersContentLength(t *testing.T) {
	var h Headers
	assert.Equal(t, 0, h.ContentLength())

	h = Headers{{Name: "Content-Length", Value: "42"}}
	assert.Equal(t, 42, h.ContentLength())

	// Invalid declarations count as zero, never as an error.
	h = Headers{{Name: "Content-Length", Value: "abc"}}
	assert.Equal(t, 0, h.ContentLength())

	h = Headers{{Name: "Content-Length", Value: "-5"}}
	assert.Equal(t, 0, h.ContentLength())
}
