package http

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestParse(t *testing.T) {
	var req Request

	raw := "GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: close\r\nContent-Length: 0\r\n\r\n"
	require.NoError(t, req.Parse(bufio.NewReader(strings.NewReader(raw))))

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/test", req.Path)
	assert.Equal(t, "HTTP/1.1", req.Proto)

	v, found := req.Headers.Get("connection")
	assert.True(t, found)
	assert.Equal(t, "close", v)
	assert.Equal(t, 0, req.Headers.ContentLength())
}

func TestRequestParseBodyRemainder(t *testing.T) {
	var req Request

	raw := "POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
	require.NoError(t, req.Parse(bufio.NewReader(strings.NewReader(raw))))
	require.Equal(t, 5, req.Headers.ContentLength())

	body := make([]byte, 5)
	_, err := io.ReadFull(req.Body, body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestRequestParseMalformed(t *testing.T) {
	for _, raw := range []string{
		"BLARG\r\n\r\n",
		"\r\n\r\n",
		"GET /\r\n\r\n",
		"GET / HTTP/1.1 extra\r\n\r\n",
		"GET / FTP/1.0\r\n\r\n",
		"GET / HTTP/1.1\r\nno-colon-here\r\n\r\n",
	} {
		var req Request
		err := req.Parse(bufio.NewReader(strings.NewReader(raw)))
		assert.ErrorIs(t, err, ErrMalformedRequest, "input %q", raw)
	}
}

func TestRequestParsePassesThroughNetworkErrors(t *testing.T) {
	var req Request

	err := req.Parse(bufio.NewReader(strings.NewReader("")))
	assert.ErrorIs(t, err, io.EOF)

	// Stream cut mid-headers.
	err = req.Parse(bufio.NewReader(strings.NewReader("GET / HTTP/1.1\r\nAccept: ")))
	assert.ErrorIs(t, err, io.EOF)
	assert.NotErrorIs(t, err, ErrMalformedRequest)
}
