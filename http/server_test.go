package http_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjoostens/basalt/config"
	"github.com/rjoostens/basalt/http"
	"github.com/rjoostens/basalt/static"
)

// startServer boots a full server over a throwaway document root and
// returns its address. Shutdown runs in test cleanup.
func startServer(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	resolver, err := static.NewResolver(root)
	require.NoError(t, err)

	cfg := config.Config{Host: "127.0.0.1", Port: 0, WorkerCount: 4, Root: root}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := http.NewServer(cfg, resolver, logger)
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down in time")
		}
	})

	return server.Addr().String()
}

// request sends one raw HTTP/1.1 request and returns the parsed response
// with its body.
func request(t *testing.T, addr, method, path string) (*stdhttp.Response, string) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = fmt.Fprintf(conn, "%s %s HTTP/1.1\r\nhost: test\r\ncontent-length: 0\r\n\r\n", method, path)
	require.NoError(t, err)

	resp, err := stdhttp.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServerServesIndexOnRoot(t *testing.T) {
	index := "<html><body>welcome</body></html>"
	addr := startServer(t, map[string]string{"index.html": index})

	resp, body := request(t, addr, "GET", "/")

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, index, body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestServerMissingFileIs404(t *testing.T) {
	addr := startServer(t, map[string]string{"index.html": "x"})

	resp, _ := request(t, addr, "GET", "/missing.txt")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestServerTraversalIs404(t *testing.T) {
	addr := startServer(t, map[string]string{"index.html": "x"})

	// Must be rejected whether or not the target exists on the host.
	resp, _ := request(t, addr, "GET", "/../../../../etc/passwd")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestServerNonGetIs405(t *testing.T) {
	addr := startServer(t, map[string]string{"index.html": "x"})

	resp, _ := request(t, addr, "POST", "/index.html")
	assert.Equal(t, 405, resp.StatusCode)
}

func TestServerRepeatedGetIsIdempotent(t *testing.T) {
	addr := startServer(t, map[string]string{
		"index.html":   "stable",
		"sub/page.txt": "some text",
	})

	first, firstBody := request(t, addr, "GET", "/sub/page.txt")
	second, secondBody := request(t, addr, "GET", "/sub/page.txt")

	assert.Equal(t, 200, first.StatusCode)
	assert.Equal(t, 200, second.StatusCode)
	assert.Equal(t, firstBody, secondBody)
	assert.Equal(t, first.Header.Get("Content-Type"), second.Header.Get("Content-Type"))
}

func TestServerHandlesConcurrentClients(t *testing.T) {
	addr := startServer(t, map[string]string{"index.html": "concurrent"})

	const clients = 32
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		go func() {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()

			if _, err := fmt.Fprintf(conn, "GET / HTTP/1.1\r\nhost: test\r\n\r\n"); err != nil {
				errs <- err
				return
			}
			resp, err := stdhttp.ReadResponse(bufio.NewReader(conn), nil)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			if _, err := io.ReadAll(resp.Body); err != nil {
				errs <- err
				return
			}
			if resp.StatusCode != 200 {
				errs <- fmt.Errorf("unexpected status %d", resp.StatusCode)
				return
			}
			errs <- nil
		}()
	}

	for i := 0; i < clients; i++ {
		assert.NoError(t, <-errs)
	}
}
