package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/rjoostens/basalt/config"
)

// Per-worker wait during shutdown; a worker still busy after this is
// abandoned.
const joinTimeout = 30 * time.Second

// Server owns the listening socket, the bounded connection queue and the
// worker pool. The accept loop is the queue's only producer; the workers
// are its only consumers.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	queue    *connQueue
	workers  []*Worker
	listener net.Listener

	accepted metric.Int64Counter
}

func NewServer(cfg config.Config, resolver Resolver, logger *slog.Logger) *Server {
	queue := newConnQueue(cfg.Backlog())
	handler := NewConnHandler(resolver, logger)

	workers := make([]*Worker, cfg.WorkerCount)
	for i := range workers {
		workers[i] = newWorker(i, queue, handler, logger)
	}

	accepted, err := otel.Meter(instrumentationName).Int64Counter(
		"http.server.accepted_connections",
		metric.WithDescription("Connections accepted by the listener"))
	if err != nil {
		logger.Error("accept counter unavailable", "error", err)
	}

	return &Server{
		cfg:      cfg,
		logger:   logger,
		queue:    queue,
		workers:  workers,
		accepted: accepted,
	}
}

// Listen binds the configured address. A bind failure is fatal: the
// caller cannot proceed without the socket.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("http: bind %s: %w", s.cfg.Addr(), err)
	}
	s.listener = listener
	s.logger.Info("listening",
		"addr", listener.Addr().String(),
		"workers", s.cfg.WorkerCount,
		"backlog", s.cfg.Backlog())
	return nil
}

// Addr reports the bound address, nil before Listen. Tests bind port 0
// and read the effective address back from here.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve starts the workers and runs the accept loop until ctx is
// canceled, then stops the workers and joins each with a bounded wait.
// Shutdown is best-effort, not guaranteed-clean.
func (s *Server) Serve(ctx context.Context) error {
	for _, w := range s.workers {
		w.Start()
	}
	defer s.stopWorkers()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-ctx.Done()
		return s.listener.Close()
	})
	group.Go(func() error {
		return s.acceptLoop(ctx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds and serves in one call.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		sock, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.countAccepted(ctx)

		// Blocks while the queue is full: slow workers throttle the
		// accept rate instead of growing memory or dropping connections.
		if err := s.queue.put(ctx, Conn{sock: sock, addr: sock.RemoteAddr()}); err != nil {
			sock.Close()
			return nil
		}
	}
}

func (s *Server) countAccepted(ctx context.Context) {
	if s.accepted == nil {
		return
	}
	s.accepted.Add(ctx, 1)
}

func (s *Server) stopWorkers() {
	for _, w := range s.workers {
		w.Stop()
	}
	for _, w := range s.workers {
		if !w.Join(joinTimeout) {
			s.logger.Warn("worker did not stop in time, abandoning", "worker", w.id)
		}
	}
}
