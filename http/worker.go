package http

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// How long a worker waits on the queue before re-checking its running
// flag; this bounds shutdown latency to roughly one interval.
const dequeueTimeout = time.Second

// Worker pulls connections off the shared queue and serves them one at a
// time. A failure in one connection never ends the loop.
type Worker struct {
	id      int
	queue   *connQueue
	handler *ConnHandler
	logger  *slog.Logger

	running atomic.Bool
	done    chan struct{}
}

func newWorker(id int, queue *connQueue, handler *ConnHandler, logger *slog.Logger) *Worker {
	return &Worker{
		id:      id,
		queue:   queue,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.running.Store(true)
	go w.run()
}

// Stop flips the running flag and nothing else; an in-flight connection
// finishes on its own. Safe to call more than once.
func (w *Worker) Stop() {
	w.running.Store(false)
}

// Join waits for the worker's loop to exit, up to timeout. It reports
// false for a straggler, which the server abandons.
func (w *Worker) Join(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return true
	case <-timer.C:
		return false
	}
}

func (w *Worker) run() {
	defer close(w.done)

	for w.running.Load() {
		conn, ok := w.queue.get(dequeueTimeout)
		if !ok {
			continue
		}
		w.serve(conn)
	}
}

// serve is the per-connection failure boundary: handler errors and panics
// are logged and the worker moves on to the next connection.
func (w *Worker) serve(conn Conn) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker recovered from panic",
				"worker", w.id, "peer", conn.addr.String(), "panic", r)
		}
	}()

	if err := w.handler.Handle(conn); err != nil {
		w.logger.Error("connection failed",
			"worker", w.id, "peer", conn.addr.String(), "error", err)
	}
}
