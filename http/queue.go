package http

import (
	"context"
	"net"
	"time"
)

// Conn is one accepted client connection. Ownership is exclusive: the
// accept loop owns it until put succeeds, then exactly one worker owns it
// until the handler closes it.
type Conn struct {
	sock net.Conn
	addr net.Addr
}

// connQueue is the bounded FIFO between the accept loop and the workers.
// put blocking while the queue is full is the server's only backpressure
// mechanism: connections are delayed, never dropped.
type connQueue struct {
	conns chan Conn
}

func newConnQueue(capacity int) *connQueue {
	return &connQueue{conns: make(chan Conn, capacity)}
}

// put enqueues c, blocking while the queue is full. It fails only when
// ctx is canceled, which happens during shutdown.
func (q *connQueue) put(ctx context.Context, c Conn) error {
	select {
	case q.conns <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// get dequeues the oldest connection, waiting up to timeout.
func (q *connQueue) get(timeout time.Duration) (Conn, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c := <-q.conns:
		return c, true
	case <-timer.C:
		return Conn{}, false
	}
}
