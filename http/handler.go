package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rjoostens/basalt/http"

var tracer = otel.Tracer(instrumentationName)

// Resolver turns a request path into the response to send. Any error is
// answered with 404; the resolver decides nothing about the wire format.
type Resolver interface {
	Resolve(path string) (Response, error)
}

// errorStatus maps the failure kinds recovered inside Handle to the
// status code the client sees. Malformed input is deliberately answered
// as "not found" rather than "bad request", matching the resolver
// outcomes; 500-class codes are never sent.
var errorStatus = []struct {
	kind   error
	status uint16
}{
	{ErrMalformedRequest, StatusNotFound},
	{errMethodNotAllowed, StatusMethodNotAllowed},
	{ErrNotFound, StatusNotFound},
}

func statusFor(err error) (uint16, bool) {
	for _, entry := range errorStatus {
		if errors.Is(err, entry.kind) {
			return entry.status, true
		}
	}
	return 0, false
}

// ConnHandler drives a single accepted connection through parsing, policy
// checks and resolution, producing exactly one final response.
type ConnHandler struct {
	resolver  Resolver
	logger    *slog.Logger
	responses metric.Int64Counter
}

func NewConnHandler(resolver Resolver, logger *slog.Logger) *ConnHandler {
	responses, err := otel.Meter(instrumentationName).Int64Counter(
		"http.server.responses",
		metric.WithDescription("Responses sent, by status code"))
	if err != nil {
		logger.Error("response counter unavailable", "error", err)
	}

	return &ConnHandler{
		resolver:  resolver,
		logger:    logger,
		responses: responses,
	}
}

// Handle owns conn for its whole lifetime: it serves one request and
// closes the socket on every exit path. A returned error means the client
// could not be answered at all (it disconnected, or the write failed);
// failures that can still be answered are mapped through errorStatus and
// reported as nil.
func (h *ConnHandler) Handle(conn Conn) error {
	defer conn.sock.Close()

	ctx, span := tracer.Start(context.Background(), "http.handle_connection")
	defer span.End()

	reader := bufio.NewReaderSize(conn.sock, DefaultReadBufferSize)
	writer := bufio.NewWriterSize(conn.sock, DefaultWriteBufferSize)

	resp, err := h.respond(reader, writer, span)
	if err != nil {
		status, recovered := statusFor(err)
		if !recovered {
			return err
		}
		h.logger.Info("request rejected",
			"peer", conn.addr.String(), "status", status, "reason", err)
		resp = NewResponse(status)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", int(resp.Status)))
	h.count(ctx, resp.Status)
	return resp.Write(writer)
}

func (h *ConnHandler) respond(reader *bufio.Reader, writer *bufio.Writer, span trace.Span) (Response, error) {
	var req Request
	if err := req.Parse(reader); err != nil {
		return Response{}, err
	}
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	)

	// An interim 100 never short-circuits anything; the final response
	// still follows.
	if strings.Contains(req.Headers.Value("expect", ""), "100-continue") {
		interim := Response{Status: StatusContinue}
		if err := interim.Write(writer); err != nil {
			return Response{}, err
		}
	}

	// Drain the declared body whether or not anyone wants it, so the
	// stream stays well-formed for this one-request-per-connection model.
	if length := req.Headers.ContentLength(); length > 0 {
		if _, err := io.CopyN(io.Discard, req.Body, int64(length)); err != nil {
			return Response{}, err
		}
	}

	if req.Method != MethodGet {
		return Response{}, fmt.Errorf("%w: %s", errMethodNotAllowed, req.Method)
	}

	resp, err := h.resolver.Resolve(req.Path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Response{}, err
		}
		return Response{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return resp, nil
}

func (h *ConnHandler) count(ctx context.Context, status uint16) {
	if h.responses == nil {
		return
	}
	h.responses.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("http.response.status_code", int(status))))
}
