package router

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/rickgao/upbit-ticker/internal/connection"
	"github.com/rickgao/upbit-ticker/internal/model"
)

// Sink receives decoded ticker records in frame order.
type Sink interface {
	Push(rec model.TickerRecord)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(rec model.TickerRecord)

// Push calls fn(rec).
func (fn SinkFunc) Push(rec model.TickerRecord) {
	fn(rec)
}

// Observer is notified of every routing outcome.
type Observer interface {
	RecordRouted(rec model.TickerRecord)
	FrameRejected(reason string)
}

// Option configures a Router.
type Option func(*Router)

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		r.observers = append(r.observers, o)
	}
}

// Router decodes the frames of one connection and forwards ticker records
// to its sink. It implements connection.FrameHandler and is driven by the
// single worker that owns the connection.
type Router struct {
	sink      Sink
	logger    *slog.Logger
	observers []Observer

	received    atomic.Int64
	routed      atomic.Int64
	parseErrors atomic.Int64
	nonBinary   atomic.Int64
}

var _ connection.FrameHandler = (*Router)(nil)

// NewRouter creates a router that feeds sink.
func NewRouter(sink Sink, logger *slog.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		sink:   sink,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleFrame decodes one frame. Failures are logged and counted; the sink
// only sees successfully decoded records.
func (r *Router) HandleFrame(f connection.Frame) {
	r.received.Add(1)

	rec, err := Decode(f)
	if errors.Is(err, ErrNotBinary) {
		r.nonBinary.Add(1)
		r.logger.Info("received non-binary message", "type", f.Type.String(), "bytes", len(f.Data))
		r.reject(ReasonNotBinary)
		return
	}
	if err != nil {
		r.parseErrors.Add(1)
		r.logger.Warn("failed to parse ticker", "error", err, "bytes", len(f.Data))
		r.reject(ReasonParseError)
		return
	}

	r.routed.Add(1)
	for _, o := range r.observers {
		o.RecordRouted(rec)
	}
	r.sink.Push(rec)
}

func (r *Router) reject(reason string) {
	for _, o := range r.observers {
		o.FrameRejected(reason)
	}
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	return Stats{
		FramesReceived: r.received.Load(),
		RecordsRouted:  r.routed.Load(),
		ParseErrors:    r.parseErrors.Load(),
		NonBinary:      r.nonBinary.Load(),
	}
}
