package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rickgao/upbit-ticker/internal/connection"
	"github.com/rickgao/upbit-ticker/internal/model"
)

const namespace = "tickerboard"

// Metrics holds the collectors of one run, registered on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	FramesTotal    *prometheus.CounterVec
	BytesTotal     prometheus.Counter
	RecordsTotal   *prometheus.CounterVec
	RejectedTotal  *prometheus.CounterVec
	SessionsTotal  *prometheus.CounterVec
	SessionFrames  prometheus.Histogram
	LastTradePrice *prometheus.GaugeVec
}

// New creates the collectors, plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		FramesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_frames_total",
			Help:      "Total websocket frames received, partitioned by frame type",
		}, []string{"type"}),
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_bytes_total",
			Help:      "Total websocket payload bytes received",
		}),
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticker_records_total",
			Help:      "Total ticker records decoded, partitioned by market code",
		}, []string{"code"}),
		RejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rejected_total",
			Help:      "Total frames dropped by the decoder, partitioned by reason",
		}, []string{"reason"}),
		SessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_sessions_total",
			Help:      "Total connection sessions finished, partitioned by final state",
		}, []string{"state"}),
		SessionFrames: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ws_session_frames",
			Help:      "Frames delivered per finished session",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1 -> ~262k
		}),
		LastTradePrice: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_trade_price",
			Help:      "Most recent trade price, partitioned by market code",
		}, []string{"code"}),
	}
}

// ObserveFrame counts a received frame. It fits connection.WithFrameHook.
func (m *Metrics) ObserveFrame(f connection.Frame) {
	m.FramesTotal.WithLabelValues(f.Type.String()).Inc()
	m.BytesTotal.Add(float64(len(f.Data)))
}

// ObserveSession records a finished session. It fits connection.WithResultHook.
func (m *Metrics) ObserveSession(res connection.Result) {
	m.SessionsTotal.WithLabelValues(res.State.String()).Inc()
	m.SessionFrames.Observe(float64(res.Frames))
}

// RecordRouted implements router.Observer.
func (m *Metrics) RecordRouted(rec model.TickerRecord) {
	m.RecordsTotal.WithLabelValues(rec.Code).Inc()
	m.LastTradePrice.WithLabelValues(rec.Code).Set(rec.TradePrice)
}

// FrameRejected implements router.Observer.
func (m *Metrics) FrameRejected(reason string) {
	m.RejectedTotal.WithLabelValues(reason).Inc()
}
