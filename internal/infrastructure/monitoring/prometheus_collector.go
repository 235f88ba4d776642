package monitoring

import (
	"strconv"
	"time"

	"ovenctrl/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	verdictsTotal *prometheus.CounterVec
	denialsTotal  *prometheus.CounterVec
	joinsTotal    *prometheus.CounterVec

	// Histograms
	decisionDuration prometheus.Histogram

	// Gauges
	streamersConfigured prometheus.Gauge
	roomsConfigured     prometheus.Gauge
}

// NewPrometheusCollector registers the collector's metrics with reg. Tests
// pass a fresh prometheus.NewRegistry().
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		verdictsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ovenctrl_admission_verdicts_total",
			Help: "Admission verdicts by status, direction, protocol and outcome",
		}, []string{"status", "direction", "protocol", "allowed"}),

		denialsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ovenctrl_admission_denials_total",
			Help: "Denied stream openings by denial kind",
		}, []string{"kind"}),

		joinsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ovenctrl_room_joins_total",
			Help: "Viewer join attempts by result",
		}, []string{"result"}),

		decisionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ovenctrl_admission_decision_duration_seconds",
			Help:    "Time spent parsing and deciding one admission request",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		streamersConfigured: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ovenctrl_streamers_configured",
			Help: "Streamers present in the authorization table",
		}),

		roomsConfigured: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ovenctrl_rooms_configured",
			Help: "Viewer rooms with a join password",
		}),
	}
}

// RecordVerdict counts one admission answer. req is nil when the body could
// not be parsed.
func (p *PrometheusCollector) RecordVerdict(req *domain.AdmissionRequest, verdict domain.Verdict, duration time.Duration) {
	status, direction, protocol := "unknown", "unknown", "unknown"
	if req != nil {
		status = string(req.Status)
		if req.Direction != "" {
			direction = string(req.Direction)
		}
		if req.Protocol != "" {
			protocol = string(req.Protocol)
		}
	}

	allowed := "n/a"
	if verdict.Kind == domain.VerdictOpening {
		allowed = strconv.FormatBool(verdict.Allowed)
		if !verdict.Allowed {
			p.denialsTotal.WithLabelValues(domain.DenialLabel(verdict.Cause)).Inc()
		}
	}

	p.verdictsTotal.WithLabelValues(status, direction, protocol, allowed).Inc()
	p.decisionDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordJoin(result string) {
	p.joinsTotal.WithLabelValues(result).Inc()
}

func (p *PrometheusCollector) SetTableSize(streamers, rooms int) {
	p.streamersConfigured.Set(float64(streamers))
	p.roomsConfigured.Set(float64(rooms))
}
