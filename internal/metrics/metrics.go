package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the bot's operational counters on the default
// Prometheus registry. The export server serves them under /metrics.
type Recorder struct {
	cyclesTotal   prometheus.Counter
	cycleDuration prometheus.Histogram
	lastCycle     prometheus.Gauge
	cityFailures  *prometheus.CounterVec
	signalsTotal  *prometheus.CounterVec
	alertsSent    *prometheus.CounterVec
	paperEntries  prometheus.Counter
	paperResolved *prometheus.CounterVec
	openPositions prometheus.Gauge
	paperPnL      prometheus.Gauge
}

// New registers the bot metrics and returns a recorder for them.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatheredge_cycles_total",
			Help: "Total number of completed collection cycles",
		}),
		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "weatheredge_cycle_duration_seconds",
			Help:    "Duration of a full collection cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		lastCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weatheredge_last_cycle_unix",
			Help: "Unix time of the last completed cycle",
		}),
		cityFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weatheredge_city_failures_total",
				Help: "Cycles in which a city produced no usable snapshot",
			},
			[]string{"city"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weatheredge_signals_total",
				Help: "Gap signals produced, by confidence",
			},
			[]string{"confidence"},
		),
		alertsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weatheredge_alerts_sent_total",
				Help: "Telegram digests and summaries sent, by kind",
			},
			[]string{"kind"},
		),
		paperEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatheredge_paper_entries_total",
			Help: "Simulated positions opened",
		}),
		paperResolved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weatheredge_paper_resolved_total",
				Help: "Simulated positions settled, by market result",
			},
			[]string{"result"},
		),
		openPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weatheredge_open_positions",
			Help: "Simulated positions currently open",
		}),
		paperPnL: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weatheredge_paper_pnl_cents",
			Help: "Cumulative realized paper profit in cents",
		}),
	}
}

// RecordCycle records one finished collection cycle.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(seconds)
	r.lastCycle.SetToCurrentTime()
}

// RecordCityFailure records a city that yielded nothing this cycle.
func (r *Recorder) RecordCityFailure(city string) {
	r.cityFailures.WithLabelValues(city).Inc()
}

// RecordSignal records a produced gap signal.
func (r *Recorder) RecordSignal(confidence string) {
	r.signalsTotal.WithLabelValues(confidence).Inc()
}

// RecordAlertSent records an outbound digest or summary.
func (r *Recorder) RecordAlertSent(kind string) {
	r.alertsSent.WithLabelValues(kind).Inc()
}

// RecordPaperEntry records a newly opened simulated position.
func (r *Recorder) RecordPaperEntry() {
	r.paperEntries.Inc()
	r.openPositions.Inc()
}

// RecordPaperResolved records a settled simulated position and its PnL.
func (r *Recorder) RecordPaperResolved(result string, pnlCents int) {
	r.paperResolved.WithLabelValues(result).Inc()
	r.openPositions.Dec()
	r.paperPnL.Add(float64(pnlCents))
}
