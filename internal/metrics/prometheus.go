package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every collector metric.
const DefaultNamespace = "collector"

// Prometheus records cycle reports as Prometheus metrics.
type Prometheus struct {
	registry *prometheus.Registry

	FetchSeconds prometheus.Histogram
	WriteSeconds prometheus.Histogram
	CyclesTotal  *prometheus.CounterVec
	RowsWritten  *prometheus.CounterVec
	LastCycle    prometheus.Gauge
	UsedWeight   *prometheus.GaugeVec
	WeightLimit  prometheus.Gauge
}

// NewPrometheus creates the collector metrics on a fresh registry.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	// Fetch and write phases normally take well under a second; the upper
	// buckets cover the one-minute cycle budget.
	buckets := []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	return &Prometheus{
		registry: reg,
		FetchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "fetch_seconds",
			Help:      "Time from dispatch until every fetch of a cycle completed",
			Buckets:   buckets,
		}),
		WriteSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "write_seconds",
			Help:      "Time spent persisting a cycle",
			Buckets:   buckets,
		}),
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of cycles by status",
		}, []string{"status"}),
		RowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Total number of rows appended by table",
		}, []string{"table"}),
		LastCycle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time of the last cycle dispatch",
		}),
		UsedWeight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "binance",
			Name:      "used_weight",
			Help:      "Last reported X-MBX-USED-WEIGHT-1m by market",
		}, []string{"market"}),
		WeightLimit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "binance",
			Name:      "weight_limit",
			Help:      "Futures REQUEST_WEIGHT per minute limit",
		}),
	}
}

// ObserveCycle implements Recorder.
func (p *Prometheus) ObserveCycle(_ context.Context, r CycleReport) {
	p.CyclesTotal.WithLabelValues(string(r.Status)).Inc()
	p.LastCycle.Set(float64(r.Timings.Dispatched.UnixMilli()) / 1000)

	if !r.Timings.BatchComplete.IsZero() {
		p.FetchSeconds.Observe(r.Timings.FetchDuration().Seconds())
	}
	if !r.Timings.WriteComplete.IsZero() {
		p.WriteSeconds.Observe(r.Timings.WriteDuration().Seconds())
	}
	for table, n := range r.TableRows {
		p.RowsWritten.WithLabelValues(table).Add(float64(n))
	}
	for market, used := range r.UsedWeight {
		p.UsedWeight.WithLabelValues(market).Set(float64(used))
	}
}

// SetWeightLimit publishes the exchange's request weight limit.
func (p *Prometheus) SetWeightLimit(limit int64) {
	p.WeightLimit.Set(float64(limit))
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
