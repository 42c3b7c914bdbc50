package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the relay's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	PipelineRuns     prometheus.Counter
	StageFailures    *prometheus.CounterVec
	DeliveryAttempts *prometheus.CounterVec
	ConfigSaves      *prometheus.CounterVec
	Subscribers      prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_pipeline_runs_total",
			Help: "Total number of pipeline runs started",
		}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_stage_failures_total",
			Help: "Pipeline runs that failed, by stage",
		}, []string{"stage"}),
		DeliveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_delivery_attempts_total",
			Help: "Message delivery attempts, by outcome",
		}, []string{"outcome"}),
		ConfigSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_config_saves_total",
			Help: "Configuration save requests, by outcome",
		}, []string{"outcome"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_subscribers",
			Help: "Currently connected notification subscribers",
		}),
	}
	m.Registry.MustRegister(m.PipelineRuns, m.StageFailures, m.DeliveryAttempts, m.ConfigSaves, m.Subscribers)
	return m
}
