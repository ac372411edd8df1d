// Package metrics exposes the controller's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoopTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irrigation_loop_ticks_total",
		Help: "Poll loop ticks executed.",
	})
	LoopErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigation_loop_errors_total",
			Help: "Poll loop ticks that failed, by error kind.",
		},
		[]string{"kind"},
	)
	StepsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigation_steps_started_total",
			Help: "Sequence steps started, by relay (1-8).",
		},
		[]string{"relay"},
	)
	SequencesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigation_sequences_started_total",
			Help: "Sequences started, by trigger (schedule or api).",
		},
		[]string{"trigger"},
	)
	ActiveRelay = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "irrigation_active_relay",
		Help: "1-based index of the open relay, 0 when idle.",
	})
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigation_http_requests_total",
			Help: "API requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(LoopTicks, LoopErrors, StepsStarted, SequencesStarted, ActiveRelay, HTTPRequests)
}

// ObserveStep records that relay index (0-based) was opened as a step.
func ObserveStep(index int) {
	StepsStarted.WithLabelValues(strconv.Itoa(index + 1)).Inc()
	SetActiveRelay(index)
}

// SetActiveRelay updates the gauge without counting a new step.
func SetActiveRelay(index int) {
	ActiveRelay.Set(float64(index + 1))
}

// ObserveIdle marks that no relay is open.
func ObserveIdle() {
	ActiveRelay.Set(0)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
