package realtime

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Connections prometheus.Gauge
	Messages    *prometheus.CounterVec
	Signals     *prometheus.CounterVec
}

// NewMetrics creates the realtime collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "openkanban",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Number of open websocket connections.",
		}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openkanban",
			Subsystem: "realtime",
			Name:      "messages_total",
			Help:      "Websocket messages by direction.",
		}, []string{"direction"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openkanban",
			Subsystem: "realtime",
			Name:      "sync_signals_total",
			Help:      "Board sync signals relayed through redis, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Connections, m.Messages, m.Signals)
	}
	return m
}
