// SPDX-License-Identifier:Apache-2.0

package mux

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vppapi"
	subsystem = "mux"
)

var stats = metrics{
	clients: prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "clients",
		Help:      "Number of clients sharing a multiplexed connection",
	}),

	routed: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "routed_frames_total",
		Help:      "Number of frames delivered to a client",
	}),

	dropped: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dropped_frames_total",
		Help:      "Number of frames that matched no client",
	}),
}

type metrics struct {
	clients prometheus.Gauge
	routed  prometheus.Counter
	dropped prometheus.Counter
}

func init() {
	prometheus.MustRegister(stats.clients)
	prometheus.MustRegister(stats.routed)
	prometheus.MustRegister(stats.dropped)
}
