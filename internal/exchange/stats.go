// SPDX-License-Identifier:Apache-2.0

package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vppapi"
	subsystem = "exchange"
)

var stats = metrics{
	requests: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Number of request frames written, by message",
	}, []string{"message"}),

	replies: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "replies_total",
		Help:      "Number of replies decoded, by message",
	}, []string{"message"}),

	details: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dump_details_total",
		Help:      "Number of details messages collected by dumps, by message",
	}, []string{"message"}),

	discarded: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "discarded_frames_total",
		Help:      "Number of frames skipped while waiting for a reply",
	}),

	errors: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "errors_total",
		Help:      "Number of failed operations, by operation",
	}, []string{"op"}),
}

type metrics struct {
	requests  *prometheus.CounterVec
	replies   *prometheus.CounterVec
	details   *prometheus.CounterVec
	discarded prometheus.Counter
	errors    *prometheus.CounterVec
}

func init() {
	prometheus.MustRegister(stats.requests)
	prometheus.MustRegister(stats.replies)
	prometheus.MustRegister(stats.details)
	prometheus.MustRegister(stats.discarded)
	prometheus.MustRegister(stats.errors)
}

func (m *metrics) RequestSent(msg string) {
	m.requests.WithLabelValues(msg).Inc()
}

func (m *metrics) ReplyReceived(msg string) {
	m.replies.WithLabelValues(msg).Inc()
}

func (m *metrics) DetailsReceived(msg string) {
	m.details.WithLabelValues(msg).Inc()
}

func (m *metrics) FrameDiscarded() {
	m.discarded.Inc()
}

func (m *metrics) Failed(op string) {
	m.errors.WithLabelValues(op).Inc()
}
