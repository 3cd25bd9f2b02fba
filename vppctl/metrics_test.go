// SPDX-License-Identifier:Apache-2.0

package main

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

func TestWriteMetricsOnlyOwnFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	own := prometheus.NewCounter(prometheus.CounterOpts{Name: "vppapi_test_total", Help: "test"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "unrelated_total", Help: "test"})
	reg.MustRegister(own, other)
	own.Add(3)
	other.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := encodeMetrics(&buf, ownFamilies(families)); err != nil {
		t.Fatalf("encode: %s", err)
	}

	var parser expfmt.TextParser
	parsed, err := parser.TextToMetricFamilies(&buf)
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	if _, ok := parsed["unrelated_total"]; ok {
		t.Error("foreign metric family written")
	}
	mf, ok := parsed["vppapi_test_total"]
	if !ok {
		t.Fatal("own metric family missing")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Errorf("want 3, got %v", got)
	}
}

func TestWriteMetricsDefaultRegistry(t *testing.T) {
	var buf bytes.Buffer
	if err := writeMetrics(&buf); err != nil {
		t.Fatalf("write: %s", err)
	}
	// The exchange package registers its collectors on import.
	if !bytes.Contains(buf.Bytes(), []byte("vppapi_exchange_discarded_frames_total")) {
		t.Errorf("exchange metrics missing:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("vppapi_mux_dropped_frames_total")) {
		t.Errorf("mux metrics missing:\n%s", buf.String())
	}
}
