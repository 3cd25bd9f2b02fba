// SPDX-License-Identifier:Apache-2.0

package main

import (
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const metricsPrefix = "vppapi_"

// writeMetrics dumps the client's own metrics in the text exposition
// format.
func writeMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	return encodeMetrics(w, ownFamilies(families))
}

func ownFamilies(families []*dto.MetricFamily) []*dto.MetricFamily {
	var ret []*dto.MetricFamily
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), metricsPrefix) {
			ret = append(ret, mf)
		}
	}
	return ret
}

func encodeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
