package main

import (
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/operator-framework/combinatorics/pkg/metrics"
)

const metricsPrefix = "combinatorics_"

var registerMetrics sync.Once

func enableMetrics() {
	registerMetrics.Do(metrics.RegisterGenerator)
}

// ownFamilies drops the runtime collectors of the default registry.
func ownFamilies(families []*dto.MetricFamily) []*dto.MetricFamily {
	var out []*dto.MetricFamily
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), metricsPrefix) {
			out = append(out, f)
		}
	}
	return out
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, f := range ownFamilies(families) {
		if err := enc.Encode(f); err != nil {
			return errors.Wrapf(err, "encoding %s", f.GetName())
		}
	}
	return nil
}
