// Copyright (c) 2025, The kubesynth Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package synth

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	synthDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kubesynth_synth_duration_seconds",
			Help:    "Time taken to render and write all charts",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	synthTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubesynth_synth_total",
			Help: "Total number of synth runs",
		},
		[]string{"status"}, // success or error
	)

	synthObjects = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kubesynth_chart_objects",
			Help: "Number of objects in each chart of the last synth run",
		},
		[]string{"chart"},
	)

	synthBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kubesynth_output_bytes",
			Help: "Total size of the files written by the last synth run",
		},
	)
)

// WriteMetrics writes the default registry to path in the node-exporter
// textfile format.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
