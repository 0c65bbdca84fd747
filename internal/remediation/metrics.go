/*
Copyright (c) 2025 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package remediation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the outcome of a run in Prometheus text format, meant for
// the node exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	compliant *prometheus.GaugeVec
	outcome   *prometheus.GaugeVec
	changed   *prometheus.GaugeVec
	hosts     *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compliant: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "efibootorder",
				Subsystem: "host",
				Name:      "compliant",
				Help:      "Whether the boot order of the host was compliant at the end of the run.",
			},
			[]string{"host"}),
		outcome: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "efibootorder",
				Subsystem: "host",
				Name:      "outcome",
				Help:      "The outcome of the last run per host, 1 for the outcome that occurred.",
			},
			[]string{"host", "outcome"}),
		changed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "efibootorder",
				Subsystem: "host",
				Name:      "planned_changes",
				Help:      "The number of boot entries the plan moves.",
			},
			[]string{"host"}),
		hosts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "efibootorder",
				Subsystem: "run",
				Name:      "hosts",
				Help:      "The number of hosts per outcome in the last run.",
			},
			[]string{"outcome"}),
	}

	m.registry.MustRegister(m.compliant, m.outcome, m.changed, m.hosts)
	return m
}

// Observe records every host of report.
func (m *Metrics) Observe(report *Report) {
	for _, o := range outcomes {
		m.hosts.WithLabelValues(string(o)).Set(float64(report.Count(o)))
	}

	for _, res := range report.Results {
		compliant := 0.0
		if res.Outcome == OutcomeCompliant || res.Outcome == OutcomeFixed {
			compliant = 1
		}
		m.compliant.WithLabelValues(res.Host).Set(compliant)

		for _, o := range outcomes {
			value := 0.0
			if res.Outcome == o {
				value = 1
			}
			m.outcome.WithLabelValues(res.Host, string(o)).Set(value)
		}

		changes := 0
		for _, line := range res.Diff {
			if line.Changed() {
				changes++
			}
		}
		m.changed.WithLabelValues(res.Host).Set(float64(changes))
	}
}

// WriteToTextfile atomically writes all metrics to path.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry gives access to the collected metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
