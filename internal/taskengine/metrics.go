// bmcd is a BMC-resident Redfish service.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package taskengine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsMu sync.RWMutex

	tasksCreated  *prometheus.CounterVec
	tasksRetained prometheus.Gauge
)

func init() {
	resetMetricsLocked()
}

// RegisterMetrics registers this package's collectors against reg, for
// callers assembling a shared Prometheus registry (internal/bmcapp's
// /metrics endpoint) instead of the default global one.
func RegisterMetrics(reg *prometheus.Registry) {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	reg.MustRegister(tasksCreated, tasksRetained)
}

// ResetMetrics reinitializes all collectors, discarding the values
// accumulated in the package-level vars.
func ResetMetrics() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	resetMetricsLocked()
}

func resetMetricsLocked() {
	tasksCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bmcd",
		Subsystem: "taskengine",
		Name:      "tasks_created_total",
		Help:      "Total tasks created, labelled by the task's state at creation.",
	}, []string{"state"})

	tasksRetained = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bmcd",
		Subsystem: "taskengine",
		Name:      "tasks_retained",
		Help:      "Current number of tasks retained in the engine (running plus not-yet-evicted terminal tasks).",
	})
}

// observeCreated increments the creation counter under the task's state
// at call time (always New in practice, but takes state for symmetry
// with an eventual terminal-state breakdown).
func observeCreated(state State) {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	tasksCreated.WithLabelValues(state.String()).Inc()
}

func setRetained(n int) {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	tasksRetained.Set(float64(n))
}
