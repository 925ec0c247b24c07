// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package obfuscation

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports search progress as Prometheus collectors. The
// obfuscator refreshes them from every status snapshot, so scrape
// resolution is bounded by the status update interval.
type Metrics struct {
	goalChecks      prometheus.Gauge
	openStates      prometheus.Gauge
	closedStates    prometheus.Gauge
	duplicateStates prometheus.Gauge
	reopenedStates  prometheus.Gauge
	usedMemoryKB    prometheus.Gauge
	bestJSDistance  prometheus.Gauge
	searchDepth     prometheus.Gauge

	operatorApplications *prometheus.GaugeVec
	operatorStates       *prometheus.GaugeVec
	operatorRuntime      *prometheus.GaugeVec

	// bestSeen is the highest JS-distance observed so far.
	bestSeen float64
}

// NewMetrics creates the collector set and registers it on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		goalChecks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_goal_checks_total",
			Help: "Number of goal tests performed by the current search.",
		}),
		openStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_open_states",
			Help: "Current size of the search frontier (OPEN).",
		}),
		closedStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_closed_states",
			Help: "Current size of the search interior (CLOSED).",
		}),
		duplicateStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_duplicate_states_total",
			Help: "Successor states discarded as duplicates.",
		}),
		reopenedStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_reopened_states_total",
			Help: "States moved back from CLOSED to OPEN on a cheaper path.",
		}),
		usedMemoryKB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_used_memory_kbytes",
			Help: "Resident memory of the process at the last snapshot.",
		}),
		bestJSDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_best_js_distance",
			Help: "Jensen-Shannon distance of the best state seen so far.",
		}),
		searchDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "obfuscation_search_depth",
			Help: "Depth of the node most recently popped from OPEN.",
		}),
		operatorApplications: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "obfuscation_operator_applications_total",
			Help: "Applications per edit operator.",
		}, []string{"operator"}),
		operatorStates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "obfuscation_operator_generated_states_total",
			Help: "Successor states generated per edit operator.",
		}, []string{"operator"}),
		operatorRuntime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "obfuscation_operator_runtime_seconds_total",
			Help: "Cumulative runtime per edit operator.",
		}, []string{"operator"}),
	}

	reg.MustRegister(
		m.goalChecks, m.openStates, m.closedStates,
		m.duplicateStates, m.reopenedStates,
		m.usedMemoryKB, m.bestJSDistance, m.searchDepth,
		m.operatorApplications, m.operatorStates, m.operatorRuntime,
	)
	return m
}

// Observe refreshes the collectors from a status snapshot.
func (m *Metrics) Observe(status *SearchStatus) {
	if m == nil {
		return
	}

	m.goalChecks.Set(float64(status.NumGoalChecks()))
	m.openStates.Set(float64(status.SizeOfOpen()))
	m.closedStates.Set(float64(status.SizeOfClosed()))
	m.duplicateStates.Set(float64(status.NumDuplicatedStates()))
	m.reopenedStates.Set(float64(status.NumReopenedStates()))
	m.usedMemoryKB.Set(float64(status.UsedMemoryKB()))

	node, _ := status.CurrentNodeAndContext()
	if node != nil {
		m.searchDepth.Set(float64(node.Depth()))
		state := node.State()
		if state.Meta().JSD != nil {
			if d := math.Sqrt(2.0 * *state.Meta().JSD); d > m.bestSeen {
				m.bestSeen = d
				m.bestJSDistance.Set(d)
			}
		}
	}

	for i, op := range status.Operators {
		stats := status.OperatorStats[i].Snapshot()
		m.operatorApplications.WithLabelValues(op.Name()).Set(float64(stats.NumApplications))
		m.operatorStates.WithLabelValues(op.Name()).Set(float64(stats.NumGeneratedStates))
		m.operatorRuntime.WithLabelValues(op.Name()).Set(float64(stats.RuntimeMicros) / 1e6)
	}
}
