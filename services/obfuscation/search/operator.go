// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import "sync/atomic"

// Operator generates successor states from a state. Implementations
// must be stateless (or internally synchronized): during expansion
// every operator is applied to the same node from its own worker
// goroutine.
//
// Apply returns successors as a slice; implementations are expected
// to deduplicate their own output. An empty result is not an error —
// other operators may still expand the node.
type Operator[S any, C any] interface {
	// Name returns a short human-readable operator name.
	Name() string

	// Cost returns the cost g charged per application.
	Cost() float64

	// Description returns a one-line operator description.
	Description() string

	// Apply generates successor states from state. The context
	// carries data shared between all states, such as the search
	// target.
	Apply(state S, ctx C) ([]S, error)

	// Clone returns a deep copy, so embedders can run the same
	// operator with different cost settings.
	Clone() Operator[S, C]
}

// OperatorStats records usage statistics for one operator. Counters
// are atomic because operator applications run on worker goroutines
// while callers may read the stats concurrently through a status
// snapshot.
type OperatorStats struct {
	NumApplications    atomic.Int64
	NumGeneratedStates atomic.Int64
	RuntimeMicros      atomic.Int64
}

// Snapshot returns a plain copy of the counters.
func (s *OperatorStats) Snapshot() OperatorStatsSnapshot {
	return OperatorStatsSnapshot{
		NumApplications:    s.NumApplications.Load(),
		NumGeneratedStates: s.NumGeneratedStates.Load(),
		RuntimeMicros:      s.RuntimeMicros.Load(),
	}
}

// OperatorStatsSnapshot is a point-in-time copy of OperatorStats.
type OperatorStatsSnapshot struct {
	NumApplications    int64
	NumGeneratedStates int64
	RuntimeMicros      int64
}
