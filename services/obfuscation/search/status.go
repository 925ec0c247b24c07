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

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Status is the central input and output parameter of Astar. When the
// search runs asynchronously the same instance is shared between the
// calling and the driver goroutine, so counters are atomic and the
// current node/context snapshot is guarded by a mutex.
//
// Beyond exposing progress, the status acts as a handle for the
// caller to abort the computation or wait for it to complete.
type Status[S any, C any] struct {
	// RunID identifies this search in logs and metrics.
	RunID uuid.UUID

	finished          atomic.Bool
	hasGoalState      atomic.Bool
	abortedByCaller   atomic.Bool
	abortedByMemguard atomic.Bool

	runtimeMillis      atomic.Int64
	branchingFactorMin atomic.Int64
	branchingFactorMax atomic.Int64
	initMemoryKB       atomic.Uint64
	usedMemoryKB       atomic.Uint64
	freeMemoryKB       atomic.Uint64
	numDuplicated      atomic.Int64
	numReopened        atomic.Int64
	numGoalChecks      atomic.Int64
	sizeOfOpen         atomic.Int64
	sizeOfClosed       atomic.Int64

	// Operators and OperatorStats are set before the search starts
	// and not mutated during a run, so they are read without locking.
	Operators     []Operator[S, C]
	OperatorStats []*OperatorStats

	// ComputeHash derives a state's identity for OPEN and CLOSED.
	ComputeHash func(S) string

	// ComputeCostH estimates the remaining cost to a goal state.
	ComputeCostH func(*Node[S], C) (float64, error)

	// IsGoalState checks whether a node satisfies the goal.
	IsGoalState func(*Node[S], C) bool

	mu           sync.Mutex
	cond         *sync.Cond
	currentNode  *Node[S]
	context      C
	errorMessage string

	// Final OPEN and CLOSED lists, move-assigned when the search
	// finishes. Not safe to touch while the search is running.
	Open   *OpenList[S]
	Closed *ClosedList[S]
}

// NewStatus creates a status with a fresh run ID and branching-factor
// extremes reset.
func NewStatus[S any, C any]() *Status[S, C] {
	s := &Status[S, C]{RunID: uuid.New()}
	s.cond = sync.NewCond(&s.mu)
	s.branchingFactorMin.Store(math.MaxInt64)
	s.branchingFactorMax.Store(0)
	return s
}

// SetOperators installs the operator set and allocates matching stats
// slots. Must be called before the search starts.
func (s *Status[S, C]) SetOperators(operators []Operator[S, C]) {
	s.Operators = operators
	s.OperatorStats = make([]*OperatorStats, len(operators))
	for i := range s.OperatorStats {
		s.OperatorStats[i] = &OperatorStats{}
	}
}

// SetStart installs the initial node and context. Must be called
// before the search starts.
func (s *Status[S, C]) SetStart(node *Node[S], ctx C) {
	s.setCurrentNodeAndContext(node, ctx)
}

// Finished reports whether the search loop has exited.
func (s *Status[S, C]) Finished() bool { return s.finished.Load() }

// HasGoalState reports whether a goal state was reached.
func (s *Status[S, C]) HasGoalState() bool { return s.hasGoalState.Load() }

// AbortedByCaller reports whether Abort was called.
func (s *Status[S, C]) AbortedByCaller() bool { return s.abortedByCaller.Load() }

// AbortedByMemguard reports whether the memory guard tripped.
func (s *Status[S, C]) AbortedByMemguard() bool { return s.abortedByMemguard.Load() }

// Abort requests a graceful stop. The driver observes the flag at the
// next loop boundary; in-flight operator applications are not
// preempted.
func (s *Status[S, C]) Abort() { s.abortedByCaller.Store(true) }

// RuntimeMillis returns the elapsed search time in milliseconds.
func (s *Status[S, C]) RuntimeMillis() int64 { return s.runtimeMillis.Load() }

// BranchingFactorMin returns the smallest successor count observed.
func (s *Status[S, C]) BranchingFactorMin() int64 { return s.branchingFactorMin.Load() }

// BranchingFactorMax returns the largest successor count observed.
func (s *Status[S, C]) BranchingFactorMax() int64 { return s.branchingFactorMax.Load() }

// InitMemoryKB returns the process memory recorded before the search.
func (s *Status[S, C]) InitMemoryKB() uint64 { return s.initMemoryKB.Load() }

// UsedMemoryKB returns the most recent process memory reading.
func (s *Status[S, C]) UsedMemoryKB() uint64 { return s.usedMemoryKB.Load() }

// FreeMemoryKB returns the most recent free system memory reading.
func (s *Status[S, C]) FreeMemoryKB() uint64 { return s.freeMemoryKB.Load() }

// NumDuplicatedStates returns the duplicate successor count.
func (s *Status[S, C]) NumDuplicatedStates() int64 { return s.numDuplicated.Load() }

// NumReopenedStates returns the count of nodes moved back from CLOSED
// to OPEN.
func (s *Status[S, C]) NumReopenedStates() int64 { return s.numReopened.Load() }

// NumGoalChecks returns the number of goal tests performed.
func (s *Status[S, C]) NumGoalChecks() int64 { return s.numGoalChecks.Load() }

// SizeOfOpen returns the last published OPEN size.
func (s *Status[S, C]) SizeOfOpen() int64 { return s.sizeOfOpen.Load() }

// SizeOfClosed returns the last published CLOSED size.
func (s *Status[S, C]) SizeOfClosed() int64 { return s.sizeOfClosed.Load() }

// NumGeneratedStates sums generated successors across operators.
func (s *Status[S, C]) NumGeneratedStates() int64 {
	var num int64
	for _, stats := range s.OperatorStats {
		num += stats.NumGeneratedStates.Load()
	}
	return num
}

// NumOperatorApplications sums applications across operators.
func (s *Status[S, C]) NumOperatorApplications() int64 {
	var num int64
	for _, stats := range s.OperatorStats {
		num += stats.NumApplications.Load()
	}
	return num
}

// ErrorMessage returns the error that ended the search, empty on a
// clean exit. Valid once Finished reports true.
func (s *Status[S, C]) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorMessage
}

func (s *Status[S, C]) setError(msg string) {
	s.mu.Lock()
	s.errorMessage = msg
	s.mu.Unlock()
}

// CurrentNodeAndContext returns the snapshot published at the last
// status update: the node most recently popped from OPEN and the
// shared search context.
func (s *Status[S, C]) CurrentNodeAndContext() (*Node[S], C) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentNode, s.context
}

func (s *Status[S, C]) setCurrentNodeAndContext(node *Node[S], ctx C) {
	s.mu.Lock()
	s.currentNode = node
	s.context = ctx
	s.mu.Unlock()
}

func (s *Status[S, C]) recordBranching(numBranches int) {
	n := int64(numBranches)
	for {
		cur := s.branchingFactorMin.Load()
		if n >= cur || s.branchingFactorMin.CompareAndSwap(cur, n) {
			break
		}
	}
	for {
		cur := s.branchingFactorMax.Load()
		if n <= cur || s.branchingFactorMax.CompareAndSwap(cur, n) {
			break
		}
	}
}

func (s *Status[S, C]) recordMemoryUsage() {
	s.usedMemoryKB.Store(UsedMemoryKB())
	s.freeMemoryKB.Store(FreeMemoryKB())
}

func (s *Status[S, C]) recordRuntime(t0 time.Time) {
	s.runtimeMillis.Store(time.Since(t0).Milliseconds())
}

func (s *Status[S, C]) markFinished() {
	s.mu.Lock()
	s.finished.Store(true)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// WaitForCompletion blocks until the search loop has exited.
func (s *Status[S, C]) WaitForCompletion() {
	s.mu.Lock()
	for !s.finished.Load() {
		s.cond.Wait()
	}
	s.mu.Unlock()
}
