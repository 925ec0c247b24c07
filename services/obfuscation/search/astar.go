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
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options control a call to Astar.
type Options struct {
	// StatusUpdateInterval publishes the non-atomic status snapshot
	// and invokes the callback every n-th goal check.
	StatusUpdateInterval int

	// FreeMemoryLimitMB aborts the search when the system's free
	// memory falls below this limit.
	FreeMemoryLimitMB uint64

	// MaxOpenSize triggers the overflow control: when OPEN grows past
	// this size it is cleared down to KeepOnOverflow entries and
	// CLOSED is rebuilt from their ancestry. This sacrifices
	// completeness to keep the search alive under memory pressure.
	MaxOpenSize int

	// KeepOnOverflow is the number of lowest-f nodes retained by the
	// overflow control.
	KeepOnOverflow int

	// Parallelism bounds the worker pool used for operator
	// application. Zero means one worker per CPU.
	Parallelism int
}

// DefaultOptions returns the driver defaults.
func DefaultOptions() Options {
	return Options{
		StatusUpdateInterval: 100,
		FreeMemoryLimitMB:    1000,
		MaxOpenSize:          40000,
		KeepOnOverflow:       10,
	}
}

// Callback receives the status after each snapshot update. It runs
// synchronously on the driver goroutine.
type Callback[S any, C any] func(*Status[S, C])

// NullCallback does nothing; use it when no progress reporting is
// needed.
func NullCallback[S any, C any](*Status[S, C]) {}

// generateSuccessors applies every operator to node's state on its
// own worker goroutine and gathers the results into new nodes. The
// returned slice may contain duplicates; duplicate handling against
// OPEN and CLOSED is the caller's job.
func generateSuccessors[S any, C any](node *Node[S], ctx C, status *Status[S, C], parallelism int) ([]*Node[S], error) {
	results := make([][]S, len(status.Operators))

	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for i, op := range status.Operators {
		g.Go(func() error {
			t0 := time.Now()
			states, err := op.Apply(node.State(), ctx)
			if err != nil {
				return fmt.Errorf("operator %q: %w", op.Name(), err)
			}

			stats := status.OperatorStats[i]
			stats.RuntimeMicros.Add(time.Since(t0).Microseconds())
			stats.NumGeneratedStates.Add(int64(len(states)))
			stats.NumApplications.Add(1)

			results[i] = states
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var newNodes []*Node[S]
	for i, states := range results {
		for _, state := range states {
			newNodes = append(newNodes, NewNode(state, node, uint8(i), status.Operators[i].Cost()))
		}
	}
	return newNodes, nil
}

// Astar runs the A* search algorithm to completion.
//
// The status object carries everything needed to run the search (the
// initial node and context, the operator set, and the hash, cost-h
// and goal functions) and doubles as the progress/abort handle for
// callers polling from another goroutine. The callback is invoked
// from the driver goroutine every Options.StatusUpdateInterval goal
// checks, after the snapshot has been refreshed.
//
// The loop exits when a goal state is reached, OPEN runs empty, the
// memory guard trips, the caller aborts, or expansion fails. In every
// case the status ends up finished and WaitForCompletion unblocks;
// failures are recorded in the status error message rather than
// propagated, so consumers observe finished without a goal state.
func Astar[S any, C any](status *Status[S, C], callback Callback[S, C], opts Options) {
	defer func() {
		if r := recover(); r != nil {
			status.setError(fmt.Sprintf("panic during search: %v", r))
		}
		status.markFinished()
	}()

	if status.ComputeHash == nil || status.ComputeCostH == nil || status.IsGoalState == nil {
		panic("search: status is missing a required function")
	}
	if len(status.Operators) != len(status.OperatorStats) {
		panic("search: operator stats out of sync with operators")
	}
	if callback == nil {
		callback = NullCallback[S, C]
	}
	defaults := DefaultOptions()
	if opts.StatusUpdateInterval <= 0 {
		opts.StatusUpdateInterval = defaults.StatusUpdateInterval
	}
	if opts.MaxOpenSize <= 0 {
		opts.MaxOpenSize = defaults.MaxOpenSize
	}
	if opts.KeepOnOverflow <= 0 {
		opts.KeepOnOverflow = defaults.KeepOnOverflow
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	t0 := time.Now()
	status.initMemoryKB.Store(UsedMemoryKB())

	open := NewOpenList[S](status.ComputeHash)
	closed := NewClosedList[S](status.ComputeHash)

	node, ctx := status.CurrentNodeAndContext()

	h, err := status.ComputeCostH(node, ctx)
	if err != nil {
		status.setError(err.Error())
		return
	}
	node.SetCostH(h)
	open.PushOrUpdate(node)

	for !open.Empty() {
		node = open.Pop()
		closed.Put(node)

		status.sizeOfOpen.Store(int64(open.Size()))
		status.sizeOfClosed.Store(int64(closed.Size()))

		if status.numGoalChecks.Load()%int64(opts.StatusUpdateInterval) == 0 {
			status.setCurrentNodeAndContext(node, ctx)
			status.recordMemoryUsage()
			status.recordRuntime(t0)
			callback(status)

			if status.FreeMemoryKB() < opts.FreeMemoryLimitMB*1024 {
				status.abortedByMemguard.Store(true)
			}
		}

		status.numGoalChecks.Add(1)
		if status.IsGoalState(node, ctx) {
			status.hasGoalState.Store(true)
			break
		}

		if status.AbortedByMemguard() || status.AbortedByCaller() {
			break
		}

		newNodes, err := generateSuccessors(node, ctx, status, parallelism)
		if err != nil {
			status.setError(err.Error())
			break
		}
		status.recordBranching(len(newNodes))

		var evalErr error
		for _, newNode := range newNodes {
			if closedNode := closed.Get(newNode.State()); closedNode != nil {
				// Reopen only on a strictly cheaper path.
				if newNode.CostG() < closedNode.CostG() {
					closed.Remove(closedNode)
					open.PushOrUpdate(newNode)
					status.numReopened.Add(1)
				} else {
					status.numDuplicated.Add(1)
				}
				continue
			}

			h, err := status.ComputeCostH(newNode, ctx)
			if err != nil {
				evalErr = err
				break
			}
			newNode.SetCostH(h)
			if !open.PushOrUpdate(newNode) {
				status.numDuplicated.Add(1)
			} else if open.Size() > opts.MaxOpenSize {
				open.Clear(opts.KeepOnOverflow)
				closed.ClearKeepAncestors(open.Nodes())
			}
		}
		if evalErr != nil {
			status.setError(evalErr.Error())
			break
		}
	}

	status.Open = open
	status.Closed = closed
	status.sizeOfOpen.Store(int64(open.Size()))
	status.sizeOfClosed.Store(int64(closed.Size()))
	status.setCurrentNodeAndContext(node, ctx)
	status.recordMemoryUsage()
	status.recordRuntime(t0)
}

// AstarAsync runs Astar on its own goroutine and returns immediately.
// The status object can then be used to poll into the running
// computation, abort it, or wait for completion.
func AstarAsync[S any, C any](status *Status[S, C], callback Callback[S, C], opts Options) {
	go Astar(status, callback, opts)
}
