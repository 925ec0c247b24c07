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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The test domain walks the integer line towards a target value.

type walkCtx struct {
	target int
}

type walkOp struct {
	name string
	cost float64
	step func(int) []int
	err  error
}

func (o *walkOp) Name() string        { return o.name }
func (o *walkOp) Cost() float64       { return o.cost }
func (o *walkOp) Description() string { return "" }
func (o *walkOp) Clone() Operator[int, *walkCtx] {
	clone := *o
	return &clone
}

func (o *walkOp) Apply(state int, ctx *walkCtx) ([]int, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.step(state), nil
}

func walkStatus(target int, ops ...Operator[int, *walkCtx]) *Status[int, *walkCtx] {
	status := NewStatus[int, *walkCtx]()
	status.ComputeHash = intHash
	status.ComputeCostH = func(n *Node[int], ctx *walkCtx) (float64, error) {
		return math.Abs(float64(ctx.target - n.State())), nil
	}
	status.IsGoalState = func(n *Node[int], ctx *walkCtx) bool {
		return n.State() == ctx.target
	}
	status.SetOperators(ops)
	status.SetStart(NewRootNode(0), &walkCtx{target: target})
	return status
}

func stepBy(deltas ...int) func(int) []int {
	return func(state int) []int {
		next := make([]int, len(deltas))
		for i, d := range deltas {
			next[i] = state + d
		}
		return next
	}
}

func TestAstar_FindsGoal(t *testing.T) {
	status := walkStatus(7,
		&walkOp{name: "inc", cost: 1, step: stepBy(1)},
		&walkOp{name: "jump", cost: 3, step: stepBy(3)},
	)

	Astar(status, NullCallback, DefaultOptions())

	require.True(t, status.Finished())
	assert.True(t, status.HasGoalState())
	assert.Empty(t, status.ErrorMessage())

	node, _ := status.CurrentNodeAndContext()
	assert.Equal(t, 7, node.State())
	assert.Greater(t, node.Depth(), 0)
	// Cost equals distance for both operators, so every path to 7
	// accumulates exactly 7.
	assert.Equal(t, 7.0, node.CostG())
}

func TestAstar_EmptyOpenTerminates(t *testing.T) {
	status := walkStatus(5,
		&walkOp{name: "dead-end", cost: 1, step: func(int) []int { return nil }},
	)

	Astar(status, NullCallback, DefaultOptions())

	require.True(t, status.Finished())
	assert.False(t, status.HasGoalState())
	assert.Empty(t, status.ErrorMessage())
	assert.EqualValues(t, 1, status.NumGoalChecks())
}

func TestAstar_CallerAbort(t *testing.T) {
	// The goal is unreachable; the callback aborts at the first
	// snapshot, and the driver notices at the next loop boundary.
	status := walkStatus(-1,
		&walkOp{name: "inc", cost: 1, step: stepBy(1)},
	)

	opts := DefaultOptions()
	opts.StatusUpdateInterval = 1
	Astar(status, func(s *Status[int, *walkCtx]) { s.Abort() }, opts)

	require.True(t, status.Finished())
	assert.True(t, status.AbortedByCaller())
	assert.False(t, status.HasGoalState())
}

func TestAstar_OperatorErrorEndsGracefully(t *testing.T) {
	status := walkStatus(5,
		&walkOp{name: "boom", cost: 1, err: errors.New("operator exploded")},
	)

	Astar(status, NullCallback, DefaultOptions())

	require.True(t, status.Finished())
	assert.False(t, status.HasGoalState())
	assert.Contains(t, status.ErrorMessage(), "operator exploded")
}

func TestAstar_CountsDuplicates(t *testing.T) {
	// Both operators generate the same successor state.
	status := walkStatus(3,
		&walkOp{name: "a", cost: 1, step: stepBy(1)},
		&walkOp{name: "b", cost: 1, step: stepBy(1)},
	)

	Astar(status, NullCallback, DefaultOptions())

	require.True(t, status.HasGoalState())
	assert.Positive(t, status.NumDuplicatedStates())
}

func TestAstar_OverflowControlBoundsOpen(t *testing.T) {
	status := walkStatus(40,
		&walkOp{name: "fan", cost: 1, step: stepBy(1, 2, 3, 4, 5)},
	)

	opts := DefaultOptions()
	opts.MaxOpenSize = 16
	opts.KeepOnOverflow = 4
	opts.FreeMemoryLimitMB = 1
	Astar(status, NullCallback, opts)

	require.True(t, status.Finished())
	assert.True(t, status.HasGoalState())
	assert.LessOrEqual(t, status.Open.Size(), opts.MaxOpenSize)
}

func TestAstar_RecordsStats(t *testing.T) {
	status := walkStatus(5,
		&walkOp{name: "inc", cost: 1, step: stepBy(1)},
	)

	Astar(status, NullCallback, DefaultOptions())

	require.True(t, status.HasGoalState())
	assert.Positive(t, status.NumOperatorApplications())
	assert.Positive(t, status.NumGeneratedStates())
	assert.Positive(t, status.NumGoalChecks())
	assert.EqualValues(t, 1, status.BranchingFactorMin())
	assert.EqualValues(t, 1, status.BranchingFactorMax())
}

func TestStatus_WaitForCompletion(t *testing.T) {
	status := walkStatus(3,
		&walkOp{name: "inc", cost: 1, step: stepBy(1)},
	)

	AstarAsync(status, NullCallback, DefaultOptions())
	status.WaitForCompletion()

	assert.True(t, status.Finished())
	assert.True(t, status.HasGoalState())
}
