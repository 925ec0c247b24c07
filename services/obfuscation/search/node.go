// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search implements a generic best-first (A*) graph search:
// nodes wrap caller-defined states, an open list orders the frontier
// by f = g + h, and a closed list retains expanded nodes so ancestry
// can be reconstructed. The driver expands nodes through a caller-
// supplied operator set, applying all operators to the current node
// in parallel.
package search

// Node wraps a state with the bookkeeping A* needs: the accumulated
// path cost g, the heuristic estimate h, the opcode of the operator
// that produced it, and a pointer to its parent.
//
// Nodes are append-only during a search; parents never point back at
// children, so no reference cycles are possible and a node is
// reclaimed once OPEN and CLOSED drop the last reference to it.
//
// A node is immutable after construction except for its h value,
// which A* updates while the node sits on OPEN.
type Node[S any] struct {
	state  S
	costG  float64
	costH  float64
	opcode uint8
	parent *Node[S]
}

// NewRootNode wraps the initial state with zero cost and no parent.
func NewRootNode[S any](state S) *Node[S] {
	return &Node[S]{state: state}
}

// NewNode wraps a successor state produced by applying the operator
// identified by opcode (with cost opcost) to parent's state.
func NewNode[S any](state S, parent *Node[S], opcode uint8, opcost float64) *Node[S] {
	return &Node[S]{
		state:  state,
		costG:  parent.costG + opcost,
		opcode: opcode,
		parent: parent,
	}
}

// State returns the wrapped state.
func (n *Node[S]) State() S {
	return n.state
}

// Parent returns the node this one was expanded from, nil for the
// root.
func (n *Node[S]) Parent() *Node[S] {
	return n.parent
}

// Opcode identifies the operator that generated this node.
func (n *Node[S]) Opcode() uint8 {
	return n.opcode
}

// CostG returns the accumulated operator cost from the root.
func (n *Node[S]) CostG() float64 {
	return n.costG
}

// CostH returns the heuristic cost estimate to a goal.
func (n *Node[S]) CostH() float64 {
	return n.costH
}

// CostF returns g + h, the open-list ordering criterion.
func (n *Node[S]) CostF() float64 {
	return n.costG + n.costH
}

// SetCostH updates the heuristic estimate.
func (n *Node[S]) SetCostH(cost float64) {
	n.costH = cost
}

// Depth returns the length of the parent chain.
func (n *Node[S]) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// OpcodesFromRoot returns the operator codes applied along the path
// from the root to this node, in application order.
func (n *Node[S]) OpcodesFromRoot() []uint8 {
	var opcodes []uint8
	for node := n; node.parent != nil; node = node.parent {
		opcodes = append(opcodes, node.opcode)
	}
	for i, j := 0, len(opcodes)-1; i < j; i, j = i+1, j-1 {
		opcodes[i], opcodes[j] = opcodes[j], opcodes[i]
	}
	return opcodes
}
