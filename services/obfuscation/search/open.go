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

import "container/heap"

// nodeHeap implements heap.Interface ordered by ascending cost f.
//
// A plain heap slice plus an external hash index is used instead of a
// wrapped priority queue because A* must update a queued node's g
// value in place and then restore the heap property, which requires
// random access to arbitrary entries.
type nodeHeap[S any] []*Node[S]

func (h nodeHeap[S]) Len() int           { return len(h) }
func (h nodeHeap[S]) Less(i, j int) bool { return h[i].CostF() < h[j].CostF() }
func (h nodeHeap[S]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap[S]) Push(x any)        { *h = append(*h, x.(*Node[S])) }
func (h *nodeHeap[S]) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return node
}

// OpenList holds the frontier of a heuristic search: the nodes that
// are left to be expanded, ordered by cost f, indexed by state hash
// for O(1) membership tests and in-place cost updates.
type OpenList[S any] struct {
	computeHash func(S) string
	heap        nodeHeap[S]
	byHash      map[string]*Node[S]
}

// NewOpenList creates an empty open list using computeHash to derive
// state identities.
func NewOpenList[S any](computeHash func(S) string) *OpenList[S] {
	return &OpenList[S]{
		computeHash: computeHash,
		byHash:      make(map[string]*Node[S]),
	}
}

// Pop removes and returns the node with the lowest cost f.
func (o *OpenList[S]) Pop() *Node[S] {
	node := heap.Pop(&o.heap).(*Node[S])
	delete(o.byHash, o.computeHash(node.State()))
	return node
}

// PushOrUpdate inserts a node. If a node with the same state is
// already queued it is kept, unless the new node's cost g is strictly
// lower, in which case the queued entry is overwritten and the heap
// reordered. Returns true iff a new entry was inserted.
func (o *OpenList[S]) PushOrUpdate(node *Node[S]) bool {
	hash := o.computeHash(node.State())
	existing, ok := o.byHash[hash]
	if !ok {
		o.byHash[hash] = node
		heap.Push(&o.heap, node)
		return true
	}
	if node.CostG() < existing.CostG() {
		*existing = *node
		heap.Init(&o.heap)
	}
	return false
}

// Contains reports whether a node with the given state is queued.
func (o *OpenList[S]) Contains(state S) bool {
	_, ok := o.byHash[o.computeHash(state)]
	return ok
}

// Size returns the number of queued nodes.
func (o *OpenList[S]) Size() int {
	return len(o.heap)
}

// Empty reports whether the list holds no nodes.
func (o *OpenList[S]) Empty() bool {
	return len(o.byHash) == 0
}

// Nodes returns the queued nodes in heap order (not sorted).
func (o *OpenList[S]) Nodes() []*Node[S] {
	return o.heap
}

// Clear empties the list, keeping only the keep most promising
// (lowest-f) nodes.
func (o *OpenList[S]) Clear(keep int) {
	if len(o.heap) == 0 {
		return
	}

	kept := make(nodeHeap[S], 0, keep)
	keptMap := make(map[string]*Node[S], keep)
	for i := 0; i < keep && len(o.heap) > 0; i++ {
		node := o.Pop()
		kept = append(kept, node)
		keptMap[o.computeHash(node.State())] = node
	}
	heap.Init(&kept)
	o.heap = kept
	o.byHash = keptMap
}
