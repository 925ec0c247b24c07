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

// ClosedList holds the interior of a heuristic search: the nodes that
// have already been expanded. Entire nodes are kept, not just state
// hashes, so ancestry can still be reconstructed from any entry.
type ClosedList[S any] struct {
	computeHash func(S) string
	nodes       map[string]*Node[S]
}

// NewClosedList creates an empty closed list using computeHash to
// derive state identities.
func NewClosedList[S any](computeHash func(S) string) *ClosedList[S] {
	return &ClosedList[S]{
		computeHash: computeHash,
		nodes:       make(map[string]*Node[S]),
	}
}

// Put inserts a node. Returns true iff its state was not yet present.
func (c *ClosedList[S]) Put(node *Node[S]) bool {
	hash := c.computeHash(node.State())
	if _, ok := c.nodes[hash]; ok {
		return false
	}
	c.nodes[hash] = node
	return true
}

// Remove deletes the entry for node's state, if present.
func (c *ClosedList[S]) Remove(node *Node[S]) {
	delete(c.nodes, c.computeHash(node.State()))
}

// Get returns the stored node for state, nil if absent.
func (c *ClosedList[S]) Get(state S) *Node[S] {
	return c.nodes[c.computeHash(state)]
}

// Contains reports whether a node with the given state was expanded.
func (c *ClosedList[S]) Contains(state S) bool {
	_, ok := c.nodes[c.computeHash(state)]
	return ok
}

// Size returns the number of stored nodes.
func (c *ClosedList[S]) Size() int {
	return len(c.nodes)
}

// Empty reports whether the list holds no nodes.
func (c *ClosedList[S]) Empty() bool {
	return len(c.nodes) == 0
}

// Clear drops all entries.
func (c *ClosedList[S]) Clear() {
	c.nodes = make(map[string]*Node[S])
}

// ClearKeepAncestors drops all entries except the ancestors of the
// given nodes. The nodes themselves are not retained, as they are
// expected to sit on OPEN. Used by the open-list overflow control to
// reclaim memory while keeping the surviving frontier's paths intact.
func (c *ClosedList[S]) ClearKeepAncestors(keep []*Node[S]) {
	retained := make(map[string]*Node[S])
	for _, node := range keep {
		if node == nil {
			continue
		}
		for p := node.Parent(); p != nil; p = p.Parent() {
			retained[c.computeHash(p.State())] = p
		}
	}
	c.nodes = retained
}
