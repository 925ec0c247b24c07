// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package obfuscation rewrites natural-language text until its
// character n-gram distribution has diverged from the original by a
// target amount, while minimizing the damage inflicted on the text.
// The rewrite is a cost-guided A* search: nodes are candidate
// rewrites, edges are applications of semantics-preserving edit
// operators, and the heuristic extrapolates remaining cost from the
// Jensen-Shannon distance still to cover.
package obfuscation

import (
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/textdiff"
)

// StateMeta is the mutable scratchpad attached to a state. The
// heuristic writes the state's divergence into it during evaluation.
//
// Only the driver goroutine touches it; worker goroutines must not.
type StateMeta struct {
	// JSD is the Jensen-Shannon divergence of this state against the
	// search target, nil until the first heuristic evaluation.
	JSD *float64
}

// State is a search node's payload: the candidate text as a
// diff-string, the n-gram profile derived from it, and the shared
// metadata cell. States are value types; the profile and metadata are
// shared by pointer and cloned before mutation.
type State struct {
	text    textdiff.DiffString
	profile *ngram.Profile
	meta    *StateMeta
}

// NewState returns an empty state with fresh metadata.
func NewState() State {
	return State{
		text:    textdiff.New(""),
		profile: ngram.NewProfile(),
		meta:    &StateMeta{},
	}
}

// NewStateFrom returns an empty state whose metadata starts as a copy
// of meta. Successors are seeded this way so the parent's divergence
// carries over until their own evaluation.
func NewStateFrom(meta StateMeta) State {
	m := meta
	return State{
		text:    textdiff.New(""),
		profile: ngram.NewProfile(),
		meta:    &m,
	}
}

// Hash returns the state identity: the content hash of its text.
func (s *State) Hash() string {
	return s.text.Hash()
}

// Equal reports whether both states materialize to the same text.
func (s *State) Equal(other *State) bool {
	return s.text.Equal(&other.text)
}

// Text returns a copy of the state's diff-string.
func (s *State) Text() textdiff.DiffString {
	return s.text
}

// Profile returns the state's n-gram profile.
func (s *State) Profile() *ngram.Profile {
	return s.profile
}

// Meta returns the shared mutable metadata cell.
func (s *State) Meta() *StateMeta {
	return s.meta
}

// SetText installs the source text to obfuscate and generates an
// n-gram profile from it. The text is normalized per flags before
// profiling; the diff-string is built over the same normalized bytes
// so edits and profile updates stay aligned.
func (s *State) SetText(text string, flags ngram.Flags) error {
	normalized, err := s.profile.GenerateFromString(text, flags)
	if err != nil {
		return err
	}
	s.text = textdiff.New(normalized)
	return nil
}

// SetProfile replaces the state's text and pre-computed profile, used
// when a successor's profile was derived incrementally from its
// parent's.
func (s *State) SetProfile(text textdiff.DiffString, profile *ngram.Profile) {
	s.text = text
	s.profile = profile
}
