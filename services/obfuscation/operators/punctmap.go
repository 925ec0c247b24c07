// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package operators

import (
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
)

// punctuationVariants maps each punctuation character to the variants
// it may be rewritten to. Splitting sentences at commas and running
// them on at full stops are the cheapest edits the search has.
var punctuationVariants = map[byte][]byte{
	',': {';', '.'},
	'.': {',', '!'},
	':': {'.', ';'},
	'!': {'.', ','},
	'?': {'.'},
}

// PunctuationMap rewrites punctuation characters inside the focus
// window to one of their variants, chosen uniformly at random per
// eligible position.
type PunctuationMap struct {
	tk   *Toolkit
	cost float64
}

// NewPunctuationMap creates the operator with the given cost.
func NewPunctuationMap(tk *Toolkit, cost float64) *PunctuationMap {
	return &PunctuationMap{tk: tk, cost: cost}
}

// Name implements Operator.
func (op *PunctuationMap) Name() string { return "Punctuation mapping" }

// Cost implements Operator.
func (op *PunctuationMap) Cost() float64 { return op.cost }

// Description implements Operator.
func (op *PunctuationMap) Description() string {
	return "Map punctuation characters to variants (e.g. dots to commas)"
}

// Clone implements Operator.
func (op *PunctuationMap) Clone() obfuscation.Operator {
	clone := *op
	return &clone
}

// Apply implements Operator.
func (op *PunctuationMap) Apply(state obfuscation.State, ctx *obfuscation.Context) ([]obfuscation.State, error) {
	return op.tk.applyFocused(state, ctx, func(fp FocusPoint) ([]obfuscation.State, error) {
		text := *fp.Text
		var successors []obfuscation.State

		for i := 0; i < ngram.Order; i++ {
			pos := fp.Offset + i
			if pos >= len(text) {
				break
			}

			variants, ok := punctuationVariants[text[pos]]
			if !ok {
				continue
			}
			repl := variants[op.tk.intn(len(variants))]

			if successor, ok := op.tk.updateSuccessor(state, fp, pos, pos+1, string(repl)); ok {
				successors = append(successors, successor)
			}
		}
		return successors, nil
	})
}
