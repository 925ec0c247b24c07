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

// CharacterFlip swaps adjacent character pairs inside the focus
// n-gram window, emitting up to Order-1 successors per focus point.
// Identity swaps (equal neighbors) are skipped.
type CharacterFlip struct {
	tk   *Toolkit
	cost float64
}

// NewCharacterFlip creates the operator with the given cost.
func NewCharacterFlip(tk *Toolkit, cost float64) *CharacterFlip {
	return &CharacterFlip{tk: tk, cost: cost}
}

// Name implements Operator.
func (op *CharacterFlip) Name() string { return "Character flips" }

// Cost implements Operator.
func (op *CharacterFlip) Cost() float64 { return op.cost }

// Description implements Operator.
func (op *CharacterFlip) Description() string { return "Flip two neighboring characters" }

// Clone implements Operator.
func (op *CharacterFlip) Clone() obfuscation.Operator {
	clone := *op
	return &clone
}

// Apply implements Operator.
func (op *CharacterFlip) Apply(state obfuscation.State, ctx *obfuscation.Context) ([]obfuscation.State, error) {
	return op.tk.applyFocused(state, ctx, func(fp FocusPoint) ([]obfuscation.State, error) {
		text := *fp.Text
		var successors []obfuscation.State

		for i := 0; i < ngram.Order-1; i++ {
			start := fp.Offset + i
			end := start + 2
			if end >= len(text) {
				break
			}
			if text[start] == text[start+1] {
				continue
			}

			perm := string([]byte{text[start+1], text[start]})
			if successor, ok := op.tk.updateSuccessor(state, fp, start, end, perm); ok {
				successors = append(successors, successor)
			}
		}
		return successors, nil
	})
}
