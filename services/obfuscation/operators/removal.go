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

// NgramRemoval deletes the entire focus n-gram window from the text,
// producing one successor per focus point.
type NgramRemoval struct {
	tk   *Toolkit
	cost float64
}

// NewNgramRemoval creates the operator with the given cost.
func NewNgramRemoval(tk *Toolkit, cost float64) *NgramRemoval {
	return &NgramRemoval{tk: tk, cost: cost}
}

// Name implements Operator.
func (op *NgramRemoval) Name() string { return "N-Gram removal" }

// Cost implements Operator.
func (op *NgramRemoval) Cost() float64 { return op.cost }

// Description implements Operator.
func (op *NgramRemoval) Description() string { return "Delete n-grams from the text" }

// Clone implements Operator.
func (op *NgramRemoval) Clone() obfuscation.Operator {
	clone := *op
	return &clone
}

// Apply implements Operator.
func (op *NgramRemoval) Apply(state obfuscation.State, ctx *obfuscation.Context) ([]obfuscation.State, error) {
	return op.tk.applyFocused(state, ctx, func(fp FocusPoint) ([]obfuscation.State, error) {
		if successor, ok := op.tk.updateSuccessor(state, fp, fp.Offset, fp.Offset+ngram.Order, ""); ok {
			return []obfuscation.State{successor}, nil
		}
		return nil, nil
	})
}
