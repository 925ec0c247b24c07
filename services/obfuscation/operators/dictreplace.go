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
	"strings"

	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation"
)

// DictionaryReplacement replaces the word spanning the focus point
// with an alternative from a word dictionary, without considering the
// surrounding context. One successor is emitted per alternative that
// survives the regression filter.
//
// The synonym and hypernym operators are both instances of this type,
// differing only in dictionary and cost.
type DictionaryReplacement struct {
	tk          *Toolkit
	name        string
	description string
	cost        float64
	dict        Dictionary
}

// NewContextlessSynonym creates the synonym replacement operator from
// the dictionary stored at dictPath.
func NewContextlessSynonym(tk *Toolkit, cost float64, dictPath string) (*DictionaryReplacement, error) {
	dict, err := tk.Dictionaries().Load(dictPath)
	if err != nil {
		return nil, err
	}
	return &DictionaryReplacement{
		tk:          tk,
		name:        "Context-less synonyms",
		description: "Replace synonyms without context consideration",
		cost:        cost,
		dict:        dict,
	}, nil
}

// NewContextlessHypernym creates the hypernym replacement operator
// from the dictionary stored at dictPath.
func NewContextlessHypernym(tk *Toolkit, cost float64, dictPath string) (*DictionaryReplacement, error) {
	dict, err := tk.Dictionaries().Load(dictPath)
	if err != nil {
		return nil, err
	}
	return &DictionaryReplacement{
		tk:          tk,
		name:        "Context-less hypernyms",
		description: "Replace hypernyms without context consideration",
		cost:        cost,
		dict:        dict,
	}, nil
}

// Name implements Operator.
func (op *DictionaryReplacement) Name() string { return op.name }

// Cost implements Operator.
func (op *DictionaryReplacement) Cost() float64 { return op.cost }

// Description implements Operator.
func (op *DictionaryReplacement) Description() string { return op.description }

// Clone implements Operator.
func (op *DictionaryReplacement) Clone() obfuscation.Operator {
	clone := *op
	return &clone
}

// Apply implements Operator.
func (op *DictionaryReplacement) Apply(state obfuscation.State, ctx *obfuscation.Context) ([]obfuscation.State, error) {
	return op.tk.applyFocused(state, ctx, func(fp FocusPoint) ([]obfuscation.State, error) {
		text := *fp.Text
		bounds := op.tk.parseWordBounds(fp, 0, 0).after[0]
		word := strings.ToLower(text[bounds.Start:bounds.End])

		alternatives, ok := op.dict.Lookup(word)
		if !ok {
			return nil, nil
		}

		var successors []obfuscation.State
		for _, alt := range alternatives {
			if successor, ok := op.tk.updateSuccessor(state, fp, bounds.Start, bounds.End, alt); ok {
				successors = append(successors, successor)
			}
		}
		return successors, nil
	})
}
