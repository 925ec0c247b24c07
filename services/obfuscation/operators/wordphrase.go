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

// Phrase-frequency query parameters: the context window spans two
// words on either side of the focus word (shifted by -1..+1), only
// the top maxPhraseResults completions are requested, and completions
// below minPhraseFrequency are ignored.
const (
	phraseContextWords = 2
	maxPhraseResults   = 5
	minPhraseFrequency = 50000
)

// WordReplacement replaces the focus word with a completion the
// phrase-frequency service considers common in the same word context.
// Requires a configured phrase service.
type WordReplacement struct {
	tk   *Toolkit
	cost float64
}

// NewWordReplacement creates the operator with the given cost.
func NewWordReplacement(tk *Toolkit, cost float64) *WordReplacement {
	return &WordReplacement{tk: tk, cost: cost}
}

// Name implements Operator.
func (op *WordReplacement) Name() string { return "Word replacement" }

// Cost implements Operator.
func (op *WordReplacement) Cost() float64 { return op.cost }

// Description implements Operator.
func (op *WordReplacement) Description() string {
	return "Replace a word when the replacement commonly appears in that context"
}

// Clone implements Operator.
func (op *WordReplacement) Clone() obfuscation.Operator {
	clone := *op
	return &clone
}

// Apply implements Operator.
func (op *WordReplacement) Apply(state obfuscation.State, ctx *obfuscation.Context) ([]obfuscation.State, error) {
	if op.tk.phrases == nil {
		return nil, nil
	}
	return op.tk.applyFocused(state, ctx, func(fp FocusPoint) ([]obfuscation.State, error) {
		return op.tk.phraseSuccessors(state, fp, true)
	})
}

// WordRemoval deletes the focus word when the surrounding word
// context is still common without it. Requires a configured phrase
// service.
type WordRemoval struct {
	tk   *Toolkit
	cost float64
}

// NewWordRemoval creates the operator with the given cost.
func NewWordRemoval(tk *Toolkit, cost float64) *WordRemoval {
	return &WordRemoval{tk: tk, cost: cost}
}

// Name implements Operator.
func (op *WordRemoval) Name() string { return "Word removal" }

// Cost implements Operator.
func (op *WordRemoval) Cost() float64 { return op.cost }

// Description implements Operator.
func (op *WordRemoval) Description() string {
	return "Delete a word from the text if it's not strictly needed in its context"
}

// Clone implements Operator.
func (op *WordRemoval) Clone() obfuscation.Operator {
	clone := *op
	return &clone
}

// Apply implements Operator.
func (op *WordRemoval) Apply(state obfuscation.State, ctx *obfuscation.Context) ([]obfuscation.State, error) {
	if op.tk.phrases == nil {
		return nil, nil
	}
	return op.tk.applyFocused(state, ctx, func(fp FocusPoint) ([]obfuscation.State, error) {
		return op.tk.phraseSuccessors(state, fp, false)
	})
}

// phraseSuccessors implements the shared word replacement/removal
// logic: slide a context window of phraseContextWords words on either
// side of the focus word across three alignments, query the phrase
// service with the focus word masked (replace) or dropped (remove),
// and emit a successor per sufficiently frequent completion.
func (tk *Toolkit) phraseSuccessors(state obfuscation.State, fp FocusPoint, replace bool) ([]obfuscation.State, error) {
	text := *fp.Text
	var successors []obfuscation.State

	for offset := -1; offset < 2; offset++ {
		pair := tk.parseWordBounds(fp, phraseContextWords+offset, phraseContextWords-offset)
		if len(pair.before) == 0 || len(pair.after) < 2 {
			continue
		}

		var query strings.Builder
		for _, bounds := range pair.before {
			query.WriteString(text[bounds.Start:bounds.End])
			query.WriteByte(' ')
		}
		for i, bounds := range pair.after {
			if i == 0 {
				if replace {
					query.WriteString("? ")
				}
				continue
			}
			query.WriteString(text[bounds.Start:bounds.End])
			query.WriteByte(' ')
		}

		phrases, err := tk.phrases.Search(tk.ctx, strings.TrimSpace(query.String()), maxPhraseResults)
		if err != nil {
			tk.log.Warn("phrase service query failed", "error", err)
			continue
		}

		focus := pair.after[0]
		for _, phrase := range phrases {
			if phrase.Frequency < minPhraseFrequency {
				continue
			}

			update := ""
			if replace {
				if len(phrase.Words) <= len(pair.before) {
					continue
				}
				update = phrase.Words[len(pair.before)]
			}

			if successor, ok := tk.updateSuccessor(state, fp, focus.Start, focus.End, update); ok {
				successors = append(successors, successor)
			}
		}
	}
	return successors, nil
}
