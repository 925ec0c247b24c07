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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/netspeak"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
)

func TestNgramRemoval_Apply(t *testing.T) {
	tk := testToolkit()
	op := NewNgramRemoval(tk, 40)

	text := strings.Repeat("the cat sat on the mat. ", 6)
	state := stateOf(t, text)
	ctx := obfuscation.NewContext(profileOf(t, text))

	successors, err := op.Apply(state, ctx)
	require.NoError(t, err)
	require.NotEmpty(t, successors)

	for _, s := range successors {
		got := s.Text().String()
		assert.Len(t, got, len(text)-ngram.Order, "removal deletes exactly one n-gram window")
		assert.NotEqual(t, text, got)
	}
}

func TestCharacterFlip_Apply(t *testing.T) {
	tk := testToolkit()
	op := NewCharacterFlip(tk, 30)

	text := strings.Repeat("the cat sat on the mat. ", 6)
	state := stateOf(t, text)
	ctx := obfuscation.NewContext(profileOf(t, text))

	successors, err := op.Apply(state, ctx)
	require.NoError(t, err)

	for _, s := range successors {
		got := s.Text().String()
		assert.Len(t, got, len(text), "flips preserve the text length")
		assert.NotEqual(t, text, got)
	}
}

func TestPunctuationMap_Apply(t *testing.T) {
	tk := testToolkit()
	op := NewPunctuationMap(tk, 3)

	// Make the period-bearing n-grams rankable by repeating them.
	text := strings.Repeat("one. two. ", 8)
	state := stateOf(t, text)
	ctx := obfuscation.NewContext(profileOf(t, text))

	successors, err := op.Apply(state, ctx)
	require.NoError(t, err)
	require.NotEmpty(t, successors)

	for _, s := range successors {
		got := s.Text().String()
		assert.Len(t, got, len(text))
		// Only mapped punctuation may differ.
		diffs := 0
		for i := range got {
			if got[i] != text[i] {
				diffs++
				assert.Contains(t, []byte{';', ',', '!', '.'}, text[i],
					"only punctuation characters may be rewritten")
			}
		}
		assert.Equal(t, 1, diffs, "one punctuation character changes per successor")
	}
}

func TestDictionaryReplacement_Apply(t *testing.T) {
	tk := testToolkit()
	dictPath := writeDict(t, "cat\tfeline\tlion\n")

	op, err := NewContextlessSynonym(tk, 10, dictPath)
	require.NoError(t, err)
	assert.Equal(t, "Context-less synonyms", op.Name())

	text := strings.Repeat("the cat sat on the mat. ", 6)
	state := stateOf(t, text)
	// Target dominated by "cat" n-grams so every focus point lands
	// on or next to the dictionary word.
	ctx := obfuscation.NewContext(profileOf(t, strings.Repeat("cat ", 20)))

	successors, err := op.Apply(state, ctx)
	require.NoError(t, err)
	require.NotEmpty(t, successors)

	replaced := 0
	for _, s := range successors {
		got := s.Text().String()
		if strings.Contains(got, "feline") || strings.Contains(got, "lion") {
			replaced++
		}
	}
	assert.Positive(t, replaced, "at least one successor must use a dictionary alternative")
}

func TestDictionaryReplacement_MissingDictionary(t *testing.T) {
	tk := testToolkit()
	_, err := NewContextlessSynonym(tk, 10, "/nonexistent/synonyms.tsv")
	assert.Error(t, err)
}

func TestOperators_CloneIsIndependent(t *testing.T) {
	tk := testToolkit()
	op := NewNgramRemoval(tk, 40)

	clone := op.Clone()
	assert.Equal(t, op.Name(), clone.Name())
	assert.Equal(t, op.Cost(), clone.Cost())
	assert.NotSame(t, op, clone)
}

// fakePhrases answers every query with the query itself, the wildcard
// filled in, at a fixed frequency.
type fakePhrases struct {
	frequency   int64
	replacement string
	queries     []string
}

func (f *fakePhrases) Search(_ context.Context, query string, _ int) ([]netspeak.Phrase, error) {
	f.queries = append(f.queries, query)
	filled := strings.ReplaceAll(query, "?", f.replacement)
	return []netspeak.Phrase{{
		Words:     strings.Fields(filled),
		Frequency: f.frequency,
	}}, nil
}

func TestPhraseSuccessors_Replacement(t *testing.T) {
	phrases := &fakePhrases{frequency: 100000, replacement: "apple"}
	tk := NewToolkit(ToolkitConfig{Seed: 1, Phrases: phrases})

	text := "one two three four five six"
	state := stateOf(t, text)
	fp := FocusPoint{Offset: strings.Index(text, "three"), Text: &text}

	successors, err := tk.phraseSuccessors(state, fp, true)
	require.NoError(t, err)
	require.NotEmpty(t, successors)
	assert.NotEmpty(t, phrases.queries)

	for _, s := range successors {
		assert.Contains(t, s.Text().String(), "apple")
		assert.NotContains(t, s.Text().String(), "three")
	}
}

func TestPhraseSuccessors_Removal(t *testing.T) {
	phrases := &fakePhrases{frequency: 100000}
	tk := NewToolkit(ToolkitConfig{Seed: 1, Phrases: phrases})

	text := "one two three four five six"
	state := stateOf(t, text)
	fp := FocusPoint{Offset: strings.Index(text, "three"), Text: &text}

	successors, err := tk.phraseSuccessors(state, fp, false)
	require.NoError(t, err)
	require.NotEmpty(t, successors)

	for _, s := range successors {
		assert.NotContains(t, s.Text().String(), "three")
	}
}

func TestPhraseSuccessors_FrequencyThreshold(t *testing.T) {
	phrases := &fakePhrases{frequency: 100, replacement: "apple"}
	tk := NewToolkit(ToolkitConfig{Seed: 1, Phrases: phrases})

	text := "one two three four five six"
	state := stateOf(t, text)
	fp := FocusPoint{Offset: strings.Index(text, "three"), Text: &text}

	successors, err := tk.phraseSuccessors(state, fp, true)
	require.NoError(t, err)
	assert.Empty(t, successors, "rare completions must be ignored")
}

func TestWordOperators_DisabledWithoutPhraseService(t *testing.T) {
	tk := testToolkit()
	text := strings.Repeat("the cat sat on the mat. ", 6)
	state := stateOf(t, text)
	ctx := obfuscation.NewContext(profileOf(t, text))

	replacement := NewWordReplacement(tk, 4)
	successors, err := replacement.Apply(state, ctx)
	require.NoError(t, err)
	assert.Empty(t, successors)

	removal := NewWordRemoval(tk, 2)
	successors, err = removal.Apply(state, ctx)
	require.NoError(t, err)
	assert.Empty(t, successors)
}
