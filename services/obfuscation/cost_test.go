// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package obfuscation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/search"
)

func profileOf(t *testing.T, text string) *ngram.Profile {
	t.Helper()
	p := ngram.NewProfile()
	_, err := p.GenerateFromString(text, ngram.SkipNormalization)
	require.NoError(t, err)
	return p
}

func TestJSD_Identity(t *testing.T) {
	p := profileOf(t, "the quick brown fox jumps over the lazy dog")
	assert.InDelta(t, 0.0, JSD(p, p), 1e-12)
}

func TestJSD_Symmetry(t *testing.T) {
	p := profileOf(t, "the quick brown fox jumps over the lazy dog")
	q := profileOf(t, "pack my box with five dozen liquor jugs")

	assert.InDelta(t, JSD(p, q), JSD(q, p), 1e-12)
}

func TestJSD_Bounds(t *testing.T) {
	t.Run("disjoint profiles diverge fully", func(t *testing.T) {
		p := profileOf(t, "aaaaaaaaaa")
		q := profileOf(t, "zzzzzzzzzz")

		jsd := JSD(p, q)
		assert.InDelta(t, 1.0, jsd, 1e-9)
		assert.LessOrEqual(t, jsd, 1.0+1e-9)
	})

	t.Run("overlapping profiles stay within bounds", func(t *testing.T) {
		p := profileOf(t, "the cat sat on the mat")
		q := profileOf(t, "the dog sat on the log")

		jsd := JSD(p, q)
		assert.Greater(t, jsd, 0.0)
		assert.Less(t, jsd, 1.0)
	})

	t.Run("large profiles do not drift past one", func(t *testing.T) {
		// Many small terms of mixed sign are where naive summation
		// visibly exceeds the upper bound.
		var a, b []byte
		for i := 0; i < 20000; i++ {
			a = append(a, byte('a'+i%26), byte('a'+(i*7)%26), ' ')
			b = append(b, byte('A'+i%26), byte('A'+(i*11)%26), ' ')
		}
		p := profileOf(t, string(a))
		q := profileOf(t, string(b))

		assert.LessOrEqual(t, JSD(p, q), 1.0+1e-9)
	})
}

func TestCostH_RootIsFree(t *testing.T) {
	state := NewState()
	require.NoError(t, state.SetText("the quick brown fox", ngram.SkipNormalization))

	ctx := NewContext(profileOf(t, "pack my box with five dozen liquor jugs"))
	goal := 1.0
	ctx.Meta.GoalJSDist = &goal

	costH := NewCostH(logging.Discard())
	h, err := costH.Compute(search.NewRootNode(state), ctx)

	require.NoError(t, err)
	assert.Zero(t, h, "g = 0 at the root must yield h = 0")
	assert.NotNil(t, state.Meta().JSD)
}

func TestCostH_RecordsBaseline(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	state := NewState()
	require.NoError(t, state.SetText(text, ngram.SkipNormalization))

	t.Run("identical profiles give a near-zero baseline", func(t *testing.T) {
		ctx := NewContext(profileOf(t, text))
		goal := 0.5
		ctx.Meta.GoalJSDist = &goal

		costH := NewCostH(logging.Discard())
		_, err := costH.Compute(search.NewRootNode(state), ctx)

		require.NoError(t, err)
		require.NotNil(t, ctx.Meta.OriginalJSD)
		assert.Less(t, *ctx.Meta.OriginalJSD, 1e-9)
	})

	t.Run("baseline is written once", func(t *testing.T) {
		ctx := NewContext(profileOf(t, "pack my box with five dozen liquor jugs"))
		goal := 0.5
		ctx.Meta.GoalJSDist = &goal

		costH := NewCostH(logging.Discard())
		_, err := costH.Compute(search.NewRootNode(state), ctx)
		require.NoError(t, err)
		first := *ctx.Meta.OriginalJSD

		_, err = costH.Compute(search.NewRootNode(state), ctx)
		require.NoError(t, err)
		assert.Equal(t, first, *ctx.Meta.OriginalJSD)
	})
}

func TestCostH_PastGoalIsFree(t *testing.T) {
	state := NewState()
	require.NoError(t, state.SetText("aaaaaaaaaa", ngram.SkipNormalization))

	// Disjoint target: the state's distance is already maximal.
	ctx := NewContext(profileOf(t, "zzzzzzzzzz"))
	goal := 0.5
	ctx.Meta.GoalJSDist = &goal

	costH := NewCostH(logging.Discard())
	root := search.NewRootNode(state)
	_, err := costH.Compute(root, ctx)
	require.NoError(t, err)

	child := search.NewNode(state, root, 0, 10.0)
	h, err := costH.Compute(child, ctx)
	require.NoError(t, err)
	assert.Zero(t, h, "a state past the goal distance costs nothing")
}

func TestGoalModel_Distance(t *testing.T) {
	// -0.10437 * log2(512) + 2.0831 = 1.1438
	assert.InDelta(t, 1.1438, GoalGutenbergE07.Distance(512), 5e-4)
}

func TestGoalCheck(t *testing.T) {
	state := NewState()
	require.NoError(t, state.SetText("aaaaaaaaaa", ngram.SkipNormalization))
	ctx := NewContext(profileOf(t, "zzzzzzzzzz")) // disjoint: jsd = 1

	goal := 1.0
	ctx.Meta.GoalJSDist = &goal

	root := search.NewRootNode(state)
	child := search.NewNode(state, root, 0, 1.0)

	t.Run("unevaluated state is never a goal", func(t *testing.T) {
		assert.False(t, GoalCheck(child, ctx))
	})

	costH := NewCostH(logging.Discard())
	_, err := costH.Compute(child, ctx)
	require.NoError(t, err)

	t.Run("root is never a goal", func(t *testing.T) {
		assert.False(t, GoalCheck(root, ctx))
	})

	t.Run("deep node past the goal distance is a goal", func(t *testing.T) {
		assert.True(t, GoalCheck(child, ctx))
	})

	t.Run("distance below the goal is not a goal", func(t *testing.T) {
		harder := math.Sqrt(2.0) + 0.1
		ctx.Meta.GoalJSDist = &harder
		assert.False(t, GoalCheck(child, ctx))
	})
}
