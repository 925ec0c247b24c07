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

	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
)

// ContextMeta is the shared mutable metadata of a search context,
// initialized lazily on the first heuristic evaluation. Like
// StateMeta it is only touched from the driver goroutine.
type ContextMeta struct {
	// OriginalTextLength is the byte length of the input text.
	OriginalTextLength *int

	// OriginalJSD is the baseline divergence recorded at the first
	// heuristic evaluation; progress is measured against it.
	OriginalJSD *float64

	// GoalJSDist is the Jensen-Shannon distance the search must reach.
	GoalJSDist *float64
}

// Context carries the knowledge shared across a whole search: the
// target n-gram profile to diverge towards (read-only once the search
// starts) and the lazily initialized goal parameters.
type Context struct {
	// TargetProfile is the fixed profile the divergence is computed
	// against. Immutable during a search and shared without locking.
	TargetProfile *ngram.Profile

	Meta *ContextMeta
}

// NewContext creates a search context over the given target profile.
func NewContext(target *ngram.Profile) *Context {
	return &Context{
		TargetProfile: target,
		Meta:          &ContextMeta{},
	}
}

// GoalModel maps input length to the goal Jensen-Shannon distance via
// a log-linear fit: goal = slope * log2(len) + intercept. The
// constant pairs were derived empirically on training corpora; one
// model is active per run.
type GoalModel struct {
	Slope     float64 `yaml:"slope"`
	Intercept float64 `yaml:"intercept"`
}

// Distance returns the goal JS-distance for a text of the given byte
// length.
func (m GoalModel) Distance(textLen int) float64 {
	return m.Slope*math.Log2(float64(textLen)) + m.Intercept
}

// Obfuscation thresholds calculated on various training corpora.
var (
	// GoalGutenbergE07 is the default model (Gutenberg corpus, e_0.7).
	GoalGutenbergE07 = GoalModel{Slope: -0.10437, Intercept: 2.0831}

	// GoalGutenbergE05 is the Gutenberg corpus fit at e_0.5.
	GoalGutenbergE05 = GoalModel{Slope: -0.10347, Intercept: 2.0555}

	// GoalPAN15E07 is the PAN 15 training corpus fit at e_0.7.
	GoalPAN15E07 = GoalModel{Slope: -0.092848, Intercept: 1.9863}

	// GoalPAN14EssaysE07 is the PAN 14 essays corpus fit at e_0.7.
	GoalPAN14EssaysE07 = GoalModel{Slope: -0.082107, Intercept: 1.8435}

	// GoalPAN14NovelsE07 is the PAN 14 novels corpus fit at e_0.7.
	GoalPAN14NovelsE07 = GoalModel{Slope: -0.1, Intercept: 2.0283}

	// GoalPAN13E07 is the PAN 13 training corpus fit at e_0.7.
	GoalPAN13E07 = GoalModel{Slope: -0.092108, Intercept: 1.9916}
)

// GoalModels indexes the known corpus fits by name for configuration.
var GoalModels = map[string]GoalModel{
	"gutenberg-e0.7":    GoalGutenbergE07,
	"gutenberg-e0.5":    GoalGutenbergE05,
	"pan15-e0.7":        GoalPAN15E07,
	"pan14-essays-e0.7": GoalPAN14EssaysE07,
	"pan14-novels-e0.7": GoalPAN14NovelsE07,
	"pan13-e0.7":        GoalPAN13E07,
}
