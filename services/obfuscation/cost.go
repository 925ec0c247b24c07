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
	"iter"
	"math"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/internal/numeric"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/search"
)

// jsdEpsilon is subtracted from the first measured divergence when
// recording the baseline, so the root's own distance never reads as
// progress.
const jsdEpsilon = 1.0e-10

// CostH computes the h(n) heuristic of the search from the
// Jensen-Shannon divergence between a state's n-gram profile and the
// target profile.
//
// Let d be the state's JS-distance, d0 the baseline distance and g
// the accumulated path cost. The observed cost per unit of progress
// p = g / max(1e-6, d - d0) times the remaining distance
// r = max(0, goal - d) extrapolates the remaining cost linearly.
// The root has g = 0, so h = 0 and the engine always expands it; a
// state past the goal also gets h = 0.
type CostH struct {
	log *logging.Logger

	// AllowIncremental enables the approximate delta-replay JSD
	// update between periodic full recomputations. The full
	// recomputation path is canonical; leave this off unless profile
	// sizes make the full pass a measured bottleneck.
	AllowIncremental bool
}

// NewCostH returns a cost function logging through log.
func NewCostH(log *logging.Logger) *CostH {
	return &CostH{log: log}
}

// Compute evaluates h for node and records the node's divergence in
// its state metadata. On the first evaluation it also records the
// baseline divergence into the context metadata.
func (c *CostH) Compute(node *search.Node[State], ctx *Context) (float64, error) {
	state := node.State()

	sourceProfile := state.Profile()
	targetProfile := ctx.TargetProfile

	var jsd float64
	meta := state.Meta()
	if c.AllowIncremental && meta.JSD != nil && node.Depth()%5 != 0 && len(sourceProfile.LastUpdates()) > 0 {
		jsd = jsdFromUpdates(*meta.JSD, sourceProfile.LastUpdates(), sourceProfile, targetProfile)
	} else {
		jsd = JSD(sourceProfile, targetProfile)
	}

	if jsd > 1.0 {
		c.log.Warn("numerical overflow in divergence computation", "jsd", jsd)
		jsd = 1.0
	}
	meta.JSD = &jsd

	var origJSD float64
	if ctx.Meta.OriginalJSD == nil {
		origJSD = math.Max(0.0, jsd-jsdEpsilon)
		ctx.Meta.OriginalJSD = &origJSD
	} else {
		origJSD = *ctx.Meta.OriginalJSD
	}

	jsDistance := math.Sqrt(2.0 * jsd)
	goal := *ctx.Meta.GoalJSDist

	p := node.CostG() / math.Max(1.0e-6, jsDistance-math.Sqrt(2.0*origJSD))
	r := math.Max(0.0, goal-jsDistance)
	return r * p, nil
}

// JSD computes the Jensen-Shannon divergence between two n-gram
// profiles, iterating both in merged ascending order. The terms are
// evaluated in log space and accumulated with Dekker compensated
// summation; a naive accumulator visibly drifts above 1.0 on large
// profiles.
func JSD(q, p *ngram.Profile) float64 {
	pNorm := math.Log(float64(p.N()))
	qNorm := math.Log(float64(q.N()))
	logHalf := math.Log(0.5)

	pNext, pStop := iter.Pull2(p.All())
	defer pStop()
	qNext, qStop := iter.Pull2(q.All())
	defer qStop()

	pKey, pCount, pOK := pNext()
	qKey, qCount, qOK := qNext()

	var jsdP, jsdQ numeric.DekkerSum

	for pOK || qOK {
		// Positive values mark an absent side; real log
		// probabilities are always <= 0.
		pLog := 1.0
		qLog := 1.0

		switch {
		case pOK && (!qOK || pKey < qKey):
			pLog = math.Log(float64(pCount)) - pNorm
			pKey, pCount, pOK = pNext()
		case qOK && (!pOK || qKey < pKey):
			qLog = math.Log(float64(qCount)) - qNorm
			qKey, qCount, qOK = qNext()
		default:
			pLog = math.Log(float64(pCount)) - pNorm
			qLog = math.Log(float64(qCount)) - qNorm
			pKey, pCount, pOK = pNext()
			qKey, qCount, qOK = qNext()
		}

		var m float64
		if pLog <= 0.0 && qLog <= 0.0 {
			m = logHalf + numeric.LogAdd(pLog, qLog)
		} else {
			m = logHalf + math.Min(pLog, qLog)
		}

		if pLog <= 0.0 {
			jsdP.Add(math.Exp(pLog) * (pLog - m) / math.Ln2)
		}
		if qLog <= 0.0 {
			jsdQ.Add(math.Exp(qLog) * (qLog - m) / math.Ln2)
		}
	}

	return 0.5 * (jsdP.Value() + jsdQ.Value())
}

// jsdFromUpdates adjusts a previously computed divergence by
// replaying only the delta n-grams through the divergence formula:
// each changed n-gram's old per-term contribution is subtracted and
// its new one added. The result is approximate and must be corrected
// by a periodic full recomputation.
func jsdFromUpdates(previousJSD float64, updates []ngram.Update, source, target *ngram.Profile) float64 {
	// source already holds the updated counts; the previous ones are
	// recovered by undoing the deltas.
	newQN := source.N()
	var deltaN int64
	merged := make(map[ngram.Ngram]int64, len(updates))
	for _, u := range updates {
		deltaN += int64(u.Delta)
		merged[u.Ngram] += int64(u.Delta)
	}
	oldQN := newQN - deltaN
	if newQN <= 0 {
		panic("obfuscation: source profile emptied by updates")
	}

	logHalf := math.Log(0.5)
	newQNLog := math.Log(float64(newQN))
	oldQNLog := math.Log(float64(oldQN))

	var oldDiff, newDiff numeric.DekkerSum
	for g, delta := range merged {
		pNorm := float64(target.NormFreq(g))
		newQ := float64(source.Freq(g))
		oldQ := newQ - float64(delta)
		if newQ < 0 {
			panic("obfuscation: negative n-gram count after update")
		}

		pLog := 1.0
		if pNorm != 0.0 {
			pLog = math.Log(pNorm)
		}
		newQLog := 1.0
		if newQ > 0 {
			newQLog = math.Log(newQ) - newQNLog
		}
		oldQLog := 1.0
		if oldQ > 0 {
			oldQLog = math.Log(oldQ) - oldQNLog
		}

		newM := 1.0
		if pLog <= 0.0 && newQLog <= 0.0 {
			newM = logHalf + numeric.LogAdd(pLog, newQLog)
		} else if pLog <= 0.0 || newQLog <= 0.0 {
			newM = logHalf + math.Min(pLog, newQLog)
		}

		oldM := 1.0
		if pLog <= 0.0 && oldQLog <= 0.0 {
			oldM = logHalf + numeric.LogAdd(pLog, oldQLog)
		} else if pLog <= 0.0 || oldQLog <= 0.0 {
			oldM = logHalf + math.Min(pLog, oldQLog)
		}

		if newM <= 0.0 {
			if pLog <= 0.0 {
				newDiff.Add(math.Exp(pLog) * (pLog - newM) / math.Ln2)
			}
			if newQLog <= 0.0 {
				newDiff.Add(math.Exp(newQLog) * (newQLog - newM) / math.Ln2)
			}
		}
		if oldM <= 0.0 {
			if pLog <= 0.0 {
				oldDiff.Sub(math.Exp(pLog) * (pLog - oldM) / math.Ln2)
			}
			if oldQLog <= 0.0 {
				oldDiff.Sub(math.Exp(oldQLog) * (oldQLog - oldM) / math.Ln2)
			}
		}
	}

	return previousJSD + 0.5*(oldDiff.Value()+newDiff.Value())
}
