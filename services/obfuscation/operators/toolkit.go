// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package operators implements the edit operators of the obfuscation
// search and the shared machinery they run on: divergence-pressure
// n-gram ranking, focus-point sampling, the successor regression
// filter, and word-boundary parsing.
//
// All concrete operators follow the same shape: the shared Toolkit
// ranks the state's n-grams, picks focus points, and calls the
// operator-specific edit function once per focus point. There is no
// operator class hierarchy; the single Operator interface plus these
// freestanding helpers carry everything the concrete operators share.
package operators

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/internal/lru"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/netspeak"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/textdiff"
)

const (
	// MaxNgramRank is the number of top-ranked n-grams considered
	// for producing successors.
	MaxNgramRank = 10

	// MaxOccurrences is the number of occurrences per n-gram an
	// operator will be applied on.
	MaxOccurrences = 2

	// MaxSuccessors caps the successor set of one operator
	// application; larger sets are sampled down uniformly.
	MaxSuccessors = 6
)

// Cache capacities for the per-state working data shared across
// operators.
const (
	stateDataCacheSize  = 200
	wordBoundsCacheSize = 500
)

// FocusPoint is a character offset inside a text where an operator
// will attempt an edit, chosen to overlap a high-divergence-pressure
// n-gram.
type FocusPoint struct {
	// Offset is the byte offset of the n-gram of interest.
	Offset int

	// Text is the materialized source text the offset points into.
	Text *string
}

// stateData is the cached working data for one state: the selected
// focus offsets and the materialized text they index into.
type stateData struct {
	positions []int
	text      *string
}

// Toolkit bundles the services shared by all operators: the seedable
// RNG, the per-state working-data cache, the word-bounds cache, the
// dictionary cache, and the optional phrase-frequency service. It
// replaces the process-wide singletons of earlier designs with an
// explicit dependency handed to each operator at construction.
//
// A single Toolkit is shared by all operators of one search; all of
// its methods are safe for concurrent use.
type Toolkit struct {
	log     *logging.Logger
	ctx     context.Context
	phrases netspeak.PhraseService
	dicts   *DictionaryCache

	rngMu sync.Mutex
	rng   *rand.Rand

	stateData  *lru.Cache[string, stateData]
	wordBounds *lru.Cache[string, wordBoundsPair]
}

// ToolkitConfig configures a Toolkit.
type ToolkitConfig struct {
	// Logger receives operator diagnostics. Default: logging.Default().
	Logger *logging.Logger

	// Seed seeds the shared RNG; zero selects a time seed.
	Seed int64

	// Phrases is the optional phrase-frequency service backing the
	// word replacement and removal operators.
	Phrases netspeak.PhraseService

	// Context bounds outbound phrase-service requests. Default:
	// context.Background().
	Context context.Context
}

// NewToolkit creates the shared operator services.
func NewToolkit(cfg ToolkitConfig) *Toolkit {
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Toolkit{
		log:        log,
		ctx:        ctx,
		phrases:    cfg.Phrases,
		dicts:      NewDictionaryCache(log),
		rng:        rand.New(rand.NewSource(seed)),
		stateData:  lru.New[string, stateData](stateDataCacheSize),
		wordBounds: lru.New[string, wordBoundsPair](wordBoundsCacheSize),
	}
}

// Dictionaries exposes the shared dictionary cache.
func (tk *Toolkit) Dictionaries() *DictionaryCache {
	return tk.dicts
}

func (tk *Toolkit) intn(n int) int {
	tk.rngMu.Lock()
	defer tk.rngMu.Unlock()
	return tk.rng.Intn(n)
}

func (tk *Toolkit) shuffle(n int, swap func(i, j int)) {
	tk.rngMu.Lock()
	defer tk.rngMu.Unlock()
	tk.rng.Shuffle(n, swap)
}

// ngramRank pairs an n-gram with its divergence pressure.
type ngramRank struct {
	ngram ngram.Ngram
	rank  float64
}

// rankNgrams scores the source profile's n-grams by how much their
// reduction narrows the gap to the target: rank = normP / normQ.
// N-grams with fewer than two occurrences, no target frequency, or a
// rank below 1.0 (their removal would increase similarity) are
// discarded. The result is sorted by descending rank.
func rankNgrams(source, target *ngram.Profile) []ngramRank {
	var ranked []ngramRank
	n := float64(source.N())

	for g, count := range source.All() {
		if count < 2 {
			continue
		}

		normQ := float64(count) / n
		normP := float64(target.NormFreq(g))
		if normP == 0 {
			continue
		}

		rank := normP / normQ
		if rank < 1.0 {
			continue
		}
		ranked = append(ranked, ngramRank{ngram: g, rank: rank})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].rank > ranked[j].rank })
	return ranked
}

// ngramSelection returns the focus offsets for state, computing and
// caching them on first use so the operators scanning the same state
// reuse one position list.
func (tk *Toolkit) ngramSelection(state obfuscation.State, ctx *obfuscation.Context) (stateData, bool) {
	hash := state.Hash()
	if cached, ok := tk.stateData.Get(hash); ok {
		return cached, len(cached.positions) > 0
	}

	ranked := rankNgrams(state.Profile(), ctx.TargetProfile)
	if len(ranked) == 0 {
		return stateData{}, false
	}
	if len(ranked) > MaxNgramRank {
		ranked = ranked[:MaxNgramRank]
	}

	text := state.Text().String()
	var positions []int
	for _, r := range ranked {
		needle := r.ngram.String()

		var candidates []int
		for from := 0; ; {
			i := strings.Index(text[from:], needle)
			if i < 0 {
				break
			}
			candidates = append(candidates, from+i)
			from += i + 1
		}

		tk.shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		if len(candidates) > MaxOccurrences {
			candidates = candidates[:MaxOccurrences]
		}
		positions = append(positions, candidates...)
	}

	data := stateData{positions: positions, text: &text}
	tk.stateData.Set(hash, data)
	return data, len(positions) > 0
}

// applyFocused runs the shared operator pipeline: select focus
// points, call the operator-specific edit function on each, cap the
// concatenated successor set, and deduplicate it.
func (tk *Toolkit) applyFocused(state obfuscation.State, ctx *obfuscation.Context, edit func(fp FocusPoint) ([]obfuscation.State, error)) ([]obfuscation.State, error) {
	data, ok := tk.ngramSelection(state, ctx)
	if !ok {
		return nil, nil
	}

	var successors []obfuscation.State
	for _, pos := range data.positions {
		states, err := edit(FocusPoint{Offset: pos, Text: data.text})
		if err != nil {
			return nil, err
		}
		successors = append(successors, states...)
	}

	if len(successors) > MaxSuccessors {
		tk.shuffle(len(successors), func(i, j int) {
			successors[i], successors[j] = successors[j], successors[i]
		})
		successors = successors[:MaxSuccessors]
	}

	seen := make(map[string]struct{}, len(successors))
	deduped := successors[:0]
	for _, s := range successors {
		if _, dup := seen[s.Hash()]; dup {
			continue
		}
		seen[s.Hash()] = struct{}{}
		deduped = append(deduped, s)
	}
	return deduped, nil
}

// updateSuccessor builds a successor state for the edit that replaces
// text[editStart:editEnd] with update.
//
// The edit is rejected when the text window around it (the edit range
// widened by the n-gram order on both sides) still contains the focus
// n-gram, so every accepted edge makes progress. On acceptance the
// parent's profile is cloned and updated incrementally over the
// edited window; the profile is never regenerated from scratch.
func (tk *Toolkit) updateSuccessor(orig obfuscation.State, fp FocusPoint, editStart, editEnd int, update string) (obfuscation.State, bool) {
	text := *fp.Text
	origNgram := text[fp.Offset : fp.Offset+ngram.Order]

	newText := text[:editStart] + update + text[editEnd:]

	newBegin := max(editStart-ngram.Order, 0)
	newEnd := min(editStart+len(update)+ngram.Order, len(newText))
	if strings.Contains(newText[newBegin:newEnd], origNgram) {
		return obfuscation.State{}, false
	}

	oldBegin := max(editStart-ngram.Order, 0)
	oldEnd := min(editEnd+ngram.Order, len(text))
	if oldEnd-oldBegin > 255 {
		// Edit.DelLen is a byte.
		return obfuscation.State{}, false
	}

	newProfile := orig.Profile().Clone()
	newProfile.UpdateFromStringRange([]byte(text[oldBegin:oldEnd]), []byte(newText[newBegin:newEnd]))

	newDiff := orig.Text()
	newDiff.EditWithText(textdiff.Edit{
		Pos:       uint32(oldBegin),
		DelLen:    uint8(oldEnd - oldBegin),
		Insertion: newText[newBegin:newEnd],
	}, newText)

	successor := obfuscation.NewStateFrom(*orig.Meta())
	successor.SetProfile(newDiff, newProfile)
	return successor, true
}
