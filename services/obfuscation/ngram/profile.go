// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ngram

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Flags control profile generation.
type Flags uint

const (
	// SkipNormalization leaves the input text untouched before
	// n-grams are emitted from it.
	SkipNormalization Flags = 1 << iota

	// StripPOSAnnotations removes part-of-speech tags of the form
	// "word/TAG" from the text before profiling.
	StripPOSAnnotations
)

// applyThreshold is the pending-map size past which Update folds the
// pending counts into a fresh base map.
const applyThreshold = 150

// ErrTextTooShort is returned when a profile is generated from a text
// shorter than the n-gram order.
var ErrTextTooShort = errors.New("ngram: text shorter than n-gram order")

// Pair is a single (n-gram, count) profile entry.
type Pair struct {
	Ngram Ngram
	Count int64
}

// Update is a signed occurrence-count change for one n-gram.
type Update struct {
	Ngram Ngram
	Delta int
}

// base is the immutable, sorted portion of a profile. It is shared by
// reference between a profile and its clones; Apply replaces the
// pointer instead of mutating, so prior readers keep their snapshot.
type base struct {
	pairs []Pair // ascending by Ngram
}

func (b *base) find(g Ngram) (int64, bool) {
	i, ok := slices.BinarySearchFunc(b.pairs, g, func(p Pair, key Ngram) int {
		switch {
		case p.Ngram < key:
			return -1
		case p.Ngram > key:
			return 1
		}
		return 0
	})
	if !ok {
		return 0, false
	}
	return b.pairs[i].Count, true
}

// Profile is an ordered multiset of fixed-order n-grams with counts.
//
// The effective count of an n-gram is its pending value if one exists,
// else its base value; a zero effective count means the n-gram is not
// in the profile. The total n always equals the sum of all effective
// counts.
//
// Profiles are shared between search states via Clone, which shares
// the base map and copies the small pending map, giving copy-on-write
// semantics at O(pending) cost per successor.
//
// A Profile is not safe for concurrent mutation; the search clones
// before mutating, so two successors of the same parent never race.
type Profile struct {
	n           int64
	size        int
	base        *base
	pending     map[Ngram]int64
	lastUpdates []Update
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{
		base:    &base{},
		pending: make(map[Ngram]int64),
	}
}

// N returns the total number of n-gram occurrences in the profile.
func (p *Profile) N() int64 {
	return p.n
}

// Size returns the number of unique n-grams with a non-zero effective
// count.
func (p *Profile) Size() int {
	return p.size
}

// Freq returns the effective occurrence count for g, zero if absent.
func (p *Profile) Freq(g Ngram) int64 {
	if v, ok := p.pending[g]; ok {
		return v
	}
	v, _ := p.base.find(g)
	return v
}

// NormFreq returns the relative frequency of g as a 32-bit float.
func (p *Profile) NormFreq(g Ngram) float32 {
	return float32(p.Freq(g)) / float32(p.n)
}

// LogSize returns the current pending-update map size.
func (p *Profile) LogSize() int {
	return len(p.pending)
}

// LastUpdates returns the list of most recent n-gram updates.
func (p *Profile) LastUpdates() []Update {
	return p.lastUpdates
}

// ClearRecentUpdates drops the recent-updates log.
func (p *Profile) ClearRecentUpdates() {
	p.lastUpdates = nil
}

// GenerateFromString resets the profile and regenerates it from text.
// Unless SkipNormalization is set, the text is normalized first; with
// StripPOSAnnotations, POS tags are removed before normalization. The
// possibly rewritten text is returned so callers can keep profiling
// and editing aligned on the same bytes.
func (p *Profile) GenerateFromString(text string, flags Flags) (string, error) {
	if flags&StripPOSAnnotations != 0 {
		text = StripPOSAnnotationsFromText(text)
	}
	if flags&SkipNormalization == 0 {
		text = NormalizeText(text)
	}
	if len(text) < Order {
		return text, fmt.Errorf("%w: got %d bytes, need %d", ErrTextTooShort, len(text), Order)
	}

	counts := make(map[Ngram]int64)
	buf := []byte(text)
	for i := 0; i+Order <= len(buf); i++ {
		counts[FromBytes(buf[i:i+Order])]++
	}

	pairs := make([]Pair, 0, len(counts))
	var n int64
	for g, c := range counts {
		pairs = append(pairs, Pair{Ngram: g, Count: c})
		n += c
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Ngram < pairs[j].Ngram })

	p.n = n
	p.size = len(pairs)
	p.base = &base{pairs: pairs}
	p.pending = make(map[Ngram]int64)
	p.lastUpdates = nil
	return text, nil
}

// GenerateFromFiles resets the profile and regenerates it from the
// concatenated contents of the given files.
func (p *Profile) GenerateFromFiles(paths []string, flags Flags) error {
	var full []byte
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("ngram: reading profile source: %w", err)
		}
		full = append(full, data...)
	}
	_, err := p.GenerateFromString(string(full), flags)
	return err
}

// UpdateMany applies a list of signed occurrence-count changes to the
// pending map. N-grams not yet pending are first seeded from the base
// so the pending value is always an absolute count. n and size are
// maintained incrementally. Once the pending map exceeds its
// threshold, the updates are folded into a fresh base via Apply.
func (p *Profile) UpdateMany(updates []Update) {
	p.lastUpdates = p.lastUpdates[:0]

	for _, u := range updates {
		old, pending := p.pending[u.Ngram]
		if !pending {
			old, _ = p.base.find(u.Ngram)
		}
		val := old + int64(u.Delta)
		if val < 0 {
			panic(fmt.Sprintf("ngram: effective count for %q went negative (%d)", u.Ngram.String(), val))
		}
		p.pending[u.Ngram] = val

		if old == 0 && val != 0 {
			p.size++
		} else if old != 0 && val == 0 {
			if p.size == 0 {
				panic("ngram: profile size underflow")
			}
			p.size--
		}

		p.n += int64(u.Delta)
		p.lastUpdates = append(p.lastUpdates, u)
	}

	if p.n < 0 {
		panic("ngram: profile total underflow")
	}

	if len(p.pending) > applyThreshold {
		p.Apply()
	}
}

// UpdateFromStringRange updates the profile from an edited window of
// the profiled text: the n-grams of the old window are removed and
// the n-grams of the new window are added.
func (p *Profile) UpdateFromStringRange(oldWindow, newWindow []byte) {
	oldGrams := Split(oldWindow)
	newGrams := Split(newWindow)

	updates := make([]Update, 0, len(oldGrams)+len(newGrams))
	for _, g := range oldGrams {
		updates = append(updates, Update{Ngram: g, Delta: -1})
	}
	for _, g := range newGrams {
		updates = append(updates, Update{Ngram: g, Delta: 1})
	}
	p.UpdateMany(updates)
}

// Apply folds the pending counts into a fresh base map and clears the
// pending map. The old base is left untouched so clones sharing it
// keep their snapshot.
func (p *Profile) Apply() {
	if len(p.pending) == 0 {
		return
	}

	merged := make([]Pair, 0, len(p.base.pairs)+len(p.pending))
	for g, c := range p.All() {
		merged = append(merged, Pair{Ngram: g, Count: c})
	}
	p.base = &base{pairs: merged}
	p.pending = make(map[Ngram]int64)
}

// Clone returns a shallow clone that shares the base map and copies
// the pending map, permitting divergent mutation thereafter.
func (p *Profile) Clone() *Profile {
	pending := make(map[Ngram]int64, len(p.pending))
	for g, c := range p.pending {
		pending[g] = c
	}
	return &Profile{
		n:       p.n,
		size:    p.size,
		base:    p.base,
		pending: pending,
	}
}

// All iterates the merged view of base and pending in ascending
// n-gram order, skipping entries whose effective count is zero.
func (p *Profile) All() iter.Seq2[Ngram, int64] {
	pendingKeys := make([]Ngram, 0, len(p.pending))
	for g := range p.pending {
		pendingKeys = append(pendingKeys, g)
	}
	slices.Sort(pendingKeys)
	pairs := p.base.pairs

	return func(yield func(Ngram, int64) bool) {
		i, j := 0, 0
		for i < len(pairs) || j < len(pendingKeys) {
			var g Ngram
			var c int64
			switch {
			case j >= len(pendingKeys) || (i < len(pairs) && pairs[i].Ngram < pendingKeys[j]):
				g, c = pairs[i].Ngram, pairs[i].Count
				i++
			case i >= len(pairs) || pendingKeys[j] < pairs[i].Ngram:
				g, c = pendingKeys[j], p.pending[pendingKeys[j]]
				j++
			default:
				// Key present in both maps: pending overrides base.
				g, c = pendingKeys[j], p.pending[pendingKeys[j]]
				i++
				j++
			}
			if c == 0 {
				continue
			}
			if !yield(g, c) {
				return
			}
		}
	}
}

// Save writes a portable text serialization of (n, merged counts) to
// w. Pending updates are included through the merged iteration, so the
// on-disk form always iterates identically to the in-memory profile.
func (p *Profile) Save(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d\n", p.n); err != nil {
		return fmt.Errorf("ngram: saving profile: %w", err)
	}
	for g, c := range p.All() {
		if _, err := fmt.Fprintf(w, "%d %d\n", uint32(g), c); err != nil {
			return fmt.Errorf("ngram: saving profile: %w", err)
		}
	}
	return nil
}

// SaveFile serializes the profile to the named file.
func (p *Profile) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ngram: saving profile: %w", err)
	}
	defer f.Close()
	if err := p.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// Load resets the profile from a serialization written by Save.
// Iterating a loaded profile yields identical (ngram, count) pairs as
// the source.
func (p *Profile) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("ngram: loading profile: %w", err)
		}
		return errors.New("ngram: loading profile: missing header")
	}
	n, err := strconv.ParseInt(strings.TrimSpace(scanner.Text()), 10, 64)
	if err != nil {
		return fmt.Errorf("ngram: loading profile: bad header: %w", err)
	}

	var pairs []Pair
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("ngram: loading profile: malformed entry %q", line)
		}
		key, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return fmt.Errorf("ngram: loading profile: %w", err)
		}
		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("ngram: loading profile: %w", err)
		}
		pairs = append(pairs, Pair{Ngram: Ngram(key), Count: count})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ngram: loading profile: %w", err)
	}
	if !sort.SliceIsSorted(pairs, func(i, j int) bool { return pairs[i].Ngram < pairs[j].Ngram }) {
		return errors.New("ngram: loading profile: entries out of order")
	}

	p.n = n
	p.size = len(pairs)
	p.base = &base{pairs: pairs}
	p.pending = make(map[Ngram]int64)
	p.lastUpdates = nil
	return nil
}

// LoadFile resets the profile from the named file.
func (p *Profile) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ngram: loading profile: %w", err)
	}
	defer f.Close()
	return p.Load(f)
}
