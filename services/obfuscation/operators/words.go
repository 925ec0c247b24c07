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
	"fmt"
	"unicode"
)

// WordBounds is a half-open [Start, End) byte range spanning one word.
type WordBounds struct {
	Start int
	End   int
}

// wordBoundsPair holds the words before the focus word and the focus
// word plus the words after it.
type wordBoundsPair struct {
	before []WordBounds
	after  []WordBounds
}

// isWordBoundary reports whether b is a non-word character.
func isWordBoundary(b byte) bool {
	r := rune(b)
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// parseWordStart returns the offset of the beginning of the word at
// pos. If pos sits on a word boundary, the beginning of the next word
// is returned, and if there is no next word, pos is returned
// unchanged. At the text edges the original position is returned
// rather than a position past the end.
func parseWordStart(text string, pos int) int {
	if pos >= len(text) || pos <= 0 {
		return pos
	}

	orig := pos
	for isWordBoundary(text[pos]) {
		pos++
		if pos >= len(text) {
			return orig
		}
		if !isWordBoundary(text[pos]) {
			return pos
		}
	}

	for pos > 0 {
		pos--
		if isWordBoundary(text[pos]) {
			pos++
			break
		}
	}
	return pos
}

// parseWordEnd returns the offset past the end of the word at pos. If
// pos sits on a word boundary, the end of the previous word is
// returned, and if there is no previous word, pos is returned
// unchanged.
func parseWordEnd(text string, pos int) int {
	if pos >= len(text) || pos <= 0 {
		return pos
	}

	orig := pos
	for isWordBoundary(text[pos]) {
		pos--
		if pos <= 0 {
			return orig
		}
		if !isWordBoundary(text[pos]) {
			return pos + 1
		}
	}

	for pos < len(text) {
		pos++
		if pos >= len(text) || isWordBoundary(text[pos]) {
			break
		}
	}
	return pos
}

// parseWordBounds parses the bounds of the wordsBefore words
// preceding the focus word and of the focus word plus the wordsAfter
// words following it. The first entry of the returned after list is
// always the focus word itself. Results are memoized per
// (text, offset, before, after) in an LRU cache.
func (tk *Toolkit) parseWordBounds(fp FocusPoint, wordsBefore, wordsAfter int) wordBoundsPair {
	text := *fp.Text
	key := fmt.Sprintf("%p:%d:%d:%d", fp.Text, fp.Offset, wordsBefore, wordsAfter)
	if cached, ok := tk.wordBounds.Get(key); ok {
		return cached
	}

	var before []WordBounds
	after := make([]WordBounds, 0, wordsAfter+1)

	start := parseWordStart(text, fp.Offset)
	// parseWordEnd leaves offset 0 unchanged, so a focus word at the
	// start of the text is measured from its second byte.
	end := parseWordEnd(text, max(start, 1))
	after = append(after, WordBounds{Start: start, End: end})

	for remaining := wordsAfter; remaining > 0 && end < len(text); remaining-- {
		nextStart := parseWordStart(text, min(end+1, len(text)))
		nextEnd := parseWordEnd(text, nextStart)
		if nextEnd <= nextStart || start == nextStart {
			break
		}
		start, end = nextStart, nextEnd
		after = append(after, WordBounds{Start: start, End: end})
	}

	start = after[0].Start
	for remaining := wordsBefore; remaining > 0 && start > 0; remaining-- {
		prevEnd := parseWordEnd(text, start-1)
		prevStart := parseWordStart(text, max(prevEnd-1, 0))
		if prevEnd <= prevStart || start == prevStart {
			break
		}
		start = prevStart
		before = append(before, WordBounds{Start: prevStart, End: prevEnd})
	}
	for i, j := 0, len(before)-1; i < j; i, j = i+1, j-1 {
		before[i], before[j] = before[j], before[i]
	}

	pair := wordBoundsPair{before: before, after: after}
	tk.wordBounds.Set(key, pair)
	return pair
}
