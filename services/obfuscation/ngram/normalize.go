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
	"regexp"
	"strings"
)

var (
	quoteRegex    = regexp.MustCompile("(?:''|``|\"|„|“|”|‘|’|«|»)")
	dashRegex     = regexp.MustCompile("(?:[‒–—―]+|-{2,})")
	ellipsisRegex = regexp.MustCompile(`(?:…|\.{3,})`)

	wordPosRegex         = regexp.MustCompile(`/[\w+\-$*]+(\s|$)`)
	openQuotePosRegex    = regexp.MustCompile("(\\s)(.{1,2})/``\\s")
	closeQuotePosRegex   = regexp.MustCompile(`\s(.{1,2})/''(\s|$)`)
	openBracketPosRegex  = regexp.MustCompile(`(\s)(.)/\((?:-\w\w)?\s`)
	closeBracketPosRegex = regexp.MustCompile(`\s(.)/\)(?:-\w\w)?(\s|$)`)
	punctPosRegex        = regexp.MustCompile(`\s(.)/[.,:'](?:-\w\w)?(\s|$)`)
)

// NormalizeText canonicalizes typographic variation in a text:
// quote characters collapse to an apostrophe, dash runs to "--",
// ellipses to "...", and Windows line endings to "\n". A leading
// UTF-8 BOM is removed.
func NormalizeText(text string) string {
	text = strings.TrimPrefix(text, "\xEF\xBB\xBF")
	text = quoteRegex.ReplaceAllString(text, "'")
	text = dashRegex.ReplaceAllString(text, "--")
	text = ellipsisRegex.ReplaceAllString(text, "...")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text
}

// StripPOSAnnotationsFromText removes part-of-speech tags of the form
// "word/TAG" from a tokenized text, including the tag forms used for
// quotes, brackets and punctuation.
func StripPOSAnnotationsFromText(text string) string {
	text = wordPosRegex.ReplaceAllString(text, "$1")
	text = openQuotePosRegex.ReplaceAllString(text, "$1$2")
	text = closeQuotePosRegex.ReplaceAllString(text, "$1$2")
	text = openBracketPosRegex.ReplaceAllString(text, "$1$2")
	text = closeBracketPosRegex.ReplaceAllString(text, "$1$2")
	text = punctPosRegex.ReplaceAllString(text, "$1$2")
	return text
}
