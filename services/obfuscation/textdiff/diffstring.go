// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package textdiff provides a string representation that stores its
// edit history and re-applies it on the fly to a shared original text
// instead of storing the full new text, keeping per-search-node
// memory bounded.
package textdiff

import (
	"crypto/md5"
)

// Edit is a single string edit: delete DelLen bytes at Pos, then
// insert Insertion at Pos.
type Edit struct {
	Pos       uint32
	DelLen    uint8
	Insertion string
}

// DiffString is an immutable source string plus an append-only edit
// log. Its content hash is kept current on every edit so states can
// be hashed and compared without materializing the text.
//
// No bounds checks are performed on edits; callers must supply valid
// positions. An out-of-range edit is a bug in the caller, not an
// error condition.
type DiffString struct {
	source *string
	edits  []Edit
	hash   [md5.Size]byte
}

// New creates a diff-string over text with an empty edit log.
func New(text string) DiffString {
	d := DiffString{source: &text}
	d.hash = md5.Sum([]byte(text))
	return d
}

// NewShared creates a diff-string sharing ownership of an existing
// source string.
func NewShared(text *string) DiffString {
	d := DiffString{source: text}
	d.hash = md5.Sum([]byte(*text))
	return d
}

// String reconstructs the current text by applying the edit log in
// recorded order to a fresh copy of the source.
func (d *DiffString) String() string {
	text := []byte(*d.source)
	for _, e := range d.edits {
		out := make([]byte, 0, len(text)-int(e.DelLen)+len(e.Insertion))
		out = append(out, text[:e.Pos]...)
		out = append(out, e.Insertion...)
		out = append(out, text[int(e.Pos)+int(e.DelLen):]...)
		text = out
	}
	return string(text)
}

// Source returns the shared pointer to the original source string.
func (d *DiffString) Source() *string {
	return d.source
}

// LogSize returns the edit log size, so higher layers can decide when
// to compact via Apply.
func (d *DiffString) LogSize() int {
	return len(d.edits)
}

// Hash returns the MD5 digest of the materialized text.
func (d *DiffString) Hash() string {
	return string(d.hash[:])
}

// Equal reports whether both diff-strings materialize to the same
// text.
func (d *DiffString) Equal(other *DiffString) bool {
	if d.hash == other.hash {
		return true
	}
	return d.String() == other.String()
}

// Reset forgets all edits and replaces the source string.
func (d *DiffString) Reset(text string) {
	d.source = &text
	d.edits = nil
	d.hash = md5.Sum([]byte(text))
}

// appendEdit copies the log before appending. Diff-strings are copied
// by value between sibling states, so the backing array must never be
// shared past an append.
func (d *DiffString) appendEdit(e Edit) {
	edits := make([]Edit, len(d.edits), len(d.edits)+1)
	copy(edits, d.edits)
	d.edits = append(edits, e)
}

// Edit appends an edit to the history. This materializes a temporary
// full text to refresh the hash; if the caller already has the edited
// text, EditWithText avoids the extra pass.
func (d *DiffString) Edit(e Edit) {
	d.appendEdit(e)
	d.hash = md5.Sum([]byte(d.String()))
}

// EditWithText appends an edit to the history and refreshes the hash
// from the supplied text, which must equal the materialized result.
func (d *DiffString) EditWithText(e Edit, text string) {
	d.appendEdit(e)
	d.hash = md5.Sum([]byte(text))
}

// Apply materializes all edits into a new source string and clears
// the edit log, trading memory for faster reads.
func (d *DiffString) Apply() {
	text := d.String()
	d.source = &text
	d.edits = nil
}
