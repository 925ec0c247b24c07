// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ngram implements character n-gram profiles over byte
// strings. A profile is an ordered multiset of fixed-order n-grams
// with occurrence counts, supporting incremental updates so that a
// single text edit costs O(edit window) instead of O(text).
package ngram

// Order is the n-gram order used to profile text.
const Order = 3

// Ngram is a fixed-order byte n-gram packed little-endian into an
// unsigned integer, so n-grams are cheap to hash, compare and order.
type Ngram uint32

// FromBytes packs the first Order bytes of buf into an Ngram.
// Newline bytes are normalized to spaces before packing.
//
// No bounds checks are performed; buf must hold at least Order bytes.
func FromBytes(buf []byte) Ngram {
	var g Ngram
	for i := 0; i < Order; i++ {
		b := buf[i]
		if b == '\n' {
			b = ' '
		}
		g |= Ngram(b) << (8 * i)
	}
	return g
}

// Bytes unpacks the n-gram back into its Order characters.
func (g Ngram) Bytes() []byte {
	buf := make([]byte, Order)
	for i := 0; i < Order; i++ {
		buf[i] = byte(g >> (8 * i))
	}
	return buf
}

// String returns the n-gram characters as a string.
func (g Ngram) String() string {
	return string(g.Bytes())
}

// Split emits one n-gram per sliding window over text. The result is
// empty if text is shorter than Order.
func Split(text []byte) []Ngram {
	if len(text) < Order {
		return nil
	}
	grams := make([]Ngram, 0, len(text)-Order+1)
	for i := 0; i+Order <= len(text); i++ {
		grams = append(grams, FromBytes(text[i:i+Order]))
	}
	return grams
}
