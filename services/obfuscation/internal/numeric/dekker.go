// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package numeric provides floating-point helpers for divergence
// computations: Dekker (1971) compensated summation and log-space
// probability arithmetic.
package numeric

import "math"

// DekkerSum is a double-double accumulator after Dekker (1971).
//
// Summing many small terms of mixed sign with a plain float64
// accumulator visibly drifts; divergence sums over large n-gram
// profiles need the compensated form to stay within [0, 1].
type DekkerSum struct {
	hi float64
	lo float64
}

// Add accumulates x into the sum.
func (d *DekkerSum) Add(x float64) {
	r := d.hi + x
	var s float64
	if math.Abs(d.hi) > math.Abs(x) {
		s = d.hi - r + x + d.lo
	} else {
		s = x - r + d.hi + d.lo
	}
	d.hi = r + s
	d.lo = r - d.hi + s
}

// Sub accumulates -x into the sum.
func (d *DekkerSum) Sub(x float64) {
	d.Add(-x)
}

// Value returns the high word of the accumulated sum.
func (d *DekkerSum) Value() float64 {
	return d.hi
}
