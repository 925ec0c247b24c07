// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDekkerSum_CancellationResistance(t *testing.T) {
	// Summing many tiny terms around a large one loses the small
	// contributions entirely with a plain accumulator.
	var sum DekkerSum
	sum.Add(1e16)
	for i := 0; i < 1000; i++ {
		sum.Add(1.0)
	}
	sum.Sub(1e16)

	assert.InDelta(t, 1000.0, sum.Value(), 1e-6)
}

func TestDekkerSum_MixedSigns(t *testing.T) {
	var sum DekkerSum
	for i := 0; i < 10000; i++ {
		sum.Add(0.1)
		sum.Sub(0.1)
	}
	assert.InDelta(t, 0.0, sum.Value(), 1e-12)
}

func TestLogAdd(t *testing.T) {
	t.Run("matches direct computation", func(t *testing.T) {
		x := math.Log(0.25)
		y := math.Log(0.5)
		got := LogAdd(x, y)
		assert.InDelta(t, math.Log(0.75), got, 1e-12)
	})

	t.Run("commutes", func(t *testing.T) {
		x := math.Log(0.001)
		y := math.Log(0.9)
		assert.Equal(t, LogAdd(x, y), LogAdd(y, x))
	})

	t.Run("huge gap returns larger operand", func(t *testing.T) {
		assert.Equal(t, -1.0, LogAdd(-1.0, -500.0))
	})
}

func TestLogSub(t *testing.T) {
	x := math.Log(0.75)
	y := math.Log(0.25)
	assert.InDelta(t, math.Log(0.5), LogSub(x, y), 1e-12)

	assert.Panics(t, func() { LogSub(y, x) })
}
