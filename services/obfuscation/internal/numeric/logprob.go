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

import "math"

// logAddThreshold is the log-space gap beyond which the smaller
// operand no longer contributes at float64 precision.
var logAddThreshold = math.Log(2.0)*64 + 1.0

// LogAdd returns log(exp(x) + exp(y)) without leaving log space.
func LogAdd(x, y float64) float64 {
	if y > x {
		x, y = y, x
	}
	if x-y > logAddThreshold {
		return x
	}
	return x + math.Log1p(math.Exp(y-x))
}

// LogSub returns log(exp(x) - exp(y)) without leaving log space.
// Requires x > y.
func LogSub(x, y float64) float64 {
	if x <= y {
		panic("numeric: LogSub requires x > y")
	}
	if x-y > logAddThreshold {
		return x
	}
	return x + math.Log1p(-math.Exp(y-x))
}
