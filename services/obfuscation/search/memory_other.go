// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build !linux

package search

import "runtime"

// FreeMemoryKB has no portable equivalent off Linux. Returning the
// maximum value disables the memory guard on other platforms.
func FreeMemoryKB() uint64 {
	return ^uint64(0) / 1024
}

// UsedMemoryKB approximates process memory usage from the Go heap.
func UsedMemoryKB() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Sys / 1024
}
