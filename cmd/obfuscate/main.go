// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command obfuscate rewrites a text until its character n-gram
// profile has diverged from the original author's by a target
// Jensen-Shannon distance, using a cost-guided A* search over
// semantics-preserving edit operators.
//
// Usage:
//
//	obfuscate -i input.txt -o output.txt -p target.profile
//
// Regenerating the target profile from source texts:
//
//	obfuscate -i input.txt -o output.txt -p target.profile \
//	    -f corpus1.txt -f corpus2.txt
//
// The output file is overwritten with the best rewrite found so far
// every time the search improves on it, so it always holds a single
// coherent state even if the run is interrupted.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
