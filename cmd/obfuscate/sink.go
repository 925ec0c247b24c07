// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
)

// fileSink writes the current best text to a file. Every write
// truncates and rewrites the whole file, so the output always
// reflects one coherent search state.
type fileSink struct {
	path string
}

func newFileSink(path string) (*fileSink, error) {
	// Fail before the search starts if the file is not writable.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	return &fileSink{path: path}, nil
}

// WriteText implements obfuscation.Sink.
func (s *fileSink) WriteText(text string) error {
	return os.WriteFile(s.path, []byte(text), 0o644)
}
