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
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
)

// Dictionary maps a lowercased word to its alternatives.
type Dictionary map[string][]string

// Lookup returns the alternatives for word, matching
// case-insensitively.
func (d Dictionary) Lookup(word string) ([]string, bool) {
	alts, ok := d[strings.ToLower(word)]
	return alts, ok
}

// DictionaryCache loads and memoizes word dictionaries by file path,
// so several operators referencing the same file share one instance.
// Safe for concurrent use.
type DictionaryCache struct {
	log   *logging.Logger
	mu    sync.Mutex
	dicts map[string]Dictionary
}

// NewDictionaryCache creates an empty cache.
func NewDictionaryCache(log *logging.Logger) *DictionaryCache {
	return &DictionaryCache{
		log:   log,
		dicts: make(map[string]Dictionary),
	}
}

// Load returns the dictionary stored in the given tab-separated file:
// one entry per line, key first, alternatives after. Keys are
// lowercased during load; lines with fewer than two fields are
// skipped. Repeated calls with the same path return the same
// instance.
func (c *DictionaryCache) Load(path string) (Dictionary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dict, ok := c.dicts[path]; ok {
		return dict, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("operators: loading dictionary: %w", err)
	}
	defer f.Close()

	dict := make(Dictionary)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		dict[strings.ToLower(fields[0])] = fields[1:]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("operators: reading dictionary: %w", err)
	}

	c.log.Info("dictionary loaded", "path", path, "entries", len(dict))
	c.dicts[path] = dict
	return dict, nil
}
