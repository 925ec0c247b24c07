// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lru

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_Basic(t *testing.T) {
	t.Run("get and set", func(t *testing.T) {
		cache := New[string, int](10)

		cache.Set("a", 1)
		cache.Set("b", 2)

		if val, ok := cache.Get("a"); !ok || val != 1 {
			t.Errorf("expected (1, true), got (%d, %v)", val, ok)
		}
		if val, ok := cache.Get("b"); !ok || val != 2 {
			t.Errorf("expected (2, true), got (%d, %v)", val, ok)
		}
	})

	t.Run("get missing key", func(t *testing.T) {
		cache := New[string, int](10)

		if val, ok := cache.Get("missing"); ok || val != 0 {
			t.Errorf("expected (0, false), got (%d, %v)", val, ok)
		}
	})

	t.Run("update existing key", func(t *testing.T) {
		cache := New[string, int](10)

		cache.Set("a", 1)
		cache.Set("a", 2)

		if val, ok := cache.Get("a"); !ok || val != 2 {
			t.Errorf("expected (2, true), got (%d, %v)", val, ok)
		}
		if cache.Len() != 1 {
			t.Errorf("expected len=1, got %d", cache.Len())
		}
	})

	t.Run("delete", func(t *testing.T) {
		cache := New[string, int](10)

		cache.Set("a", 1)
		if !cache.Delete("a") {
			t.Error("expected delete to return true")
		}
		if _, ok := cache.Get("a"); ok {
			t.Error("expected key to be deleted")
		}
		if cache.Delete("a") {
			t.Error("expected delete of missing key to return false")
		}
	})
}

func TestCache_Eviction(t *testing.T) {
	cache := New[int, int](3)

	cache.Set(1, 1)
	cache.Set(2, 2)
	cache.Set(3, 3)

	// Touch 1 so 2 becomes the eviction candidate.
	cache.Get(1)
	cache.Set(4, 4)

	if _, ok := cache.Get(2); ok {
		t.Error("expected least recently used key 2 to be evicted")
	}
	for _, key := range []int{1, 3, 4} {
		if _, ok := cache.Get(key); !ok {
			t.Errorf("expected key %d to survive eviction", key)
		}
	}
}

func TestCache_Purge(t *testing.T) {
	cache := New[string, int](10)
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Purge()

	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got len=%d", cache.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := New[string, int](64)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d", i%100)
				cache.Set(key, i)
				cache.Get(key)
			}
		}(w)
	}
	wg.Wait()
}
