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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
)

func writeDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDictionaryCache_Load(t *testing.T) {
	cache := NewDictionaryCache(logging.Discard())

	t.Run("parses tab-separated entries", func(t *testing.T) {
		path := writeDict(t, "Cat\tfeline\tkitty\ndog\tcanine\nmalformed-line\n")

		dict, err := cache.Load(path)
		require.NoError(t, err)

		alts, ok := dict.Lookup("cat")
		require.True(t, ok, "keys are lowercased during load")
		assert.Equal(t, []string{"feline", "kitty"}, alts)

		alts, ok = dict.Lookup("DOG")
		require.True(t, ok, "lookups are case-insensitive")
		assert.Equal(t, []string{"canine"}, alts)

		_, ok = dict.Lookup("malformed-line")
		assert.False(t, ok, "lines with fewer than two fields are skipped")
	})

	t.Run("memoizes by path", func(t *testing.T) {
		path := writeDict(t, "cat\tfeline\n")

		first, err := cache.Load(path)
		require.NoError(t, err)

		// Rewriting the file must not be observable: the cache keeps
		// the first load.
		require.NoError(t, os.WriteFile(path, []byte("cat\tcanine\n"), 0o644))
		second, err := cache.Load(path)
		require.NoError(t, err)

		alts, _ := second.Lookup("cat")
		assert.Equal(t, []string{"feline"}, alts)
		assert.Equal(t, len(first), len(second))
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := cache.Load("/nonexistent/dict.tsv")
		assert.Error(t, err)
	})
}
