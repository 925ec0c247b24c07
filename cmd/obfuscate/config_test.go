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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)

		assert.Equal(t, 500, cfg.StatusUpdateInterval)
		assert.EqualValues(t, 2000, cfg.FreeMemoryLimitMB)
		assert.Equal(t, "gutenberg-e0.7", cfg.GoalModel)
		assert.Equal(t, 40.0, cfg.OperatorCosts.NgramRemoval)
		assert.Equal(t, 3.0, cfg.OperatorCosts.PunctuationMap)
	})

	t.Run("yaml overrides merge over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"status_update_interval: 100\n"+
				"goal_model: pan15-e0.7\n"+
				"operator_costs:\n"+
				"  synonym: 12\n",
		), 0o644))

		cfg, err := loadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 100, cfg.StatusUpdateInterval)
		assert.Equal(t, "pan15-e0.7", cfg.GoalModel)
		assert.Equal(t, 12.0, cfg.OperatorCosts.Synonym)
		// Untouched fields keep their defaults.
		assert.EqualValues(t, 2000, cfg.FreeMemoryLimitMB)
		assert.Equal(t, 30.0, cfg.OperatorCosts.CharacterFlip)
	})

	t.Run("unknown goal model fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("goal_model: unknown\n"), 0o644))

		_, err := loadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := loadConfig("/nonexistent/config.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("status_update_interval: [\n"), 0o644))

		_, err := loadConfig(path)
		assert.Error(t, err)
	})
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	sink, err := newFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.WriteText("first version of the text"))
	require.NoError(t, sink.WriteText("second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data), "each write replaces the whole file")
}

func TestFileSink_UnwritablePath(t *testing.T) {
	_, err := newFileSink("/nonexistent-dir/out.txt")
	assert.Error(t, err)
}
