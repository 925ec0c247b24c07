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

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation"
)

// Config holds the search tuning parameters that can be overridden
// via --config. Zero values fall back to the defaults below.
type Config struct {
	// StatusUpdateInterval publishes progress every n-th node pop.
	StatusUpdateInterval int `yaml:"status_update_interval"`

	// FreeMemoryLimitMB aborts the search when free system memory
	// falls below this floor.
	FreeMemoryLimitMB uint64 `yaml:"free_memory_limit_mb"`

	// MaxOpenSize and KeepOnOverflow control the open-list overflow
	// reclamation.
	MaxOpenSize    int `yaml:"max_open_size"`
	KeepOnOverflow int `yaml:"keep_on_overflow"`

	// GoalModel selects the corpus fit for the goal distance; see
	// obfuscation.GoalModels for the known names.
	GoalModel string `yaml:"goal_model"`

	// Seed seeds the operator RNG for reproducible runs; zero keeps
	// the time seed.
	Seed int64 `yaml:"seed"`

	// IncrementalJSD enables the approximate divergence update.
	IncrementalJSD bool `yaml:"incremental_jsd"`

	// SynonymDictionary and HypernymDictionary point at the
	// tab-separated word dictionaries. An unreadable dictionary
	// disables its operator with a warning.
	SynonymDictionary  string `yaml:"synonym_dictionary"`
	HypernymDictionary string `yaml:"hypernym_dictionary"`

	// OperatorCosts are the per-application costs g charged by each
	// operator.
	OperatorCosts OperatorCosts `yaml:"operator_costs"`
}

// OperatorCosts configures the cost of each edit operator.
type OperatorCosts struct {
	NgramRemoval    float64 `yaml:"ngram_removal"`
	CharacterFlip   float64 `yaml:"character_flip"`
	PunctuationMap  float64 `yaml:"punctuation_map"`
	Synonym         float64 `yaml:"synonym"`
	Hypernym        float64 `yaml:"hypernym"`
	WordReplacement float64 `yaml:"word_replacement"`
	WordRemoval     float64 `yaml:"word_removal"`
}

// defaultConfig returns the built-in tuning defaults.
func defaultConfig() Config {
	return Config{
		StatusUpdateInterval: 500,
		FreeMemoryLimitMB:    2000,
		MaxOpenSize:          40000,
		KeepOnOverflow:       10,
		GoalModel:            "gutenberg-e0.7",
		SynonymDictionary:    "assets/synonym-dictionary.tsv",
		HypernymDictionary:   "assets/hypernym-dictionary.tsv",
		OperatorCosts: OperatorCosts{
			NgramRemoval:    40,
			CharacterFlip:   30,
			PunctuationMap:  3,
			Synonym:         10,
			Hypernym:        6,
			WordReplacement: 4,
			WordRemoval:     2,
		},
	}
}

// loadConfig merges the YAML file at path over the defaults. An empty
// path returns the defaults unchanged.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.GoalModel != "" {
		if _, ok := obfuscation.GoalModels[cfg.GoalModel]; !ok {
			return cfg, fmt.Errorf("unknown goal model %q", cfg.GoalModel)
		}
	}
	return cfg, nil
}
