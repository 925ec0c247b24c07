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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	inputFile          string
	outputFile         string
	profileFile        string
	profileSourceFiles []string
	stripPOS           bool
	profileStripPOS    bool
	netspeakURL        string
	configFile         string
	metricsListen      string
	verbose            bool

	rootCmd = &cobra.Command{
		Use:   "obfuscate",
		Short: "Obfuscate the authorial style of a text via heuristic search",
		Long: `Obfuscate rewrites a text with small, semantics-preserving edits
until its character n-gram profile has diverged from the original by a
target Jensen-Shannon distance, hiding the author's stylistic fingerprint
while minimizing the damage inflicted on the text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runObfuscate, // Defined in cmd_obfuscate.go
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&inputFile, "input", "i", "", "Input text file to be obfuscated")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file for the obfuscated text")
	flags.StringVarP(&profileFile, "profile", "p", "", "Target n-gram profile (will be regenerated if --profile-source-files is set)")
	flags.StringSliceVarP(&profileSourceFiles, "profile-source-files", "f", nil, "Source files to generate a target profile from")
	flags.BoolVarP(&stripPOS, "strip-pos", "s", false, "Strip POS tags from input text")
	flags.BoolVar(&profileStripPOS, "profile-strip-pos", false, "Strip POS tags from target files before generating target profile")
	flags.StringVarP(&netspeakURL, "netspeak", "n", "", "Base URL of the phrase-frequency service (enables word operators)")
	flags.StringVar(&configFile, "config", "", "Optional YAML file with search tuning parameters")
	flags.StringVar(&metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	for _, required := range []string{"input", "output", "profile"} {
		if err := rootCmd.MarkFlagRequired(required); err != nil {
			panic(err)
		}
	}
}
