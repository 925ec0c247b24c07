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
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/netspeak"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/operators"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/search"
)

func runObfuscate(cmd *cobra.Command, args []string) error {
	if profileStripPOS && len(profileSourceFiles) == 0 {
		return errors.New("--profile-strip-pos requires --profile-source-files to be set")
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	log := logging.New(logging.Config{Level: level, Service: "obfuscate"})

	input, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	sink, err := newFileSink(outputFile)
	if err != nil {
		return err
	}

	target, err := resolveTargetProfile(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ops, err := buildOperators(ctx, cfg, log)
	if err != nil {
		return err
	}

	var metrics *obfuscation.Metrics
	if metricsListen != "" {
		registry := prometheus.NewRegistry()
		metrics = obfuscation.NewMetrics(registry)
		go serveMetrics(metricsListen, registry, log)
	}

	var progress func(*obfuscation.SearchStatus)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		progress = printProgress
	}

	obfuscator := obfuscation.New(obfuscation.Config{
		Logger:  log,
		Metrics: metrics,
		Goal:    obfuscation.GoalModels[cfg.GoalModel],
		Options: search.Options{
			StatusUpdateInterval: cfg.StatusUpdateInterval,
			FreeMemoryLimitMB:    cfg.FreeMemoryLimitMB,
			MaxOpenSize:          cfg.MaxOpenSize,
			KeepOnOverflow:       cfg.KeepOnOverflow,
		},
		Progress:            progress,
		AllowIncrementalJSD: cfg.IncrementalJSD,
	})

	flags := ngram.Flags(0)
	if stripPOS {
		flags |= ngram.StripPOSAnnotations
	}

	result, err := obfuscator.Obfuscate(ctx, string(input), sink, target, ops, flags)
	if err != nil {
		return err
	}

	printSummary(result)
	return nil
}

// resolveTargetProfile loads the target profile from --profile, or
// regenerates it from --profile-source-files and saves it back.
func resolveTargetProfile(log *logging.Logger) (*ngram.Profile, error) {
	target := ngram.NewProfile()

	if len(profileSourceFiles) > 0 {
		log.Info("generating target profile", "sources", len(profileSourceFiles))
		flags := ngram.Flags(0)
		if profileStripPOS {
			flags |= ngram.StripPOSAnnotations
		}
		if err := target.GenerateFromFiles(profileSourceFiles, flags); err != nil {
			return nil, fmt.Errorf("generating target profile: %w", err)
		}
		if err := target.SaveFile(profileFile); err != nil {
			return nil, fmt.Errorf("saving target profile: %w", err)
		}
		return target, nil
	}

	log.Info("loading target profile", "path", profileFile)
	if err := target.LoadFile(profileFile); err != nil {
		return nil, fmt.Errorf("loading target profile: %w", err)
	}
	return target, nil
}

// buildOperators assembles the operator set. Dictionary operators are
// skipped with a warning if their dictionary cannot be read; the word
// operators are only enabled when a phrase service is configured.
func buildOperators(ctx context.Context, cfg Config, log *logging.Logger) ([]obfuscation.Operator, error) {
	var phrases netspeak.PhraseService
	if netspeakURL != "" {
		phrases = netspeak.NewClient(netspeakURL, log)
	}

	tk := operators.NewToolkit(operators.ToolkitConfig{
		Logger:  log,
		Seed:    cfg.Seed,
		Phrases: phrases,
		Context: ctx,
	})

	ops := []obfuscation.Operator{
		operators.NewNgramRemoval(tk, cfg.OperatorCosts.NgramRemoval),
		operators.NewCharacterFlip(tk, cfg.OperatorCosts.CharacterFlip),
		operators.NewPunctuationMap(tk, cfg.OperatorCosts.PunctuationMap),
	}

	if synonyms, err := operators.NewContextlessSynonym(tk, cfg.OperatorCosts.Synonym, cfg.SynonymDictionary); err != nil {
		log.Warn("synonym operator disabled", "error", err)
	} else {
		ops = append(ops, synonyms)
	}
	if hypernyms, err := operators.NewContextlessHypernym(tk, cfg.OperatorCosts.Hypernym, cfg.HypernymDictionary); err != nil {
		log.Warn("hypernym operator disabled", "error", err)
	} else {
		ops = append(ops, hypernyms)
	}

	if phrases != nil {
		ops = append(ops,
			operators.NewWordReplacement(tk, cfg.OperatorCosts.WordReplacement),
			operators.NewWordRemoval(tk, cfg.OperatorCosts.WordRemoval),
		)
	}
	return ops, nil
}

func serveMetrics(addr string, registry *prometheus.Registry, log *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server failed", "error", err)
	}
}

// printProgress streams a compact status block to stderr on every
// snapshot update.
func printProgress(status *obfuscation.SearchStatus) {
	node, ctx := status.CurrentNodeAndContext()
	if node == nil || ctx == nil {
		return
	}
	state := node.State()

	jsd := 0.0
	if state.Meta().JSD != nil {
		jsd = *state.Meta().JSD
	}
	goal := 0.0
	if ctx.Meta.GoalJSDist != nil {
		goal = *ctx.Meta.GoalJSDist
	}

	runtime := status.RuntimeMillis()
	var closedPerSec float64
	if runtime > 0 {
		closedPerSec = 1000.0 * float64(status.SizeOfClosed()) / float64(runtime)
	}

	fmt.Fprintf(os.Stderr,
		"Used Memory: %d MiB | Open: %d | Closed: %d | Closed/s: %.1f | Depth: %d\n"+
			"h(x): %.5f | g(x): %.5f | f(x): %.5f\n"+
			"JSDist: %.5f / %.5f (goal) | Runtime: %ds\n\n",
		status.UsedMemoryKB()/1024,
		status.SizeOfOpen(), status.SizeOfClosed(), closedPerSec, node.Depth(),
		node.CostH(), node.CostG(), node.CostF(),
		math.Sqrt(2.0*jsd), goal, runtime/1000,
	)
}

// printSummary renders the final search outcome and the per-operator
// statistics table.
func printSummary(result *obfuscation.Result) {
	status := result.Status

	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.AppendHeader(table.Row{"Operator", "Cost", "Applications", "States", "Runtime"})
	for i, op := range status.Operators {
		stats := status.OperatorStats[i].Snapshot()
		t.AppendRow(table.Row{
			op.Name(),
			op.Cost(),
			stats.NumApplications,
			stats.NumGeneratedStates,
			fmt.Sprintf("%.2fs", float64(stats.RuntimeMicros)/1e6),
		})
	}
	t.AppendFooter(table.Row{
		"", "",
		status.NumOperatorApplications(),
		status.NumGeneratedStates(),
		fmt.Sprintf("%.2fs", float64(status.RuntimeMillis())/1e3),
	})
	t.Render()

	outcome := "goal reached"
	switch {
	case status.AbortedByMemguard():
		outcome = "aborted by memory guard"
	case status.AbortedByCaller():
		outcome = "aborted"
	case !result.GoalReached:
		outcome = "frontier exhausted"
	}
	fmt.Fprintf(os.Stderr, "%s: JS-distance %.4f of %.4f (goal), %d goal checks\n",
		outcome, result.JSDistance, result.GoalDistance, status.NumGoalChecks())
}
