// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package obfuscation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/ngram"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/search"
)

// Aliases binding the generic search machinery to this domain.
type (
	// SearchStatus is the search progress/abort handle.
	SearchStatus = search.Status[State, *Context]

	// SearchNode wraps a State with A* bookkeeping.
	SearchNode = search.Node[State]

	// Operator is an edit operator over obfuscation states.
	Operator = search.Operator[State, *Context]
)

// Sink receives the current best obfuscated text. Each write replaces
// the previous content so the sink always reflects a single coherent
// state.
type Sink interface {
	WriteText(text string) error
}

// Config configures an Obfuscator.
type Config struct {
	// Logger receives engine diagnostics. Default: logging.Default().
	Logger *logging.Logger

	// Metrics optionally exports search progress; nil disables.
	Metrics *Metrics

	// Goal maps input length to the goal JS-distance. Zero value
	// selects the default corpus model.
	Goal GoalModel

	// Options tune the underlying search. Zero fields fall back to
	// the engine defaults with a 500-pop status interval and a
	// 2000 MB memory floor.
	Options search.Options

	// Progress, when set, is invoked after every status snapshot
	// update, from the driver goroutine.
	Progress func(*SearchStatus)

	// AllowIncrementalJSD enables the approximate divergence update
	// between periodic full recomputations.
	AllowIncrementalJSD bool
}

// Result summarizes a finished obfuscation run.
type Result struct {
	// Text is the best obfuscated text observed.
	Text string

	// JSDistance is the Jensen-Shannon distance of Text against the
	// target profile.
	JSDistance float64

	// GoalDistance is the distance the search was asked to reach.
	GoalDistance float64

	// GoalReached reports whether the search found a goal state, as
	// opposed to running out of frontier, memory, or being aborted.
	GoalReached bool

	// Status is the final search status for callers that want the
	// full breakdown.
	Status *SearchStatus
}

// Obfuscator drives a single obfuscation search at a time.
type Obfuscator struct {
	log      *logging.Logger
	metrics  *Metrics
	goal     GoalModel
	opts     search.Options
	progress func(*SearchStatus)
	costH    *CostH
}

// New creates an Obfuscator from config.
func New(cfg Config) *Obfuscator {
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}

	goal := cfg.Goal
	if goal == (GoalModel{}) {
		goal = GoalGutenbergE07
	}

	opts := cfg.Options
	if opts.StatusUpdateInterval == 0 {
		opts.StatusUpdateInterval = 500
	}
	if opts.FreeMemoryLimitMB == 0 {
		opts.FreeMemoryLimitMB = 2000
	}
	if opts.MaxOpenSize == 0 {
		opts.MaxOpenSize = search.DefaultOptions().MaxOpenSize
	}
	if opts.KeepOnOverflow == 0 {
		opts.KeepOnOverflow = search.DefaultOptions().KeepOnOverflow
	}

	costH := NewCostH(log)
	costH.AllowIncremental = cfg.AllowIncrementalJSD

	return &Obfuscator{
		log:      log,
		metrics:  cfg.Metrics,
		goal:     goal,
		opts:     opts,
		progress: cfg.Progress,
		costH:    costH,
	}
}

// Obfuscate rewrites input until its n-gram profile has diverged from
// the original by the goal distance derived from the input length,
// streaming each improvement to sink. The operator set defines the
// edits the search may apply; flags control input normalization.
//
// The search runs until a goal state is reached, the frontier is
// exhausted, the memory guard trips, or ctx is canceled. The best
// state observed has been written to sink in all cases.
func (o *Obfuscator) Obfuscate(ctx context.Context, input string, sink Sink, target *ngram.Profile, operators []Operator, flags ngram.Flags) (*Result, error) {
	if len(operators) == 0 {
		return nil, errors.New("obfuscation: no operators configured")
	}
	if target.N() == 0 {
		return nil, errors.New("obfuscation: target profile is empty")
	}

	status := search.NewStatus[State, *Context]()
	status.ComputeHash = func(s State) string { return s.Hash() }
	status.ComputeCostH = o.costH.Compute
	status.IsGoalState = GoalCheck
	status.SetOperators(operators)

	searchCtx := NewContext(target)
	inputLen := len(input)
	searchCtx.Meta.OriginalTextLength = &inputLen
	goalDist := o.goal.Distance(inputLen)
	searchCtx.Meta.GoalJSDist = &goalDist

	initialState := NewState()
	if err := initialState.SetText(input, flags); err != nil {
		return nil, err
	}
	status.SetStart(search.NewRootNode(initialState), searchCtx)

	log := o.log.With("run_id", status.RunID)
	log.Info("starting obfuscation search",
		"input_bytes", inputLen,
		"goal_js_distance", goalDist,
		"operators", len(operators),
	)

	// Cancellation is cooperative: flip the abort flag and let the
	// driver notice it at the next loop boundary.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			status.Abort()
		case <-watchDone:
		}
	}()

	bestJSD := 0.0
	var bestNode *SearchNode
	callback := func(st *SearchStatus) {
		node, _ := st.CurrentNodeAndContext()
		if node == nil {
			return
		}
		state := node.State()

		jsd := 0.0
		if state.Meta().JSD != nil {
			jsd = *state.Meta().JSD
		}
		if st.HasGoalState() || jsd > bestJSD {
			if err := sink.WriteText(state.Text().String()); err != nil {
				log.Error("writing obfuscated text", "error", err)
			}
			bestJSD = jsd
			bestNode = node
		}

		o.metrics.Observe(st)
		if o.progress != nil {
			o.progress(st)
		}
	}

	search.Astar(status, callback, o.opts)

	// One final pass so the sink and consumers see the terminal
	// state even when the loop ended between snapshots.
	callback(status)

	// The result is the state last written to sink, or the node current
	// at the end when nothing was written.
	node := bestNode
	if node == nil {
		node, _ = status.CurrentNodeAndContext()
	}
	state := node.State()
	finalJSD := 0.0
	if state.Meta().JSD != nil {
		finalJSD = *state.Meta().JSD
	}

	result := &Result{
		Text:         state.Text().String(),
		JSDistance:   math.Sqrt(2.0 * finalJSD),
		GoalDistance: goalDist,
		GoalReached:  status.HasGoalState(),
		Status:       status,
	}

	if msg := status.ErrorMessage(); msg != "" {
		log.Error("search ended with error", "error", msg)
		return result, fmt.Errorf("obfuscation: search failed: %s", msg)
	}

	log.Info("search finished",
		"goal_reached", result.GoalReached,
		"js_distance", result.JSDistance,
		"goal_checks", status.NumGoalChecks(),
		"aborted_by_memguard", status.AbortedByMemguard(),
		"aborted_by_caller", status.AbortedByCaller(),
		"runtime_ms", status.RuntimeMillis(),
	)
	return result, nil
}
