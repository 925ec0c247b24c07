// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package netspeak provides a client for a phrase-frequency service:
// given a wildcard word query, it returns the most frequent matching
// phrases from a large web corpus. The word replacement and removal
// operators use it to decide which edits keep the text plausible.
package netspeak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/internal/lru"
)

// Phrase is one completion returned for a query.
type Phrase struct {
	// Words are the phrase tokens in order.
	Words []string

	// Frequency is the phrase's corpus occurrence count.
	Frequency int64
}

// PhraseService answers wildcard phrase queries. Implementations must
// be safe for concurrent use; operator applications run in parallel.
type PhraseService interface {
	// Search returns up to maxResults phrases matching query,
	// ordered by descending frequency.
	Search(ctx context.Context, query string, maxResults int) ([]Phrase, error)
}

// Client defaults.
const (
	responseCacheSize = 1000
	requestsPerSecond = 20
	requestBurst      = 5
	requestTimeout    = 10 * time.Second
)

// Client queries a Netspeak-compatible HTTP endpoint. Responses are
// memoized in an LRU cache and outbound requests are rate limited, so
// repeated queries from parallel operator applications neither hammer
// the service nor pay the network round-trip twice.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, []Phrase]
	log     *logging.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		cache:   lru.New[string, []Phrase](responseCacheSize),
		log:     log,
	}
}

// searchResponse is the service's JSON answer.
type searchResponse struct {
	Phrases []struct {
		Text      string `json:"text"`
		Frequency int64  `json:"frequency"`
	} `json:"phrases"`
}

// Search implements PhraseService.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Phrase, error) {
	key := fmt.Sprintf("%d:%s", maxResults, query)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("netspeak: waiting for rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s/search?query=%s&topk=%d", c.baseURL, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("netspeak: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("netspeak: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("netspeak: unexpected status %d for query %q", resp.StatusCode, query)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("netspeak: decoding response: %w", err)
	}

	phrases := make([]Phrase, 0, len(decoded.Phrases))
	for _, p := range decoded.Phrases {
		phrases = append(phrases, Phrase{
			Words:     strings.Fields(p.Text),
			Frequency: p.Frequency,
		})
	}

	c.cache.Set(key, phrases)
	c.log.Debug("phrase query answered", "query", query, "results", len(phrases))
	return phrases, nil
}
