// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package netspeak

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianObfuscate/pkg/logging"
)

func newTestServer(t *testing.T, requests *atomic.Int64, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Search(t *testing.T) {
	var requests atomic.Int64
	server := newTestServer(t, &requests,
		`{"phrases":[{"text":"the quick fox","frequency":120000},{"text":"the slow fox","frequency":80}]}`)

	client := NewClient(server.URL, logging.Discard())

	phrases, err := client.Search(context.Background(), "the ? fox", 5)
	require.NoError(t, err)
	require.Len(t, phrases, 2)

	assert.Equal(t, []string{"the", "quick", "fox"}, phrases[0].Words)
	assert.EqualValues(t, 120000, phrases[0].Frequency)
	assert.Equal(t, []string{"the", "slow", "fox"}, phrases[1].Words)
}

func TestClient_CachesResponses(t *testing.T) {
	var requests atomic.Int64
	server := newTestServer(t, &requests, `{"phrases":[{"text":"a b","frequency":1}]}`)

	client := NewClient(server.URL, logging.Discard())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Search(ctx, "a ?", 5)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, requests.Load(), "repeated queries must hit the cache")

	// A different result limit is a different cache entry.
	_, err := client.Search(ctx, "a ?", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, requests.Load())
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, logging.Discard())
	_, err := client.Search(context.Background(), "a ?", 5)
	assert.Error(t, err)
}

func TestClient_CanceledContext(t *testing.T) {
	var requests atomic.Int64
	server := newTestServer(t, &requests, `{"phrases":[]}`)

	client := NewClient(server.URL, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "a ?", 5)
	assert.Error(t, err)
}
