//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cloudmanic/realtime-client/internal/config"
	"github.com/cloudmanic/realtime-client/internal/wire"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TestEquitiesReconnectResubscribes reproduces spec.md §8 scenario 4: after
// a close and reopen, the server observes a fresh JOIN per desired channel
// on the second connection before any further event is dispatched.
func TestEquitiesReconnectResubscribes(t *testing.T) {
	var mu sync.Mutex
	var joinsBySession [][]string
	connectionCount := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test-token"))
	})
	mux.HandleFunc("/socket/websocket", func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		mu.Lock()
		connectionCount++
		session := connectionCount
		joinsBySession = append(joinsBySession, nil)
		mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if len(data) >= 2 && data[0] == 0x4A {
				mu.Lock()
				joinsBySession[session-1] = append(joinsBySession[session-1], string(data[2:]))
				n := len(joinsBySession[session-1])
				mu.Unlock()

				// Force the first session closed once it has resubscribed
				// both channels, so the supervisor must reconnect.
				if session == 1 && n >= 2 {
					return
				}
			}
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := &config.Config{
		APIKey:    "key",
		Provider:  config.ProviderManual,
		IPAddress: strings.TrimPrefix(server.URL, "http://"),
		Channels:  []string{"AAPL", "MSFT"},
	}
	c, err := NewEquitiesClient(cfg, false)
	if err != nil {
		t.Fatalf("NewEquitiesClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	// The supervisor's shortest backoff slot is 10s (spec.md §4.6), so the
	// second connection only appears after that sleep elapses.
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(joinsBySession)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(joinsBySession) < 2 {
		t.Fatalf("expected at least 2 sessions, observed %d", len(joinsBySession))
	}
	for i, joins := range joinsBySession[:2] {
		seen := map[string]bool{}
		for _, ch := range joins {
			seen[ch] = true
		}
		if !seen["AAPL"] || !seen["MSFT"] {
			t.Errorf("session %d: expected JOIN for both channels, got %v", i+1, joins)
		}
	}
}

// TestEquitiesGetStatsReflectsQueueDepth verifies GetStats surfaces the
// staging queue's current depth.
func TestEquitiesGetStatsReflectsQueueDepth(t *testing.T) {
	cfg := &config.Config{APIKey: "key", Provider: config.ProviderManual, IPAddress: "127.0.0.1:0"}
	c, err := NewEquitiesClient(cfg, false)
	if err != nil {
		t.Fatalf("NewEquitiesClient: %v", err)
	}

	c.q.Enqueue([]byte{0x00})
	c.q.Enqueue([]byte{0x00})

	stats := c.GetStats()
	if stats.QueueDepth != 2 {
		t.Errorf("expected queue depth 2, got %d", stats.QueueDepth)
	}
}

// TestEquitiesDispatchRoutesLegacyEventsToSameCallbacks verifies legacy
// trade/quote events reach the same EquitiesTrade/EquitiesQuote callbacks as
// v2 events, widened with zero-valued v2-only fields.
func TestEquitiesDispatchRoutesLegacyEventsToSameCallbacks(t *testing.T) {
	cfg := &config.Config{APIKey: "key", Provider: config.ProviderManual, IPAddress: "127.0.0.1:0"}
	c, err := NewEquitiesClient(cfg, true)
	if err != nil {
		t.Fatalf("NewEquitiesClient: %v", err)
	}

	var gotSymbol string
	var gotBacklog int
	c.OnTrade(func(trade wire.EquitiesTrade, backlog int) {
		gotSymbol = trade.Symbol
		gotBacklog = backlog
	})

	c.dispatch(wire.LegacyEquitiesTrade{Symbol: "AAPL", Price: 301.6, Size: 100, TotalVolume: 1000}, 7)

	if gotSymbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %q", gotSymbol)
	}
	if gotBacklog != 7 {
		t.Errorf("expected backlog 7, got %d", gotBacklog)
	}
}
