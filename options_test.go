//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package realtime

import (
	"testing"

	"github.com/cloudmanic/realtime-client/internal/config"
	"github.com/cloudmanic/realtime-client/internal/wire"
)

func newTestOptionsClient(t *testing.T) *OptionsClient {
	t.Helper()
	cfg := &config.Config{APIKey: "key", Provider: config.ProviderOPRA}
	c, err := NewOptionsClient(cfg, OptionsMaskAll)
	if err != nil {
		t.Fatalf("NewOptionsClient: %v", err)
	}
	return c
}

// TestOptionsDispatchRoutesEachEventKind verifies every options event type
// reaches its matching callback (spec.md §8 scenario 5 surface: unusual
// activity plus trade/quote/refresh routing).
func TestOptionsDispatchRoutesEachEventKind(t *testing.T) {
	c := newTestOptionsClient(t)

	var gotTrade, gotQuote, gotRefresh bool
	var gotUA wire.UAType

	c.OnTrade(func(wire.OptionsTrade, int) { gotTrade = true })
	c.OnQuote(func(wire.OptionsQuote, int) { gotQuote = true })
	c.OnRefresh(func(wire.OptionsRefresh, int) { gotRefresh = true })
	c.OnUnusualActivity(func(ua wire.OptionsUnusualActivity, backlog int) { gotUA = ua.Type })

	c.dispatch(wire.OptionsTrade{}, 0)
	c.dispatch(wire.OptionsQuote{}, 0)
	c.dispatch(wire.OptionsRefresh{}, 0)
	c.dispatch(wire.OptionsUnusualActivity{Type: wire.UABlock}, 0)

	if !gotTrade || !gotQuote || !gotRefresh {
		t.Fatalf("expected all three callbacks to fire: trade=%v quote=%v refresh=%v", gotTrade, gotQuote, gotRefresh)
	}
	if gotUA != wire.UABlock {
		t.Errorf("expected UABlock, got %v", gotUA)
	}
}

// TestOptionsJoinAppliesConfiguredMask verifies Join always encodes the
// client's configured subscription mask into the JOIN flags byte.
func TestOptionsJoinAppliesConfiguredMask(t *testing.T) {
	cfg := &config.Config{APIKey: "key", Provider: config.ProviderOPRA}
	c, err := NewOptionsClient(cfg, OptionsMaskTrades|OptionsMaskUA)
	if err != nil {
		t.Fatalf("NewOptionsClient: %v", err)
	}

	frame := c.registry.Join("$FIREHOSE", c.mask)
	if frame == nil {
		t.Fatal("expected a JOIN frame")
	}
	if frame[1] != OptionsMaskTrades|OptionsMaskUA {
		t.Errorf("expected flags 0x%X, got 0x%X", OptionsMaskTrades|OptionsMaskUA, frame[1])
	}
}

// TestOptionsGetStatsReflectsQueueDepth verifies GetStats surfaces queue
// depth even before any connection has been established.
func TestOptionsGetStatsReflectsQueueDepth(t *testing.T) {
	c := newTestOptionsClient(t)
	c.q.Enqueue([]byte{0x01})

	stats := c.GetStats()
	if stats.QueueDepth != 1 {
		t.Errorf("expected queue depth 1, got %d", stats.QueueDepth)
	}
}
