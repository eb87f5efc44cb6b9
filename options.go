//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package realtime

import (
	"context"
	"net/http"
	"sync"

	"github.com/cloudmanic/realtime-client/internal/auth"
	"github.com/cloudmanic/realtime-client/internal/config"
	"github.com/cloudmanic/realtime-client/internal/queue"
	"github.com/cloudmanic/realtime-client/internal/subscription"
	"github.com/cloudmanic/realtime-client/internal/transport"
	"github.com/cloudmanic/realtime-client/internal/wire"
	"github.com/cloudmanic/realtime-client/internal/worker"
)

// Options subscription masks, combined into the JOIN flags byte
// (spec.md §6).
const (
	OptionsMaskTrades  byte = 0b0001
	OptionsMaskQuotes  byte = 0b0010
	OptionsMaskRefresh byte = 0b0100
	OptionsMaskUA      byte = 0b1000
	OptionsMaskAll          = OptionsMaskTrades | OptionsMaskQuotes | OptionsMaskRefresh | OptionsMaskUA
)

// OptionsTradeFunc, OptionsQuoteFunc, OptionsRefreshFunc, and
// OptionsUAFunc receive one decoded event and the queue depth observed at
// dequeue time.
type (
	OptionsTradeFunc   func(trade wire.OptionsTrade, backlog int)
	OptionsQuoteFunc   func(quote wire.OptionsQuote, backlog int)
	OptionsRefreshFunc func(refresh wire.OptionsRefresh, backlog int)
	OptionsUAFunc      func(ua wire.OptionsUnusualActivity, backlog int)
)

// OptionsClient streams options trades, quotes, refresh snapshots, and
// unusual-activity alerts over the fixed-length wire format (spec.md §4.4).
type OptionsClient struct {
	*supervisor

	registry *subscription.Registry
	q        *queue.Queue
	pool     *worker.Pool
	receiver *transport.Receiver
	mask     byte

	handlersMu sync.RWMutex
	onTrade    OptionsTradeFunc
	onQuote    OptionsQuoteFunc
	onRefresh  OptionsRefreshFunc
	onUA       OptionsUAFunc
	onRaw      func(wire.RawMessage, int)

	runWg sync.WaitGroup
}

// NewOptionsClient builds an OptionsClient from cfg. mask is the
// subscription bitmask (OptionsMaskTrades | OptionsMaskQuotes | ...) applied
// to every JOIN sent by this client.
func NewOptionsClient(cfg *config.Config, mask byte) (*OptionsClient, error) {
	sup, err := newSupervisor(cfg)
	if err != nil {
		return nil, err
	}

	c := &OptionsClient{
		supervisor: sup,
		registry:   subscription.New(subscription.FamilyOptions, false, false),
		mask:       mask,
	}

	c.q = queue.New(cfg.QueueSize(config.DefaultQueueSizeOptions), func() {
		sup.logger.Errorf("options: staging queue full, dropping frame")
	})

	decode := func(frame []byte) ([]wire.Event, error) {
		return wire.DecodeOptionsGroup(frame, cfg.BypassParsing)
	}
	c.pool = worker.NewPool(c.q, cfg.Workers(config.DefaultWorkersOptions), decode, c.dispatch, sup.logger)

	for _, ch := range cfg.Channels {
		c.registry.Join(ch, mask)
	}

	return c, nil
}

// OnTrade registers the trade callback.
func (c *OptionsClient) OnTrade(fn OptionsTradeFunc) {
	c.handlersMu.Lock()
	c.onTrade = fn
	c.handlersMu.Unlock()
}

// OnQuote registers the quote callback.
func (c *OptionsClient) OnQuote(fn OptionsQuoteFunc) {
	c.handlersMu.Lock()
	c.onQuote = fn
	c.handlersMu.Unlock()
}

// OnRefresh registers the refresh callback.
func (c *OptionsClient) OnRefresh(fn OptionsRefreshFunc) {
	c.handlersMu.Lock()
	c.onRefresh = fn
	c.handlersMu.Unlock()
}

// OnUnusualActivity registers the unusual-activity callback.
func (c *OptionsClient) OnUnusualActivity(fn OptionsUAFunc) {
	c.handlersMu.Lock()
	c.onUA = fn
	c.handlersMu.Unlock()
}

// OnRaw registers the callback invoked for undecoded messages when
// Config.BypassParsing is set.
func (c *OptionsClient) OnRaw(fn func(wire.RawMessage, int)) {
	c.handlersMu.Lock()
	c.onRaw = fn
	c.handlersMu.Unlock()
}

func (c *OptionsClient) dispatch(event wire.Event, backlog int) {
	c.handlersMu.RLock()
	onTrade, onQuote, onRefresh, onUA, onRaw := c.onTrade, c.onQuote, c.onRefresh, c.onUA, c.onRaw
	c.handlersMu.RUnlock()

	switch e := event.(type) {
	case wire.OptionsTrade:
		if onTrade != nil {
			onTrade(e, backlog)
		}
	case wire.OptionsQuote:
		if onQuote != nil {
			onQuote(e, backlog)
		}
	case wire.OptionsRefresh:
		if onRefresh != nil {
			onRefresh(e, backlog)
		}
	case wire.OptionsUnusualActivity:
		if onUA != nil {
			onUA(e, backlog)
		}
	case wire.RawMessage:
		if onRaw != nil {
			onRaw(e, backlog)
		}
	}
}

// Join adds channel (a symbol, option-chain root, canonical 21-byte
// contract, or "lobby") to the desired subscription set.
func (c *OptionsClient) Join(channel string) {
	frame := c.registry.Join(channel, c.mask)
	if frame != nil && c.State() == StateReady && c.receiver != nil {
		if err := c.receiver.SendControl(frame); err != nil {
			c.logger.Errorf("options: join %q: %v", channel, err)
		}
	}
}

// Leave removes channel from the desired subscription set.
func (c *OptionsClient) Leave(channel string) {
	frame := c.registry.Leave(channel)
	if frame != nil && c.State() == StateReady && c.receiver != nil {
		if err := c.receiver.SendControl(frame); err != nil {
			c.logger.Errorf("options: leave %q: %v", channel, err)
		}
	}
}

// LeaveAll clears every desired channel.
func (c *OptionsClient) LeaveAll() {
	frames := c.registry.LeaveAll()
	if c.State() != StateReady || c.receiver == nil {
		return
	}
	for _, frame := range frames {
		if err := c.receiver.SendControl(frame); err != nil {
			c.logger.Errorf("options: leave_all: %v", err)
		}
	}
}

// GetStats returns the current (data_count, text_count, queue_depth)
// snapshot.
func (c *OptionsClient) GetStats() Stats {
	var dataCount, textCount uint64
	if c.receiver != nil {
		dataCount, textCount = c.receiver.Stats()
	}
	return Stats{DataMsgCount: dataCount, TextMsgCount: textCount, QueueDepth: c.q.Len()}
}

// Start launches the worker pool and the connection supervisor loop.
func (c *OptionsClient) Start(ctx context.Context) {
	c.pool.Start()
	c.runWg.Add(1)
	go c.superviseLoop(ctx)
}

// Stop tears down the client: LEAVE of every channel (best-effort), close
// the socket, drain the worker pool.
func (c *OptionsClient) Stop() {
	c.LeaveAll()
	c.supervisor.Stop()
	if c.receiver != nil {
		c.receiver.Close()
	}
	c.runWg.Wait()
	c.pool.Stop()
}

func (c *OptionsClient) superviseLoop(ctx context.Context) {
	defer c.runWg.Done()

	for !c.stopping() {
		token, err := c.ensureToken()
		if err != nil {
			c.logger.Errorf("options: %v", err)
			if !c.sleepBackoff(ctx) {
				return
			}
			continue
		}

		socketURL, err := c.authClient.SocketURL(token)
		if err != nil {
			c.logger.Errorf("options: %v", err)
			if !c.sleepBackoff(ctx) {
				return
			}
			continue
		}

		c.setState(StateConnecting)

		headers := http.Header{}
		headers.Set("Client-Information", auth.SDKName+auth.SDKVersion)

		c.receiver = transport.New(c.logger, transport.Handlers{
			OnBinary: func(frame []byte) {
				c.q.Enqueue(frame)
			},
		})

		if err := c.receiver.Dial(socketURL, headers); err != nil {
			c.logger.Errorf("options: dial failed: %v", err)
			if !c.sleepBackoff(ctx) {
				return
			}
			continue
		}

		runDone := make(chan struct{})
		go func() {
			c.receiver.Run()
			close(runDone)
		}()

		c.resetBackoff()
		c.setState(StateReady)
		for _, frame := range c.registry.ResyncFrames(c.mask) {
			if err := c.receiver.SendControl(frame); err != nil {
				c.logger.Errorf("options: resubscribe: %v", err)
			}
		}

		select {
		case <-runDone:
		case <-c.stopCh:
			c.receiver.Close()
			<-runDone
		}

		c.setState(StateBackoff)
		if c.stopping() {
			return
		}
		if !c.sleepBackoff(ctx) {
			return
		}
	}
}
