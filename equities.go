//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cloudmanic/realtime-client/internal/auth"
	"github.com/cloudmanic/realtime-client/internal/config"
	"github.com/cloudmanic/realtime-client/internal/queue"
	"github.com/cloudmanic/realtime-client/internal/subscription"
	"github.com/cloudmanic/realtime-client/internal/transport"
	"github.com/cloudmanic/realtime-client/internal/wire"
	"github.com/cloudmanic/realtime-client/internal/worker"
)

// legacyHeartbeatInterval is how often the legacy equities protocol sends an
// empty text frame to keep the connection alive; v2 equities and options
// rely on transport-level ping instead (spec.md §4.6).
const legacyHeartbeatInterval = 20 * time.Second

// EquitiesTradeFunc receives one decoded trade and the queue depth observed
// at dequeue time.
type EquitiesTradeFunc func(trade wire.EquitiesTrade, backlog int)

// EquitiesQuoteFunc receives one decoded quote and the queue depth observed
// at dequeue time.
type EquitiesQuoteFunc func(quote wire.EquitiesQuote, backlog int)

// EquitiesClient streams equities trades and quotes, either the v2 or the
// legacy wire format selected at construction (spec.md §4.4 note: the
// version is fixed at upgrade time, never auto-detected per frame).
type EquitiesClient struct {
	*supervisor

	legacy   bool
	registry *subscription.Registry
	q        *queue.Queue
	pool     *worker.Pool
	receiver *transport.Receiver

	handlersMu sync.RWMutex
	onTrade    EquitiesTradeFunc
	onQuote    EquitiesQuoteFunc
	onRaw      func(wire.RawMessage, int)

	runWg sync.WaitGroup
}

// NewEquitiesClient builds an EquitiesClient from cfg. legacy selects the
// pre-v2 wire format and its text-frame heartbeat.
func NewEquitiesClient(cfg *config.Config, legacy bool) (*EquitiesClient, error) {
	sup, err := newSupervisor(cfg)
	if err != nil {
		return nil, err
	}

	c := &EquitiesClient{
		supervisor: sup,
		legacy:     legacy,
		registry:   subscription.New(subscription.FamilyEquities, cfg.TradesOnly, legacy),
	}

	c.q = queue.New(cfg.QueueSize(config.DefaultQueueSizeEquities), func() {
		sup.logger.Errorf("equities: staging queue full, dropping frame")
	})

	decode := func(frame []byte) ([]wire.Event, error) {
		if legacy {
			return wire.DecodeLegacyEquitiesGroup(frame, cfg.BypassParsing)
		}
		return wire.DecodeEquitiesV2Group(frame, cfg.BypassParsing)
	}
	c.pool = worker.NewPool(c.q, cfg.Workers(config.DefaultWorkersEquities), decode, c.dispatch, sup.logger)

	for _, ch := range cfg.Channels {
		c.registry.Join(ch, 0)
	}

	return c, nil
}

// OnTrade registers the trade callback.
func (c *EquitiesClient) OnTrade(fn EquitiesTradeFunc) {
	c.handlersMu.Lock()
	c.onTrade = fn
	c.handlersMu.Unlock()
}

// OnQuote registers the quote callback.
func (c *EquitiesClient) OnQuote(fn EquitiesQuoteFunc) {
	c.handlersMu.Lock()
	c.onQuote = fn
	c.handlersMu.Unlock()
}

// OnRaw registers the callback invoked for undecoded messages when
// Config.BypassParsing is set (spec.md §4.1 bypass mode).
func (c *EquitiesClient) OnRaw(fn func(wire.RawMessage, int)) {
	c.handlersMu.Lock()
	c.onRaw = fn
	c.handlersMu.Unlock()
}

// dispatch routes one decoded event to the registered callback, matching on
// whichever concrete wire type the configured decoder produced.
func (c *EquitiesClient) dispatch(event wire.Event, backlog int) {
	c.handlersMu.RLock()
	onTrade, onQuote, onRaw := c.onTrade, c.onQuote, c.onRaw
	c.handlersMu.RUnlock()

	switch e := event.(type) {
	case wire.EquitiesTrade:
		if onTrade != nil {
			onTrade(e, backlog)
		}
	case wire.EquitiesQuote:
		if onQuote != nil {
			onQuote(e, backlog)
		}
	case wire.LegacyEquitiesTrade:
		if onTrade != nil {
			onTrade(wire.EquitiesTrade{
				Symbol:      e.Symbol,
				Price:       e.Price,
				Size:        e.Size,
				TotalVolume: e.TotalVolume,
				Timestamp:   e.Timestamp,
			}, backlog)
		}
	case wire.LegacyEquitiesQuote:
		if onQuote != nil {
			onQuote(wire.EquitiesQuote{
				Symbol:    e.Symbol,
				Type:      e.Type,
				Price:     e.Price,
				Size:      e.Size,
				Timestamp: e.Timestamp,
			}, backlog)
		}
	case wire.RawMessage:
		if onRaw != nil {
			onRaw(e, backlog)
		}
	}
}

// Join adds channel to the desired subscription set, sending a JOIN frame
// immediately if the socket is ready.
func (c *EquitiesClient) Join(channel string) {
	frame := c.registry.Join(channel, 0)
	if frame != nil && c.State() == StateReady && c.receiver != nil {
		if err := c.receiver.SendControl(frame); err != nil {
			c.logger.Errorf("equities: join %q: %v", channel, err)
		}
	}
}

// Leave removes channel from the desired subscription set.
func (c *EquitiesClient) Leave(channel string) {
	frame := c.registry.Leave(channel)
	if frame != nil && c.State() == StateReady && c.receiver != nil {
		if err := c.receiver.SendControl(frame); err != nil {
			c.logger.Errorf("equities: leave %q: %v", channel, err)
		}
	}
}

// LeaveAll clears every desired channel.
func (c *EquitiesClient) LeaveAll() {
	frames := c.registry.LeaveAll()
	if c.State() != StateReady || c.receiver == nil {
		return
	}
	for _, frame := range frames {
		if err := c.receiver.SendControl(frame); err != nil {
			c.logger.Errorf("equities: leave_all: %v", err)
		}
	}
}

// GetStats returns the current (data_count, text_count, queue_depth)
// snapshot (spec.md §6).
func (c *EquitiesClient) GetStats() Stats {
	var dataCount, textCount uint64
	if c.receiver != nil {
		dataCount, textCount = c.receiver.Stats()
	}
	return Stats{DataMsgCount: dataCount, TextMsgCount: textCount, QueueDepth: c.q.Len()}
}

// Start launches the worker pool and the connection supervisor loop in the
// background and returns immediately; the first connection attempt runs
// in that background loop.
// Stop tears everything down.
func (c *EquitiesClient) Start(ctx context.Context) {
	c.pool.Start()
	c.runWg.Add(1)
	go c.superviseLoop(ctx)
}

// Stop tears down the client: LEAVE of every channel (best-effort), close
// the socket, drain the worker pool, per spec.md §4.6 shutdown ordering.
func (c *EquitiesClient) Stop() {
	c.LeaveAll()
	c.supervisor.Stop()
	if c.receiver != nil {
		c.receiver.Close()
	}
	c.runWg.Wait()
	c.pool.Stop()
}

func (c *EquitiesClient) superviseLoop(ctx context.Context) {
	defer c.runWg.Done()

	for !c.stopping() {
		token, err := c.ensureToken()
		if err != nil {
			c.logger.Errorf("equities: %v", err)
			if !c.sleepBackoff(ctx) {
				return
			}
			continue
		}

		socketURL, err := c.authClient.SocketURL(token)
		if err != nil {
			c.logger.Errorf("equities: %v", err)
			if !c.sleepBackoff(ctx) {
				return
			}
			continue
		}

		c.setState(StateConnecting)

		headers := http.Header{}
		headers.Set("Client-Information", auth.SDKName+auth.SDKVersion)
		if !c.legacy {
			headers.Set("UseNewEquitiesFormat", "v2")
		}

		c.receiver = transport.New(c.logger, transport.Handlers{
			OnBinary: func(frame []byte) {
				c.q.Enqueue(frame)
			},
		})

		if err := c.receiver.Dial(socketURL, headers); err != nil {
			c.logger.Errorf("equities: dial failed: %v", err)
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
		for _, frame := range c.registry.ResyncFrames(0) {
			if err := c.receiver.SendControl(frame); err != nil {
				c.logger.Errorf("equities: resubscribe: %v", err)
			}
		}

		var heartbeatStop chan struct{}
		if c.legacy {
			heartbeatStop = make(chan struct{})
			go c.runHeartbeat(heartbeatStop)
		}

		select {
		case <-runDone:
		case <-c.stopCh:
			c.receiver.Close()
			<-runDone
		}
		if heartbeatStop != nil {
			close(heartbeatStop)
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

// runHeartbeat sends an empty text frame every 20s while the legacy socket
// is ready, matching the legacy keepalive in spec.md §4.6.
func (c *EquitiesClient) runHeartbeat(stop chan struct{}) {
	ticker := time.NewTicker(legacyHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.State() != StateReady {
				continue
			}
			if err := c.receiver.SendText(""); err != nil {
				c.logger.Errorf("equities: heartbeat: %v", err)
			}
		case <-stop:
			return
		}
	}
}
