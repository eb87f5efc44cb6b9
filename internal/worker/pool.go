//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package worker implements the dequeue-decode-dispatch pool that sits
// between the staging queue and user callbacks (spec.md §4.3). Modeled on
// EquitiesQuoteHandler.run()/parse_message in
// original_source/intriniorealtime/equities_client.py: each worker dequeues
// one group frame, decodes every message in it, and dispatches to callbacks,
// catching and suppressing any callback failure so one bad callback can
// never take down a worker.
package worker

import (
	"sync"
	"time"

	"github.com/cloudmanic/realtime-client/internal/config"
	"github.com/cloudmanic/realtime-client/internal/queue"
	"github.com/cloudmanic/realtime-client/internal/wire"
)

// dequeueTimeout bounds how long a worker waits on an empty queue before
// re-checking the stop signal (spec.md §7: "workers check it each dequeue
// and exit on timeout of the dequeue wait (1s)").
const dequeueTimeout = 1 * time.Second

// Decoder decodes one raw group frame into zero or more events. Callers
// supply wire.DecodeEquitiesV2Group, wire.DecodeLegacyEquitiesGroup, or
// wire.DecodeOptionsGroup bound to the configured bypass-parsing mode.
type Decoder func(frame []byte) ([]wire.Event, error)

// Dispatch delivers one decoded event along with the queue depth observed
// at dequeue time ("backlog"), matching the second argument to on_trade/
// on_quote in the Python clients (spec.md §4.3).
type Dispatch func(event wire.Event, backlog int)

// Pool runs a fixed number of worker goroutines pulling from a single
// queue.Queue.
type Pool struct {
	q        *queue.Queue
	decode   Decoder
	dispatch Dispatch
	logger   config.Logger

	workers int
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewPool creates a Pool of the given size. workers below 1 is treated as 1.
func NewPool(q *queue.Queue, workers int, decode Decoder, dispatch Dispatch, logger config.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		q:        q,
		decode:   decode,
		dispatch: dispatch,
		logger:   logger,
		workers:  workers,
		stop:     make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// Stop signals every worker to exit after its current dequeue wait and
// blocks until they have all returned.
func (p *Pool) Stop() {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		frame, ok := p.q.Dequeue(dequeueTimeout)
		if !ok {
			continue
		}

		backlog := p.q.Len()
		events, err := p.decode(frame)
		if err != nil {
			if p.logger != nil {
				p.logger.Errorf("worker: decode error: %v", err)
			}
			continue
		}

		for _, event := range events {
			p.safeDispatch(event, backlog)
		}
	}
}

// safeDispatch invokes p.dispatch, recovering and logging any panic so a
// failing user callback never crashes a worker or the process (spec.md
// §4.3: "callback panics/errors are caught, logged, suppressed").
func (p *Pool) safeDispatch(event wire.Event, backlog int) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Errorf("worker: callback panic recovered: %v", r)
			}
		}
	}()
	p.dispatch(event, backlog)
}
