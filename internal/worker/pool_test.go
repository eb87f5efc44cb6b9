//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/cloudmanic/realtime-client/internal/queue"
	"github.com/cloudmanic/realtime-client/internal/wire"
)

// TestPoolDispatchesDecodedEvents verifies that each decoded event from a
// dequeued frame reaches Dispatch exactly once.
func TestPoolDispatchesDecodedEvents(t *testing.T) {
	q := queue.New(10, nil)
	q.Enqueue([]byte("frame-a"))
	q.Enqueue([]byte("frame-b"))

	var mu sync.Mutex
	var dispatched []string

	decode := func(frame []byte) ([]wire.Event, error) {
		return []wire.Event{string(frame)}, nil
	}
	dispatch := func(event wire.Event, backlog int) {
		mu.Lock()
		dispatched = append(dispatched, event.(string))
		mu.Unlock()
	}

	p := NewPool(q, 2, decode, dispatch, nil)
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(dispatched)
		mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(dispatched) != 2 {
		t.Fatalf("expected 2 dispatched events, got %d", len(dispatched))
	}
}

// TestPoolSurvivesCallbackPanic verifies a panicking callback is recovered
// and does not stop the worker from processing subsequent frames.
func TestPoolSurvivesCallbackPanic(t *testing.T) {
	q := queue.New(10, nil)
	q.Enqueue([]byte("boom"))
	q.Enqueue([]byte("ok"))

	var mu sync.Mutex
	var okSeen bool

	decode := func(frame []byte) ([]wire.Event, error) {
		return []wire.Event{string(frame)}, nil
	}
	dispatch := func(event wire.Event, backlog int) {
		if event.(string) == "boom" {
			panic("callback exploded")
		}
		mu.Lock()
		okSeen = true
		mu.Unlock()
	}

	p := NewPool(q, 1, decode, dispatch, nil)
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		seen := okSeen
		mu.Unlock()
		if seen {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if !okSeen {
		t.Fatal("expected worker to continue processing after a panicking callback")
	}
}
