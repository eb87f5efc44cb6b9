//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package queue implements the bounded staging buffer between the socket
// receiver and the worker pool: a non-blocking producer that drops the
// newest frame (never the oldest) on overflow, with a rate-limited warning
// callback (spec.md §4.2).
package queue

import (
	"sync"
	"time"
)

// warnInterval is the minimum gap between successive overflow warnings
// (spec.md §4.2: "rate-limited to 1s").
const warnInterval = 1 * time.Second

// Queue is a bounded FIFO of raw group frames. Enqueue never blocks: once
// the queue is full, the incoming frame is dropped and the queue keeps its
// current contents, matching client.py's on_queue_full / queue.Full handling
// rather than a blocking channel send.
type Queue struct {
	mu       sync.Mutex
	items    [][]byte
	capacity int

	onFull   func()
	lastWarn time.Time

	notEmpty chan struct{}
}

// New creates a Queue with the given capacity (spec.md §4.2; typical
// defaults are config.DefaultQueueSizeEquities / DefaultQueueSizeOptions).
// onFull, if non-nil, is invoked at most once per warnInterval whenever an
// enqueue is dropped.
func New(capacity int, onFull func()) *Queue {
	return &Queue{
		items:    make([][]byte, 0, capacity),
		capacity: capacity,
		onFull:   onFull,
		notEmpty: make(chan struct{}, 1),
	}
}

// Enqueue attempts to add frame to the queue. It returns false if the queue
// was full and the frame was dropped; the existing contents are left
// untouched (drop-newest, not drop-oldest).
func (q *Queue) Enqueue(frame []byte) bool {
	q.mu.Lock()
	if len(q.items) >= q.capacity {
		q.mu.Unlock()
		q.warnFull()
		return false
	}
	q.items = append(q.items, frame)
	q.mu.Unlock()

	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
	return true
}

// warnFull invokes onFull at most once per warnInterval.
func (q *Queue) warnFull() {
	q.mu.Lock()
	due := time.Since(q.lastWarn) >= warnInterval
	if due {
		q.lastWarn = time.Now()
	}
	q.mu.Unlock()

	if due && q.onFull != nil {
		q.onFull()
	}
}

// Dequeue removes and returns the oldest frame, blocking up to timeout for
// one to become available. It returns ok=false on timeout, matching the
// worker pool's documented 1s dequeue-wait-then-recheck-stop pattern
// (spec.md §7).
func (q *Queue) Dequeue(timeout time.Duration) (frame []byte, ok bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			frame = q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return frame, true
		}
		q.mu.Unlock()

		select {
		case <-q.notEmpty:
			continue
		case <-deadline.C:
			return nil, false
		}
	}
}

// Len returns the current queue depth, used as the "backlog" value passed
// alongside each dispatched event (spec.md §4.3).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
