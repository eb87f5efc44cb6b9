//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package transport wraps the streaming websocket: dialing with the
// provider's upgrade headers, sending control frames, and running the
// read loop that hands inbound frames to the staging queue (spec.md §4.1,
// §4.4, §6). Adapted from internal/ws/client.go's Client, generalized from
// a JSON subscribe/unsubscribe protocol to this spec's binary one.
//
// gorilla/websocket's Conn.ReadMessage already reassembles continuation
// fragments into one complete message before returning it, so the
// "concatenate fragments before decoding" requirement in spec.md §4.4 is
// satisfied by the library itself; Receiver never sees partial frames.
package transport

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/cloudmanic/realtime-client/internal/config"
)

// Handlers are the callbacks a Receiver drives from its read loop. OnBinary
// receives one complete inbound group frame. OnReady/OnNotReady signal the
// supervisor so it can resend the full subscription set and track session
// state (spec.md §4.1 socket receiver contract); Receiver never reconnects
// on its own, it only reports state.
type Handlers struct {
	OnBinary   func(frame []byte)
	OnReady    func()
	OnNotReady func(err error)
}

// Receiver dials and reads a single websocket connection. All writes go
// through a dedicated mutex, matching internal/ws/client.go's sendAction
// locking.
type Receiver struct {
	logger config.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}

	handlers Handlers

	dataMsgCount atomic.Uint64
	textMsgCount atomic.Uint64
}

// New creates a Receiver that will invoke handlers from its read loop.
func New(logger config.Logger, handlers Handlers) *Receiver {
	return &Receiver{
		logger:   logger,
		handlers: handlers,
		done:     make(chan struct{}),
	}
}

// Dial opens the websocket connection at url with the given upgrade
// headers (e.g. Client-Information, UseNewEquitiesFormat: v2 — spec.md §6).
func (r *Receiver) Dial(url string, headers http.Header) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, headers)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", url, err)
	}

	r.mu.Lock()
	r.conn = conn
	r.done = make(chan struct{})
	r.mu.Unlock()

	if r.handlers.OnReady != nil {
		r.handlers.OnReady()
	}
	return nil
}

// SendControl writes a binary control frame (JOIN/LEAVE) to the live
// socket.
func (r *Receiver) SendControl(frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return fmt.Errorf("transport: not connected")
	}
	if err := r.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("transport: write control frame: %w", err)
	}
	return nil
}

// SendText writes a text frame, used only by the legacy equities 20s
// heartbeat (spec.md §4.1).
func (r *Receiver) SendText(payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return fmt.Errorf("transport: not connected")
	}
	if err := r.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		return fmt.Errorf("transport: write heartbeat: %w", err)
	}
	return nil
}

// Run reads frames until the connection closes, the done channel fires, or
// a read error occurs. It never reconnects — the supervisor owns reconnect
// decisions (spec.md §4.1).
func (r *Receiver) Run() error {
	for {
		r.mu.Lock()
		conn := r.conn
		doneCh := r.done
		r.mu.Unlock()

		if conn == nil {
			return fmt.Errorf("transport: Run called before Dial")
		}

		select {
		case <-doneCh:
			return nil
		default:
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-doneCh:
				return nil
			default:
			}
			if r.handlers.OnNotReady != nil {
				r.handlers.OnNotReady(err)
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("transport: read: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			r.dataMsgCount.Add(1)
			if r.handlers.OnBinary != nil {
				r.handlers.OnBinary(data)
			}
		case websocket.TextMessage:
			r.textMsgCount.Add(1)
			if r.logger != nil {
				r.logger.Debugf("transport: received text message: %s", string(data))
			}
		}
	}
}

// Stats returns (data message count, text message count), matching
// get_stats()'s first two fields in the Python clients (spec.md §6).
func (r *Receiver) Stats() (uint64, uint64) {
	return r.dataMsgCount.Load(), r.textMsgCount.Load()
}

// Close signals Run to stop and closes the underlying connection, sending a
// normal-closure frame first when possible.
func (r *Receiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.done:
	default:
		close(r.done)
	}

	if r.handlers.OnNotReady != nil {
		r.handlers.OnNotReady(nil)
	}

	if r.conn == nil {
		return nil
	}

	err := r.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	closeErr := r.conn.Close()
	if err != nil {
		return fmt.Errorf("transport: send close message: %w", err)
	}
	return closeErr
}
