//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TestReceiverReceivesBinaryFrames verifies the read loop delivers inbound
// binary frames to OnBinary and counts them.
func TestReceiverReceivesBinaryFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade failed: %v", err)
		}
		defer conn.Close()
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0xAA})
	}))
	defer server.Close()

	var mu sync.Mutex
	var received []byte
	got := make(chan struct{})

	r := New(nil, Handlers{
		OnBinary: func(frame []byte) {
			mu.Lock()
			received = append([]byte{}, frame...)
			mu.Unlock()
			close(got)
		},
	})

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	if err := r.Dial(url, nil); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer r.Close()

	go r.Run()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for binary frame")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 || received[0] != 0x01 || received[1] != 0xAA {
		t.Errorf("unexpected frame: %v", received)
	}

	dataCount, _ := r.Stats()
	if dataCount != 1 {
		t.Errorf("expected data message count 1, got %d", dataCount)
	}
}

// TestReceiverOnReadyFiresOnDial verifies OnReady fires once the socket is
// open, matching the socket receiver contract in spec.md §4.1.
func TestReceiverOnReadyFiresOnDial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade failed: %v", err)
		}
		defer conn.Close()
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	ready := make(chan struct{})
	r := New(nil, Handlers{OnReady: func() { close(ready) }})

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	if err := r.Dial(url, nil); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer r.Close()

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("OnReady did not fire")
	}
}

// TestReceiverSendControlWritesBinaryFrame verifies SendControl writes a
// binary frame the server observes.
func TestReceiverSendControlWritesBinaryFrame(t *testing.T) {
	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade failed: %v", err)
		}
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
	}))
	defer server.Close()

	r := New(nil, Handlers{})
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	if err := r.Dial(url, nil); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer r.Close()

	if err := r.SendControl([]byte{0x4A, 0x00, 'A', 'B'}); err != nil {
		t.Fatalf("send control failed: %v", err)
	}

	select {
	case data := <-received:
		if len(data) != 4 || data[0] != 0x4A {
			t.Errorf("unexpected control frame: %v", data)
		}
	case <-time.After(time.Second):
		t.Fatal("server did not receive control frame")
	}
}
