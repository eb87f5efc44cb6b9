//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package subscription

import "testing"

// TestJoinLeaveNoNetDiff verifies spec.md §8 invariant: a join followed by a
// leave with no intervening change leaves no net diff (Leave after Join
// both produce frames, and the channel is absent from Desired afterward).
func TestJoinLeaveNoNetDiff(t *testing.T) {
	r := New(FamilyEquities, false, false)

	if frame := r.Join("AAPL", 0); frame == nil {
		t.Fatal("expected a JOIN frame for a new channel")
	}
	if frame := r.Leave("AAPL"); frame == nil {
		t.Fatal("expected a LEAVE frame")
	}
	if len(r.Desired()) != 0 {
		t.Fatalf("expected no net diff, got desired=%v", r.Desired())
	}
}

// TestJoinIsIdempotent verifies that joining an already-desired channel
// produces no duplicate frame.
func TestJoinIsIdempotent(t *testing.T) {
	r := New(FamilyEquities, false, false)
	r.Join("AAPL", 0)
	if frame := r.Join("AAPL", 0); frame != nil {
		t.Fatalf("expected nil on duplicate join, got %v", frame)
	}
}

// TestEquitiesJoinFrameFlags verifies the tradesonly flag bit and opcode.
func TestEquitiesJoinFrameFlags(t *testing.T) {
	r := New(FamilyEquities, true, false)
	frame := r.Join("AAPL", 0)
	if frame[0] != opJoin {
		t.Errorf("expected opcode 0x4A, got 0x%X", frame[0])
	}
	if frame[1] != 1 {
		t.Errorf("expected tradesonly flag 1, got %d", frame[1])
	}
}

// TestEquitiesLobbyWireName verifies "lobby" is sent as $FIREHOSE.
func TestEquitiesLobbyWireName(t *testing.T) {
	r := New(FamilyEquities, false, false)
	frame := r.Join("lobby", 0)
	if string(frame[2:]) != "$FIREHOSE" {
		t.Errorf("expected $FIREHOSE, got %q", string(frame[2:]))
	}
}

// TestOptionsLeaveSendsFlags verifies options LEAVE frames carry a flags
// byte, unlike legacy equities LEAVE frames.
func TestOptionsLeaveSendsFlags(t *testing.T) {
	r := New(FamilyOptions, false, false)
	r.Join("$FIREHOSE", 0b0001)
	frame := r.Leave("$FIREHOSE")
	if len(frame) < 2 || frame[0] != opLeave {
		t.Fatalf("expected LEAVE opcode with flags byte, got %v", frame)
	}
}

// TestResyncFramesReplaysFullDesiredSet verifies spec.md §8 scenario 4:
// after reconnect, the registry produces one JOIN per desired channel.
func TestResyncFramesReplaysFullDesiredSet(t *testing.T) {
	r := New(FamilyEquities, false, false)
	r.Join("A", 0)
	r.Join("B", 0)

	frames := r.ResyncFrames(0)
	if len(frames) != 2 {
		t.Fatalf("expected 2 resync frames, got %d", len(frames))
	}
	seen := map[string]bool{}
	for _, f := range frames {
		seen[string(f[2:])] = true
	}
	if !seen["A"] || !seen["B"] {
		t.Errorf("expected resync to include both A and B, got %v", seen)
	}
}
