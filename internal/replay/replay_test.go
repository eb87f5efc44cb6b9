//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package replay

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/cloudmanic/realtime-client/internal/config"
)

// buildTick encodes one capture-file tick: [type][length][payload][time_received].
func buildTick(msgType byte, payload []byte, timeReceived uint64) []byte {
	length := byte(2 + len(payload))
	buf := make([]byte, 0, 2+len(payload)+8)
	buf = append(buf, msgType, length)
	buf = append(buf, payload...)
	trailer := make([]byte, 8)
	binary.LittleEndian.PutUint64(trailer, timeReceived)
	return append(buf, trailer...)
}

func TestResolveSubprovidersPerProvider(t *testing.T) {
	cases := []struct {
		provider config.Provider
		want     []string
	}{
		{config.ProviderRealtime, []string{"IEX"}},
		{config.ProviderDelayedSIP, []string{"UTP", "CTA_A", "CTA_B", "OTC"}},
		{config.ProviderNasdaqBasic, []string{"NASDAQ_BASIC"}},
		{config.ProviderManual, nil},
	}

	for _, c := range cases {
		got := ResolveSubproviders(c.provider)
		if len(got) != len(c.want) {
			t.Errorf("provider %v: expected %v, got %v", c.provider, c.want, got)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("provider %v: expected %v, got %v", c.provider, c.want, got)
			}
		}
	}
}

// TestReadTicksParsesSequentialFrames verifies ReadTicks walks a capture
// file's back-to-back [type][length][payload][time_received] records.
func TestReadTicksParsesSequentialFrames(t *testing.T) {
	var data []byte
	data = append(data, buildTick(0, []byte{0xAA, 0xBB}, 5)...)
	data = append(data, buildTick(1, []byte{0xCC}, 20)...)

	f, err := os.CreateTemp("", "capture-*.bin")
	if err != nil {
		t.Fatalf("creating temp capture: %v", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		t.Fatalf("writing temp capture: %v", err)
	}
	f.Close()

	ticks, err := ReadTicks(f.Name())
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[0].TimeReceived != 5 || ticks[1].TimeReceived != 20 {
		t.Errorf("unexpected time_received values: %v %v", ticks[0].TimeReceived, ticks[1].TimeReceived)
	}
	if string(ticks[0].Payload) != string([]byte{0xAA, 0xBB}) {
		t.Errorf("unexpected payload: %v", ticks[0].Payload)
	}
}

// TestToGroupFrameWrapsSingleTick verifies the re-wrapped frame matches the
// same [count][type][length][payload] layout the live decoder expects.
func TestToGroupFrameWrapsSingleTick(t *testing.T) {
	tick := Tick{Type: 0, Length: 4, Payload: []byte{0xAA, 0xBB}}
	frame := tick.ToGroupFrame()
	want := []byte{0x01, 0x00, 0x04, 0xAA, 0xBB}
	if len(frame) != len(want) {
		t.Fatalf("unexpected frame length: %v", frame)
	}
	for i := range want {
		if frame[i] != want[i] {
			t.Fatalf("unexpected frame bytes: %v", frame)
		}
	}
}

// TestMergeStreamsOrdersByTimeReceived reproduces the documented merge
// scenario: streams [5,20,30] and [10,15,40] merge to [5,10,15,20,30,40].
func TestMergeStreamsOrdersByTimeReceived(t *testing.T) {
	streamA := []Tick{{TimeReceived: 5}, {TimeReceived: 20}, {TimeReceived: 30}}
	streamB := []Tick{{TimeReceived: 10}, {TimeReceived: 15}, {TimeReceived: 40}}

	merged := MergeStreams([][]Tick{streamA, streamB})

	want := []uint64{5, 10, 15, 20, 30, 40}
	if len(merged) != len(want) {
		t.Fatalf("expected %d ticks, got %d", len(want), len(merged))
	}
	for i, w := range want {
		if merged[i].TimeReceived != w {
			t.Fatalf("position %d: expected %d, got %d", i, w, merged[i].TimeReceived)
		}
	}
}

// TestMergeStreamsHandlesEmptyStream verifies an empty stream among the
// inputs doesn't break the merge.
func TestMergeStreamsHandlesEmptyStream(t *testing.T) {
	merged := MergeStreams([][]Tick{nil, {{TimeReceived: 1}}, nil})
	if len(merged) != 1 || merged[0].TimeReceived != 1 {
		t.Fatalf("unexpected merge result: %v", merged)
	}
}

// TestPacerDisabledNeverSleeps verifies that a disabled Pacer returns
// immediately regardless of tick timestamps.
func TestPacerDisabledNeverSleeps(t *testing.T) {
	p := NewPacer(false)
	p.Wait(Tick{TimeReceived: 0})
	p.Wait(Tick{TimeReceived: uint64(1e15)})
}
