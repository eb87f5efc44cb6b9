//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package subscription implements the channel registry: the authoritative
// set of desired channels, diffed against the set actually joined on the
// live socket, with control-frame builders for both product families
// (spec.md §4.5, §6).
package subscription

import (
	"github.com/cloudmanic/realtime-client/internal/wire"
)

// Family distinguishes the control-frame conventions of the two product
// lines (spec.md §6: JOIN/LEAVE flag semantics differ between them).
type Family int

const (
	FamilyEquities Family = iota
	FamilyOptions
)

const (
	opJoin  = 0x4A
	opLeave = 0x4C
)

// equitiesLobby and optionsFirehose are the wildcard channel names and
// their canonical wire forms (spec.md §4.5).
const (
	equitiesLobby    = "lobby"
	equitiesLobbyWire = "$FIREHOSE"
	optionsFirehose  = "$FIREHOSE"
)

// Registry tracks desired vs. joined channel sets and produces the minimal
// JOIN/LEAVE control-frame sequence needed to reconcile them. Diff
// computation happens under the lock; sends happen outside it (spec.md
// concurrency note), so callers must send the returned frames themselves.
type Registry struct {
	family     Family
	tradesOnly bool
	legacy     bool

	desired map[string]bool
	joined  map[string]bool
}

// New creates an empty Registry for the given product family.
// tradesOnly only affects equities JOIN flags (spec.md §6). legacy marks an
// equities registry as using the legacy wire protocol, which omits the
// flags byte on LEAVE frames (v2 equities and options both send it).
func New(family Family, tradesOnly, legacy bool) *Registry {
	return &Registry{
		family:     family,
		tradesOnly: tradesOnly,
		legacy:     legacy,
		desired:    make(map[string]bool),
		joined:     make(map[string]bool),
	}
}

// Join adds channel to the desired set, returning the JOIN frame to send if
// the channel was not already desired (nil if it was already present — a
// no-op diff per spec.md §4.5).
func (r *Registry) Join(channel string, mask byte) []byte {
	if r.desired[channel] {
		return nil
	}
	r.desired[channel] = true
	return r.joinFrame(channel, mask)
}

// Leave removes channel from the desired set, returning the LEAVE frame to
// send if it was present.
func (r *Registry) Leave(channel string) []byte {
	if !r.desired[channel] {
		return nil
	}
	delete(r.desired, channel)
	return r.leaveFrame(channel)
}

// LeaveAll clears the desired set, returning one LEAVE frame per
// currently-desired channel.
func (r *Registry) LeaveAll() [][]byte {
	frames := make([][]byte, 0, len(r.desired))
	for ch := range r.desired {
		frames = append(frames, r.leaveFrame(ch))
	}
	r.desired = make(map[string]bool)
	return frames
}

// ResyncFrames returns one JOIN frame per desired channel, used to replay
// the full subscription set after a reconnect (spec.md §4.5: "full desired
// set JOIN before any event delivery post-reconnect") and marks every
// desired channel as joined.
func (r *Registry) ResyncFrames(mask byte) [][]byte {
	frames := make([][]byte, 0, len(r.desired))
	r.joined = make(map[string]bool)
	for ch := range r.desired {
		frames = append(frames, r.joinFrame(ch, mask))
		r.joined[ch] = true
	}
	return frames
}

// Desired returns a snapshot of the desired channel set.
func (r *Registry) Desired() []string {
	out := make([]string, 0, len(r.desired))
	for ch := range r.desired {
		out = append(out, ch)
	}
	return out
}

func (r *Registry) wireChannel(channel string) string {
	if r.family == FamilyEquities && channel == equitiesLobby {
		return equitiesLobbyWire
	}
	if r.family == FamilyOptions && channel == "lobby" {
		return optionsFirehose
	}
	if r.family == FamilyOptions {
		// Legacy canonical (21-byte) option contract names are translated
		// to the server's alternate form before sending (spec.md §4.5).
		return toAlternateIfCanonical(channel)
	}
	return channel
}

// toAlternateIfCanonical converts a 21-byte canonical option contract
// identifier to the alternate wire form; any other channel name (including
// $FIREHOSE) passes through unchanged.
func toAlternateIfCanonical(channel string) string {
	if channel == optionsFirehose {
		return channel
	}
	if len(channel) == 21 {
		return wire.OptionsContract(channel).ToAlternate()
	}
	return channel
}

// joinFrame builds a JOIN control frame: [0x4A][flags][channel-bytes].
// Equities flags = 1 if tradesOnly else 0; options flags is the caller-
// supplied subscription mask (spec.md §6).
func (r *Registry) joinFrame(channel string, mask byte) []byte {
	flags := mask
	if r.family == FamilyEquities {
		flags = 0
		if r.tradesOnly {
			flags = 1
		}
	}
	wireName := r.wireChannel(channel)
	frame := make([]byte, 0, 2+len(wireName))
	frame = append(frame, opJoin, flags)
	frame = append(frame, []byte(wireName)...)
	return frame
}

// leaveFrame builds a LEAVE control frame: [0x4C][flags][channel-bytes].
// Options and v2 equities send a flags byte; legacy equities omits flags
// entirely (spec.md §6).
func (r *Registry) leaveFrame(channel string) []byte {
	wireName := r.wireChannel(channel)
	if r.family == FamilyEquities && r.legacy {
		frame := make([]byte, 0, 1+len(wireName))
		frame = append(frame, opLeave)
		frame = append(frame, []byte(wireName)...)
		return frame
	}

	flags := byte(0)
	if r.family == FamilyEquities && r.tradesOnly {
		flags = 1
	}
	frame := make([]byte, 0, 2+len(wireName))
	frame = append(frame, opLeave, flags)
	frame = append(frame, []byte(wireName)...)
	return frame
}
