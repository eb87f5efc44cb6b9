//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package replay implements the alternate producer that reads captured
// historical ticks instead of a live socket, satisfying the same producer
// contract as internal/transport.Receiver (spec.md §4.7). Grounded on
// original_source/intriniorealtime/replay_client.py: subprovider
// resolution, capture download, and k-way merge by arrival order.
package replay

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cloudmanic/realtime-client/internal/config"
)

// Subprovider names used in capture-file download requests, distinct from
// internal/wire.Subprovider (the wire codec's decoded enum) because these
// map to the provider's download API string values.
type subproviderAPIValue string

const (
	apiIEX          subproviderAPIValue = "iex"
	apiUTP          subproviderAPIValue = "utp_delayed"
	apiCTA_A        subproviderAPIValue = "cta_a_delayed"
	apiCTA_B        subproviderAPIValue = "cta_b_delayed"
	apiOTC          subproviderAPIValue = "otc_delayed"
	apiNasdaqBasic  subproviderAPIValue = "nasdaq_basic"
)

// subproviderValues maps each internal subprovider label (as resolved by
// ResolveSubproviders) to its download API value, matching
// map_subprovider_to_api_value in replay_client.py.
var subproviderValues = map[string]subproviderAPIValue{
	"IEX":          apiIEX,
	"UTP":          apiUTP,
	"CTA_A":        apiCTA_A,
	"CTA_B":        apiCTA_B,
	"OTC":          apiOTC,
	"NASDAQ_BASIC": apiNasdaqBasic,
}

// ResolveSubproviders returns the set of subproviders whose captures must be
// downloaded and merged for a given equities provider, matching
// map_provider_to_subproviders in replay_client.py (spec.md §4.7).
func ResolveSubproviders(provider config.Provider) []string {
	switch provider {
	case config.ProviderRealtime:
		return []string{"IEX"}
	case config.ProviderDelayedSIP:
		return []string{"UTP", "CTA_A", "CTA_B", "OTC"}
	case config.ProviderNasdaqBasic:
		return []string{"NASDAQ_BASIC"}
	default:
		return nil
	}
}

// Downloader resolves and fetches one subprovider's capture file for a given
// replay date, returning the local filesystem path it was written to.
// The provider's HTTPS redirect is treated as an opaque collaborator
// (spec.md §4.7); implementations differ only in how they locate the bytes.
type Downloader interface {
	Download(ctx context.Context, subprovider, replayDate string) (localPath string, err error)
}

// HTTPDownloader is the primary replay backend: it resolves a subprovider's
// capture file via an HTTPS redirect (treated as an opaque collaborator per
// spec.md §4.7) and streams the response body to a temp file, mirroring
// urllib.request.urlretrieve in replay_client.py's get_file.
type HTTPDownloader struct {
	// ResolveURL returns the opaque download URL for a subprovider/date
	// pair. In the Python SDK this indirection is provided by
	// intrinio_sdk.SecurityApi().get_security_replay_file(); callers here
	// supply the equivalent resolver so this package stays free of an SDK
	// dependency it was never given.
	ResolveURL func(subprovider, replayDate string) (string, error)
	HTTPClient *http.Client
}

// NewHTTPDownloader creates an HTTPDownloader with a 30s client timeout.
func NewHTTPDownloader(resolveURL func(subprovider, replayDate string) (string, error)) *HTTPDownloader {
	return &HTTPDownloader{
		ResolveURL: resolveURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Download fetches the subprovider's capture and writes it to a temp file.
func (d *HTTPDownloader) Download(ctx context.Context, subprovider, replayDate string) (string, error) {
	apiValue, ok := subproviderValues[subprovider]
	if !ok {
		return "", fmt.Errorf("replay: unknown subprovider %q", subprovider)
	}

	url, err := d.ResolveURL(string(apiValue), replayDate)
	if err != nil {
		return "", fmt.Errorf("replay: resolving download url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("replay: building request: %w", err)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("replay: downloading capture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("replay: non-200 response (status %d)", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", fmt.Sprintf("replay-%s-%s-*.bin", subprovider, replayDate))
	if err != nil {
		return "", fmt.Errorf("replay: creating temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return "", fmt.Errorf("replay: writing capture to disk: %w", err)
	}

	return tmp.Name(), nil
}

// Tick is one recorded wire message plus its original arrival time, matching
// the capture-file wire format in replay_client.py:
// [type:1][length:1][payload:length-2][time_received:8 LE uint64 ns].
type Tick struct {
	Type         byte
	Length       byte
	Payload      []byte
	TimeReceived uint64
}

// ReadTicks parses every tick in a capture file sequentially.
func ReadTicks(path string) ([]Tick, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: reading capture file: %w", err)
	}

	var ticks []Tick
	offset := 0
	for offset < len(data) {
		if offset+2 > len(data) {
			return ticks, fmt.Errorf("replay: truncated tick header at offset %d", offset)
		}
		msgType := data[offset]
		length := data[offset+1]
		end := offset + int(length)
		if end+8 > len(data) || int(length) < 2 {
			return ticks, fmt.Errorf("replay: truncated tick payload at offset %d", offset)
		}

		payload := data[offset+2 : end]
		timeReceived := binary.LittleEndian.Uint64(data[end : end+8])

		ticks = append(ticks, Tick{
			Type:         msgType,
			Length:       length,
			Payload:      payload,
			TimeReceived: timeReceived,
		})
		offset = end + 8
	}
	return ticks, nil
}

// ToGroupFrame re-wraps a tick as a single-item group frame ready for the
// same decoder the live socket receiver uses: [count=1][type][length][payload].
func (t Tick) ToGroupFrame() []byte {
	frame := make([]byte, 0, 3+len(t.Payload))
	frame = append(frame, 0x01, t.Type, t.Length)
	frame = append(frame, t.Payload...)
	return frame
}

// MergeStreams performs a k-way merge of N per-subprovider tick streams,
// ordered by ascending TimeReceived (spec.md §8 scenario 6). Input streams
// are each assumed to already be sorted by TimeReceived, as a capture file
// naturally is.
func MergeStreams(streams [][]Tick) []Tick {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]Tick, 0, total)

	indices := make([]int, len(streams))
	for {
		minStream := -1
		for i, s := range streams {
			if indices[i] >= len(s) {
				continue
			}
			if minStream == -1 || s[indices[i]].TimeReceived < streams[minStream][indices[minStream]].TimeReceived {
				minStream = i
			}
		}
		if minStream == -1 {
			break
		}
		merged = append(merged, streams[minStream][indices[minStream]])
		indices[minStream]++
	}
	return merged
}

// Pacer optionally reproduces the original inter-tick timing when replaying,
// matching with_simulated_delay in replay_client.py.
type Pacer struct {
	enabled      bool
	start        time.Time
	firstTick    uint64
	haveFirst    bool
}

// NewPacer creates a Pacer. If enabled is false, Wait never sleeps.
func NewPacer(enabled bool) *Pacer {
	return &Pacer{enabled: enabled, start: time.Now()}
}

// Wait blocks until wallclock time has caught up to this tick's original
// offset from the first tick in the merged stream.
func (p *Pacer) Wait(tick Tick) {
	if !p.enabled {
		return
	}
	if !p.haveFirst {
		p.firstTick = tick.TimeReceived
		p.haveFirst = true
		return
	}

	elapsedOriginal := time.Duration(tick.TimeReceived-p.firstTick) * time.Nanosecond
	target := p.start.Add(elapsedOriginal)
	if d := time.Until(target); d > 0 {
		time.Sleep(d)
	}
}
