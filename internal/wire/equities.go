//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Subprovider identifies the originating exchange feed within a composite
// equities provider (spec.md GLOSSARY).
type Subprovider uint8

const (
	NoSubprovider Subprovider = 0
	SubCTA_A      Subprovider = 1
	SubCTA_B      Subprovider = 2
	SubUTP        Subprovider = 3
	SubOTC        Subprovider = 4
	SubNasdaqBasic Subprovider = 5
	SubIEX        Subprovider = 6
	SubCBOEOne    Subprovider = 7
)

func (s Subprovider) String() string {
	switch s {
	case NoSubprovider:
		return "NO_SUBPROVIDER"
	case SubCTA_A:
		return "CTA_A"
	case SubCTA_B:
		return "CTA_B"
	case SubUTP:
		return "UTP"
	case SubOTC:
		return "OTC"
	case SubNasdaqBasic:
		return "NASDAQ_BASIC"
	case SubIEX:
		return "IEX"
	case SubCBOEOne:
		return "CBOE_ONE"
	}
	return "unknown"
}

// subproviderFromCode maps a wire subprovider byte to its enum value,
// defaulting to IEX for any code outside 0..7. The source explicitly
// defaults unknown codes to IEX "for backward behavior consistency" and
// that must never be silently changed to NO_SUBPROVIDER (spec.md §9).
func subproviderFromCode(code byte) Subprovider {
	switch code {
	case 0:
		return NoSubprovider
	case 1:
		return SubCTA_A
	case 2:
		return SubCTA_B
	case 3:
		return SubUTP
	case 4:
		return SubOTC
	case 5:
		return SubNasdaqBasic
	case 6:
		return SubIEX
	case 7:
		return SubCBOEOne
	default:
		return SubIEX
	}
}

// EquitiesQuote is a single v2 equities ask or bid event.
type EquitiesQuote struct {
	Symbol       string
	Type         string // "ask" or "bid"
	Price        float32
	Size         uint32
	Timestamp    uint64 // nanoseconds since epoch
	Subprovider  Subprovider
	MarketCenter rune
	Condition    string
}

// EquitiesTrade is a single v2 equities trade event.
type EquitiesTrade struct {
	Symbol       string
	Price        float32
	Size         uint32
	TotalVolume  uint32
	Timestamp    uint64
	Subprovider  Subprovider
	MarketCenter rune
	Condition    string
}

// IsDarkpool classifies a trade as darkpool-origin based on subprovider and
// market center, matching EquitiesTrade.is_darkpool() in
// original_source/intriniorealtime/equities_client.py. This is a
// supplemented feature not present in the distilled spec.
func (t EquitiesTrade) IsDarkpool() bool {
	switch t.Subprovider {
	case SubCTA_A, SubCTA_B, SubOTC, SubUTP:
		return t.MarketCenter == 0 || t.MarketCenter == 'D' || t.MarketCenter == 'E'
	case SubNasdaqBasic:
		return t.MarketCenter == 0 || t.MarketCenter == 'L' || t.MarketCenter == '2'
	default:
		return false
	}
}

// parseEquityQuoteV2 decodes a single v2 equities quote message starting at
// start within buf, per spec.md's equities v2 frame layout. S is the symbol
// length at buf[start+2]. limit is the message's own declared end
// (start+message_length from the group header); every field offset is
// bound-checked against limit, not len(buf), so a message whose declared
// length understates its true field width aborts instead of reading into
// the next message's bytes (spec.md:64).
func parseEquityQuoteV2(buf []byte, start, limit int) (EquitiesQuote, error) {
	symLen := int(buf[start+2])
	end := start + 23 + symLen
	if end > limit {
		return EquitiesQuote{}, fmt.Errorf("wire: equities quote overruns declared message length at offset %d", start)
	}

	symbol := string(buf[start+3 : start+3+symLen])
	quoteType := "bid"
	if buf[start] == 1 {
		quoteType = "ask"
	}

	price := float32FromBits(buf[start+6+symLen : start+10+symLen])
	size := binary.LittleEndian.Uint32(buf[start+10+symLen : start+14+symLen])
	timestamp := binary.LittleEndian.Uint64(buf[start+14+symLen : start+22+symLen])

	subprovider := subproviderFromCode(buf[start+3+symLen])
	marketCenter := rune(binary.LittleEndian.Uint16(buf[start+4+symLen : start+6+symLen]))

	condLen := int(buf[start+22+symLen])
	condition := ""
	if condLen > 0 {
		condEnd := start + 23 + symLen + condLen
		if condEnd > limit {
			return EquitiesQuote{}, fmt.Errorf("wire: equities quote condition overruns declared message length at offset %d", start)
		}
		condition = string(buf[start+23+symLen : condEnd])
	}

	return EquitiesQuote{
		Symbol:       symbol,
		Type:         quoteType,
		Price:        price,
		Size:         size,
		Timestamp:    timestamp,
		Subprovider:  subprovider,
		MarketCenter: marketCenter,
		Condition:    condition,
	}, nil
}

// parseEquityTradeV2 decodes a single v2 equities trade message starting at
// start within buf. limit is the message's own declared end, see
// parseEquityQuoteV2.
func parseEquityTradeV2(buf []byte, start, limit int) (EquitiesTrade, error) {
	symLen := int(buf[start+2])
	end := start + 27 + symLen
	if end > limit {
		return EquitiesTrade{}, fmt.Errorf("wire: equities trade overruns declared message length at offset %d", start)
	}

	symbol := string(buf[start+3 : start+3+symLen])

	price := float32FromBits(buf[start+6+symLen : start+10+symLen])
	size := binary.LittleEndian.Uint32(buf[start+10+symLen : start+14+symLen])
	timestamp := binary.LittleEndian.Uint64(buf[start+14+symLen : start+22+symLen])
	totalVolume := binary.LittleEndian.Uint32(buf[start+22+symLen : start+26+symLen])

	subprovider := subproviderFromCode(buf[start+3+symLen])
	marketCenter := rune(binary.LittleEndian.Uint16(buf[start+4+symLen : start+6+symLen]))

	condLen := int(buf[start+26+symLen])
	condition := ""
	if condLen > 0 {
		condEnd := start + 27 + symLen + condLen
		if condEnd > limit {
			return EquitiesTrade{}, fmt.Errorf("wire: equities trade condition overruns declared message length at offset %d", start)
		}
		condition = string(buf[start+27+symLen : condEnd])
	}

	return EquitiesTrade{
		Symbol:      symbol,
		Price:       price,
		Size:        size,
		TotalVolume: totalVolume,
		Timestamp:   timestamp,
		Subprovider: subprovider,
		MarketCenter: marketCenter,
		Condition:   condition,
	}, nil
}

// float32FromBits decodes a little-endian IEEE-754 float32 from a 4-byte
// slice.
func float32FromBits(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// LegacyEquitiesQuote is a quote event in the pre-v2 fixed-width wire
// format: no market_center, condition, or subprovider fields (spec.md §4.4
// legacy-equities note).
type LegacyEquitiesQuote struct {
	Symbol    string
	Type      string
	Price     float32
	Size      uint32
	Timestamp uint64
}

// LegacyEquitiesTrade is a trade event in the pre-v2 fixed-width wire
// format.
type LegacyEquitiesTrade struct {
	Symbol      string
	Price       float32
	Size        uint32
	TotalVolume uint32
	Timestamp   uint64
}

// legacyQuoteFixedSize and legacyTradeFixedSize are the byte lengths of a
// legacy message excluding its symbol (spec.md §4.4): legacy frames carry no
// message_length byte, so each message advances by this fixed size plus its
// own symbol length.
const (
	legacyQuoteFixedSize = 18
	legacyTradeFixedSize = 22
)

// parseLegacyEquityQuote decodes a single legacy-format quote message
// starting at start within buf. Legacy carries no message_length byte: byte0
// is the type, byte1 is the symbol length, and the symbol begins at byte2.
func parseLegacyEquityQuote(buf []byte, start int) (LegacyEquitiesQuote, error) {
	if start+2 > len(buf) {
		return LegacyEquitiesQuote{}, fmt.Errorf("wire: legacy quote truncated at offset %d", start)
	}
	symLen := int(buf[start+1])
	end := start + legacyQuoteFixedSize + symLen
	if end > len(buf) {
		return LegacyEquitiesQuote{}, fmt.Errorf("wire: legacy quote truncated at offset %d", start)
	}

	symbol := string(buf[start+2 : start+2+symLen])
	quoteType := "bid"
	if buf[start] == 1 {
		quoteType = "ask"
	}

	price := float32FromBits(buf[start+2+symLen : start+6+symLen])
	size := binary.LittleEndian.Uint32(buf[start+6+symLen : start+10+symLen])
	timestamp := binary.LittleEndian.Uint64(buf[start+10+symLen : start+18+symLen])

	return LegacyEquitiesQuote{
		Symbol:    symbol,
		Type:      quoteType,
		Price:     price,
		Size:      size,
		Timestamp: timestamp,
	}, nil
}

// parseLegacyEquityTrade decodes a single legacy-format trade message
// starting at start within buf.
func parseLegacyEquityTrade(buf []byte, start int) (LegacyEquitiesTrade, error) {
	if start+2 > len(buf) {
		return LegacyEquitiesTrade{}, fmt.Errorf("wire: legacy trade truncated at offset %d", start)
	}
	symLen := int(buf[start+1])
	end := start + legacyTradeFixedSize + symLen
	if end > len(buf) {
		return LegacyEquitiesTrade{}, fmt.Errorf("wire: legacy trade truncated at offset %d", start)
	}

	symbol := string(buf[start+2 : start+2+symLen])

	price := float32FromBits(buf[start+2+symLen : start+6+symLen])
	size := binary.LittleEndian.Uint32(buf[start+6+symLen : start+10+symLen])
	timestamp := binary.LittleEndian.Uint64(buf[start+10+symLen : start+18+symLen])
	totalVolume := binary.LittleEndian.Uint32(buf[start+18+symLen : start+22+symLen])

	return LegacyEquitiesTrade{
		Symbol:      symbol,
		Price:       price,
		Size:        size,
		TotalVolume: totalVolume,
		Timestamp:   timestamp,
	}, nil
}
