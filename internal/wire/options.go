//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package wire

import (
	"encoding/binary"
	"fmt"
)

// Options frame sizes are fixed per event type (spec.md §4.4), matching the
// constants in the reference Go port.
const (
	OptionTradeSize   = 72
	OptionQuoteSize   = 52
	OptionRefreshSize = 52
	OptionUASize      = 74
)

// Exchange is the single-byte options exchange code at the end of a trade
// message.
type Exchange uint8

const (
	ExchangeNyseAmerican Exchange = 'A'
	ExchangeBoston       Exchange = 'B'
	ExchangeCBOE         Exchange = 'C'
	ExchangeMiamiEmerald Exchange = 'D'
	ExchangeBatsEDGX     Exchange = 'E'
	ExchangeISEGemini    Exchange = 'H'
	ExchangeISE          Exchange = 'I'
	ExchangeMercury      Exchange = 'J'
	ExchangeMiami        Exchange = 'M'
	ExchangeMiamiPearl   Exchange = 'O'
	ExchangeNyseArca     Exchange = 'P'
	ExchangeNasdaq       Exchange = 'Q'
	ExchangeNasdaqBX     Exchange = 'T'
	ExchangeMemx         Exchange = 'U'
	ExchangeCBOE_C2      Exchange = 'W'
	ExchangePHLX         Exchange = 'X'
	ExchangeBatsBZX      Exchange = 'Z'
)

func (e Exchange) String() string {
	switch e {
	case ExchangeNyseAmerican:
		return "NYSE_AMERICAN"
	case ExchangeBoston:
		return "BOSTON"
	case ExchangeCBOE:
		return "CBOE"
	case ExchangeMiamiEmerald:
		return "MIAMI_EMERALD"
	case ExchangeBatsEDGX:
		return "BATS_EDGX"
	case ExchangeISEGemini:
		return "ISE_GEMINI"
	case ExchangeISE:
		return "ISE"
	case ExchangeMercury:
		return "MERCURY"
	case ExchangeMiami:
		return "MIAMI"
	case ExchangeMiamiPearl:
		return "MIAMI_PEARL"
	case ExchangeNyseArca:
		return "NYSE_ARCA"
	case ExchangeNasdaq:
		return "NASDAQ"
	case ExchangeNasdaqBX:
		return "NASDAQ_BX"
	case ExchangeMemx:
		return "MEMX"
	case ExchangeCBOE_C2:
		return "CBOE_C2"
	case ExchangePHLX:
		return "PHLX"
	case ExchangeBatsBZX:
		return "BATS_BZX"
	}
	return "unknown"
}

// UAType is the unusual-activity subtype byte.
type UAType uint8

const (
	UABlock        UAType = 3
	UASweep        UAType = 4
	UALarge        UAType = 5
	UAUnusualSweep UAType = 6
)

// UASentiment is the unusual-activity sentiment byte.
type UASentiment uint8

const (
	SentimentNeutral UASentiment = 0
	SentimentBullish UASentiment = 1
	SentimentBearish UASentiment = 2
)

// OptionsTrade is a single options trade event (spec.md §4.4).
type OptionsTrade struct {
	Contract                   OptionsContract
	Exchange                   Exchange
	Price                      float64
	Size                       uint32
	Qualifiers                 [4]byte
	TotalVolume                uint64
	AskPriceAtExecution        float64
	BidPriceAtExecution        float64
	UnderlyingPriceAtExecution float64
	Timestamp                  float64 // seconds since epoch
}

// HasQualifier reports whether qualifier slot i (0..3) is set to a nonzero
// code, a friendlier accessor over the raw Qualifiers bytes grounded on the
// qualifier-list conventions in cloudmanic-massive/internal/api/options_trades.go.
func (t OptionsTrade) HasQualifier(i int) bool {
	if i < 0 || i >= len(t.Qualifiers) {
		return false
	}
	return t.Qualifiers[i] != 0
}

// OptionsQuote is a single options ask/bid snapshot event.
type OptionsQuote struct {
	Contract  OptionsContract
	AskPrice  float64
	AskSize   uint32
	BidPrice  float64
	BidSize   uint32
	Timestamp float64
}

// OptionsRefresh is a periodic open-interest/OHLC refresh event.
type OptionsRefresh struct {
	Contract     OptionsContract
	OpenInterest uint32
	OpenPrice    float64
	ClosePrice   float64
	HighPrice    float64
	LowPrice     float64
}

// OptionsUnusualActivity is an unusual-activity alert event.
type OptionsUnusualActivity struct {
	Contract                   OptionsContract
	Type                       UAType
	Sentiment                  UASentiment
	TotalValue                 float64
	TotalSize                  uint32
	AveragePrice               float64
	AskPriceAtExecution        float64
	BidPriceAtExecution        float64
	UnderlyingPriceAtExecution float64
	Timestamp                  float64
}

// contractFromHeader reads the byte0-length-prefixed alternate contract
// identifier at the head of an options message and converts it to canonical
// form.
func contractFromHeader(buf []byte) (OptionsContract, error) {
	if len(buf) < 1 {
		return "", fmt.Errorf("wire: empty options message")
	}
	n := int(buf[0])
	if n > MaxOptionContractSize || 1+n > len(buf) {
		return "", fmt.Errorf("wire: options contract length %d out of range", n)
	}
	return fromAlternateContract(buf[1 : 1+n]), nil
}

// parseOptionsTrade decodes a fixed OptionTradeSize-byte options trade
// message, offsets grounded on parseOptionTrade in the reference Go port
// and cross-checked against options_client.py's _thread_fn.
func parseOptionsTrade(buf []byte) (OptionsTrade, error) {
	if len(buf) < OptionTradeSize {
		return OptionsTrade{}, fmt.Errorf("wire: options trade message too short (%d bytes)", len(buf))
	}
	contract, err := contractFromHeader(buf)
	if err != nil {
		return OptionsTrade{}, err
	}

	priceScaleCode := buf[23]
	underlyingScaleCode := buf[24]

	t := OptionsTrade{
		Contract:                   contract,
		Price:                      scaleInt32(buf[25:29], priceScaleCode),
		Size:                       binary.LittleEndian.Uint32(buf[29:33]),
		Timestamp:                  scaleTimestamp(binary.LittleEndian.Uint64(buf[33:41])),
		TotalVolume:                binary.LittleEndian.Uint64(buf[41:49]),
		AskPriceAtExecution:        scaleInt32(buf[49:53], priceScaleCode),
		BidPriceAtExecution:        scaleInt32(buf[53:57], priceScaleCode),
		UnderlyingPriceAtExecution: scaleInt32(buf[57:61], underlyingScaleCode),
	}
	copy(t.Qualifiers[:], buf[61:65])
	t.Exchange = Exchange(buf[65])
	return t, nil
}

// parseOptionsQuote decodes a fixed OptionQuoteSize-byte options quote
// message.
func parseOptionsQuote(buf []byte) (OptionsQuote, error) {
	if len(buf) < OptionQuoteSize {
		return OptionsQuote{}, fmt.Errorf("wire: options quote message too short (%d bytes)", len(buf))
	}
	contract, err := contractFromHeader(buf)
	if err != nil {
		return OptionsQuote{}, err
	}

	priceScaleCode := buf[23]
	return OptionsQuote{
		Contract:  contract,
		AskPrice:  scaleInt32(buf[24:28], priceScaleCode),
		AskSize:   binary.LittleEndian.Uint32(buf[28:32]),
		BidPrice:  scaleInt32(buf[32:36], priceScaleCode),
		BidSize:   binary.LittleEndian.Uint32(buf[36:40]),
		Timestamp: scaleTimestamp(binary.LittleEndian.Uint64(buf[40:48])),
	}, nil
}

// parseOptionsRefresh decodes a fixed OptionRefreshSize-byte options refresh
// message.
func parseOptionsRefresh(buf []byte) (OptionsRefresh, error) {
	if len(buf) < OptionRefreshSize {
		return OptionsRefresh{}, fmt.Errorf("wire: options refresh message too short (%d bytes)", len(buf))
	}
	contract, err := contractFromHeader(buf)
	if err != nil {
		return OptionsRefresh{}, err
	}

	priceScaleCode := buf[23]
	return OptionsRefresh{
		Contract:     contract,
		OpenInterest: binary.LittleEndian.Uint32(buf[24:28]),
		OpenPrice:    scaleInt32(buf[28:32], priceScaleCode),
		ClosePrice:   scaleInt32(buf[32:36], priceScaleCode),
		HighPrice:    scaleInt32(buf[36:40], priceScaleCode),
		LowPrice:     scaleInt32(buf[40:44], priceScaleCode),
	}, nil
}

// parseOptionsUA decodes a fixed OptionUASize-byte unusual-activity message.
func parseOptionsUA(buf []byte) (OptionsUnusualActivity, error) {
	if len(buf) < OptionUASize {
		return OptionsUnusualActivity{}, fmt.Errorf("wire: options UA message too short (%d bytes)", len(buf))
	}
	contract, err := contractFromHeader(buf)
	if err != nil {
		return OptionsUnusualActivity{}, err
	}

	totalValueScaleCode := buf[24]
	priceScaleCode := buf[25]

	return OptionsUnusualActivity{
		Contract:                   contract,
		Type:                       UAType(buf[22]),
		Sentiment:                  UASentiment(buf[23]),
		TotalValue:                 scaleUint64(buf[26:34], totalValueScaleCode),
		TotalSize:                  binary.LittleEndian.Uint32(buf[34:38]),
		AveragePrice:               scaleInt32(buf[38:42], priceScaleCode),
		AskPriceAtExecution:        scaleInt32(buf[42:46], totalValueScaleCode),
		BidPriceAtExecution:        scaleInt32(buf[46:50], totalValueScaleCode),
		UnderlyingPriceAtExecution: scaleInt32(buf[50:54], priceScaleCode),
		Timestamp:                  scaleTimestamp(binary.LittleEndian.Uint64(buf[54:62])),
	}, nil
}

// optionsEventType reads the event-type discriminator byte from a fixed
// message buffer (0=trade,1=quote,2=refresh,>=3=unusual activity), located
// at byte 22 regardless of message kind, matching workOnOptions in the
// reference Go port.
func optionsEventType(buf []byte) (byte, error) {
	if len(buf) < 23 {
		return 0, fmt.Errorf("wire: options message too short to read event type")
	}
	return buf[22], nil
}
