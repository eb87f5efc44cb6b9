//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package wire

import "fmt"

// Event is any decoded market event (EquitiesTrade, EquitiesQuote,
// LegacyEquitiesTrade, LegacyEquitiesQuote, OptionsTrade, OptionsQuote,
// OptionsRefresh, or OptionsUnusualActivity). Workers type-switch on it when
// dispatching to callbacks.
type Event interface{}

// RawMessage is what a decoded group yields when bypass-parsing is enabled
// (spec.md §6 bypass_parsing): the raw message bytes, undecoded, handed
// straight to the caller.
type RawMessage []byte

// DecodeEquitiesV2Group decodes one v2 equities group frame: byte 0 is the
// message count N, followed by N back-to-back variable-length messages
// (spec.md §4.4). bypassParsing, if true, yields RawMessage values instead
// of decoded structs, matching the Python client's bypass_parsing mode.
func DecodeEquitiesV2Group(buf []byte, bypassParsing bool) ([]Event, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	count := int(buf[0])
	// Sanity check mirroring EquitiesQuoteHandler.run()'s
	// len(message) >= message[0]*24 lower bound.
	if len(buf) < count*24 {
		return nil, fmt.Errorf("wire: equities group frame too short for declared count %d", count)
	}

	events := make([]Event, 0, count)
	start := 1
	for i := 0; i < count; i++ {
		if start+2 > len(buf) {
			return events, fmt.Errorf("wire: equities group frame truncated decoding message %d", i)
		}
		msgType := buf[start]
		msgLen := int(buf[start+1])
		next := start + msgLen
		if msgLen <= 0 || next > len(buf) || next <= start {
			return events, fmt.Errorf("wire: equities message %d length %d out of bounds at offset %d", i, msgLen, start)
		}

		if bypassParsing {
			events = append(events, RawMessage(buf[start:next-1]))
			start = next
			continue
		}

		if msgType == 0 {
			trade, err := parseEquityTradeV2(buf, start, next)
			if err != nil {
				return events, err
			}
			events = append(events, trade)
		} else {
			quote, err := parseEquityQuoteV2(buf, start, next)
			if err != nil {
				return events, err
			}
			events = append(events, quote)
		}
		start = next
	}
	return events, nil
}

// DecodeLegacyEquitiesGroup decodes one legacy-format equities group frame.
// The legacy wire format carries no message_length byte, so each message's
// advance is derived from its own symbol length rather than an authoritative
// stride (spec.md §4.4 legacy-equities note).
func DecodeLegacyEquitiesGroup(buf []byte, bypassParsing bool) ([]Event, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	count := int(buf[0])

	events := make([]Event, 0, count)
	start := 1
	for i := 0; i < count; i++ {
		if start+2 > len(buf) {
			return events, fmt.Errorf("wire: legacy equities group frame truncated decoding message %d", i)
		}
		msgType := buf[start]
		symLen := int(buf[start+1])

		var next int
		if msgType == 0 {
			next = start + legacyTradeFixedSize + symLen
		} else {
			next = start + legacyQuoteFixedSize + symLen
		}
		if next > len(buf) || next <= start {
			return events, fmt.Errorf("wire: legacy equities message %d out of bounds at offset %d", i, start)
		}

		if bypassParsing {
			events = append(events, RawMessage(buf[start:next]))
			start = next
			continue
		}

		if msgType == 0 {
			trade, err := parseLegacyEquityTrade(buf, start)
			if err != nil {
				return events, err
			}
			events = append(events, trade)
		} else {
			quote, err := parseLegacyEquityQuote(buf, start)
			if err != nil {
				return events, err
			}
			events = append(events, quote)
		}
		start = next
	}
	return events, nil
}

// optionsMessageSize returns the fixed message size for an options event
// type byte, or an error for an unrecognized msgType (spec.md §4.4; event
// types 2 and >2 are distinguished the way workOnOptions in the reference
// Go port does — refresh is exactly 2, anything else above 2 is unusual
// activity).
func optionsMessageSize(msgType byte) (int, error) {
	switch {
	case msgType == 0:
		return OptionTradeSize, nil
	case msgType == 1:
		return OptionQuoteSize, nil
	case msgType == 2:
		return OptionRefreshSize, nil
	case msgType > 2:
		return OptionUASize, nil
	default:
		return 0, fmt.Errorf("wire: invalid options message type %d", msgType)
	}
}

// DecodeOptionsGroup decodes one options group frame: byte 0 is the message
// count N, followed by N back-to-back fixed-size messages whose size is
// determined by the event-type byte at each message's offset 22 (spec.md
// §4.4), mirroring workOnOptions in the reference Go port.
func DecodeOptionsGroup(buf []byte, bypassParsing bool) ([]Event, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	count := int(buf[0])

	events := make([]Event, 0, count)
	start := 1
	for i := 0; i < count; i++ {
		msgType, err := optionsEventType(buf[start:])
		if err != nil {
			return events, err
		}
		size, err := optionsMessageSize(msgType)
		if err != nil {
			return events, err
		}
		next := start + size
		if next > len(buf) {
			return events, fmt.Errorf("wire: options message %d out of bounds at offset %d", i, start)
		}

		if bypassParsing {
			events = append(events, RawMessage(buf[start:next]))
			start = next
			continue
		}

		switch {
		case msgType == 0:
			trade, err := parseOptionsTrade(buf[start:next])
			if err != nil {
				return events, err
			}
			events = append(events, trade)
		case msgType == 1:
			quote, err := parseOptionsQuote(buf[start:next])
			if err != nil {
				return events, err
			}
			events = append(events, quote)
		case msgType == 2:
			refresh, err := parseOptionsRefresh(buf[start:next])
			if err != nil {
				return events, err
			}
			events = append(events, refresh)
		default:
			ua, err := parseOptionsUA(buf[start:next])
			if err != nil {
				return events, err
			}
			events = append(events, ua)
		}
		start = next
	}
	return events, nil
}
