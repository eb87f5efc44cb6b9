//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package wire implements the binary frame codecs for equities (v2 and
// legacy) and options market data, grounded on the byte-offset math in
// other_examples/16508843_intrinio-intrinio-realtime-go-sdk__options.go.go
// and cross-checked against original_source/intriniorealtime/*.py.
package wire

import (
	"encoding/binary"
	"math"
)

// priceScale maps scale codes 0x00-0x0A to the divisor applied to a raw
// integer price (spec.md price-scale rule). It covers only the enumerated
// divisor codes; applyScale handles 0x0F and every other code separately,
// matching original_source/intriniorealtime/options_client.py's
// _scale_value: codes 0x0B-0x0E, and any code beyond this table, pass the
// raw value through unscaled, while 0x0F always yields 0.0.
var priceScale = [11]float64{
	1.0, 10.0, 100.0, 1000.0, 10000.0, 100000.0, 1000000.0, 10000000.0,
	100000000.0, 1000000000.0, 512.0,
}

// applyScale divides raw by the divisor for scaleCode, following
// original_source/intriniorealtime/options_client.py's _scale_value match
// rather than the (buggy) divisor table in the other_examples Go reference
// port: code 0x0F is always 0.0, codes 0x00-0x0A divide by priceScale, and
// every other code - including any value the enumerated table doesn't cover
// - passes raw through unchanged.
func applyScale(raw float64, scaleCode byte) float64 {
	if scaleCode == 0x0F {
		return 0.0
	}
	if int(scaleCode) < len(priceScale) {
		return raw / priceScale[scaleCode]
	}
	return raw
}

// scaleInt32 decodes a little-endian int32 and scales it by the scale code,
// mapping the INT32_MIN/INT32_MAX sentinels to NaN.
func scaleInt32(b []byte, scaleCode byte) float64 {
	v := int32(binary.LittleEndian.Uint32(b))
	if v == math.MinInt32 || v == math.MaxInt32 {
		return math.NaN()
	}
	return applyScale(float64(v), scaleCode)
}

// scaleUint32 decodes a little-endian uint32 and scales it by the scale
// code; used for fields with no documented sentinel.
func scaleUint32(b []byte, scaleCode byte) float64 {
	return applyScale(float64(binary.LittleEndian.Uint32(b)), scaleCode)
}

// scaleUint64 decodes a little-endian uint64 and scales it by the scale
// code, mapping the UINT64_MAX sentinel to NaN.
func scaleUint64(b []byte, scaleCode byte) float64 {
	v := binary.LittleEndian.Uint64(b)
	if v == math.MaxUint64 {
		return math.NaN()
	}
	return applyScale(float64(v), scaleCode)
}

// scaleTimestamp converts raw wire ticks (nanoseconds) to fractional seconds
// since epoch, matching scaleTimestamp in the options reference port.
func scaleTimestamp(ticks uint64) float64 {
	return float64(ticks) / 1e9
}
