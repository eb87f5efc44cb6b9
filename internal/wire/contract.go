//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package wire

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// MaxOptionContractSize is the maximum length of the alternate (wire-format)
// contract identifier (spec.md options frame byte 0).
const MaxOptionContractSize = 21

// contractTimeFormat parses the 6-digit YYMMDD expiration embedded in a
// canonical contract identifier.
const contractTimeFormat = "060102"

var newYorkLocation, newYorkLocationErr = time.LoadLocation("America/New_York")

// OptionsContract is the canonical 21-byte contract identifier:
// 6-char zero/underscore-padded symbol + YYMMDD expiration + [C|P] +
// 5-digit whole strike + 3-digit fractional strike (spec.md options format).
// Every options event embeds one, giving it the accessor methods below.
type OptionsContract string

// GetStrikePrice returns the strike price encoded in the contract.
func (c OptionsContract) GetStrikePrice() float64 {
	if len(c) < 21 {
		return 0
	}
	whole := float64(c[13]-'0')*10000 + float64(c[14]-'0')*1000 + float64(c[15]-'0')*100 + float64(c[16]-'0')*10 + float64(c[17]-'0')
	part := float64(c[18]-'0')*0.1 + float64(c[19]-'0')*0.01 + float64(c[20]-'0')*0.001
	return whole + part
}

// IsPut reports whether the contract is a put.
func (c OptionsContract) IsPut() bool {
	return len(c) >= 13 && c[12] == 'P'
}

// IsCall reports whether the contract is a call.
func (c OptionsContract) IsCall() bool {
	return len(c) >= 13 && c[12] == 'C'
}

// GetExpirationDate parses the contract's YYMMDD expiration in the
// America/New_York location, matching the reference Go port's behavior.
func (c OptionsContract) GetExpirationDate() time.Time {
	if newYorkLocationErr != nil {
		log.Printf("wire: failed to load America/New_York location: %v", newYorkLocationErr)
	}
	if len(c) < 12 {
		return time.Time{}
	}
	t, err := time.ParseInLocation(contractTimeFormat, string(c[6:12]), newYorkLocation)
	if err != nil {
		log.Printf("wire: failed to parse expiration date from %q: %v", string(c), err)
	}
	return t
}

// GetUnderlyingSymbol returns the contract's underlying ticker symbol, with
// the canonical padding trimmed.
func (c OptionsContract) GetUnderlyingSymbol() string {
	if len(c) < 6 {
		return string(c)
	}
	return strings.TrimRight(string(c[0:6]), "_")
}

// ToAlternate converts this canonical contract identifier to the compact
// alternate form used in JOIN/LEAVE control frames (spec.md §4.5).
func (c OptionsContract) ToAlternate() string {
	return toAlternateContract(string(c))
}

// ContractFromAlternate converts a compact alternate-form contract
// identifier to its canonical 21-byte form. Exported for callers outside
// this package that need alternate-to-canonical conversion outside frame
// decoding.
func ContractFromAlternate(alternate string) OptionsContract {
	return fromAlternateContract([]byte(alternate))
}

// toAlternateContract converts a canonical 21-byte contract identifier to
// the compact alternate form used on the wire for JOIN/LEAVE control frames,
// mirroring convertOldContractIdToNew in the reference Go port.
func toAlternateContract(canonical string) string {
	if len(canonical) < 13 || strings.IndexByte(canonical, '.') > 9 {
		return canonical
	}

	symbol := strings.TrimRight(canonical[0:6], "_")
	exp := canonical[6:12]
	pc := canonical[12]

	whole := strings.TrimLeft(canonical[13:18], "0")
	if whole == "" {
		whole = "0"
	}

	part := canonical[18:]
	if len(part) >= 3 && part[2] == '0' {
		part = part[0:2]
	}

	return fmt.Sprintf("%s_%s%c%s.%s", symbol, exp, pc, whole, part)
}

// fromAlternateContract converts a compact alternate-form contract
// identifier, as received in an options frame header, into the canonical
// 21-byte form, mirroring extractOldContractId in the reference Go port.
func fromAlternateContract(alternate []byte) OptionsContract {
	canonical := [21]byte{'_', '_', '_', '_', '_', '_', '0', '0', '0', '0', '0', '0', 'X', '0', '0', '0', '0', '0', '0', '0', '0'}

	i, j := 0, 0
	for ; i < len(alternate) && alternate[i] != '_'; i++ {
		canonical[j] = alternate[i]
		j++
	}
	i++

	for j = 6; j < 13 && i < len(alternate); j++ {
		canonical[j] = alternate[i]
		i++
	}
	indexOfPC := i - 1

	for i = len(alternate) - 1; i >= 0 && alternate[i] != '.'; i-- {
	}
	indexOfDecimal := i

	j = 17
	for i--; i > indexOfPC; i-- {
		canonical[j] = alternate[i]
		j--
	}

	j = 18
	for i = indexOfDecimal + 1; i < len(alternate) && j < 21; i++ {
		canonical[j] = alternate[i]
		j++
	}

	return OptionsContract(canonical[:])
}
