// Package amount converts between human-unit decimal amounts and
// smallest-unit integer strings. All arithmetic is integer arithmetic
// over decimal strings; no float rounding can touch the final unit.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Conversion errors.
var (
	ErrInvalidAmount      = errors.New("amount must be a non-negative decimal")
	ErrPrecisionExceeded  = errors.New("amount precision exceeds token decimals")
	ErrInvalidDecimals    = errors.New("decimals must be >= 0")
	ErrInvalidBaseUnits   = errors.New("base units must be a non-negative integer string")
)

// ToBaseUnits converts a decimal string like "1.5" to a smallest-unit
// integer string at the given precision. Fails if the fractional part is
// longer than the precision allows.
func ToBaseUnits(decimal string, decimals int) (string, error) {
	if decimals < 0 {
		return "", ErrInvalidDecimals
	}
	if !decimalPattern.MatchString(decimal) {
		return "", ErrInvalidAmount
	}

	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return "", fmt.Errorf("%w (%d)", ErrPrecisionExceeded, decimals)
	}

	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return "0", nil
	}
	if _, ok := new(big.Int).SetString(combined, 10); !ok {
		return "", ErrInvalidAmount
	}
	return combined, nil
}

// FromBaseUnits converts a smallest-unit integer string back to a decimal
// string, trimming trailing fractional zeros.
func FromBaseUnits(baseUnits string, decimals int) (string, error) {
	if decimals < 0 {
		return "", ErrInvalidDecimals
	}
	n, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok || n.Sign() < 0 {
		return "", ErrInvalidBaseUnits
	}
	s := n.String()
	if decimals == 0 {
		return s, nil
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

// FloatToBaseUnits converts a float amount to base units via its shortest
// exact decimal representation.
func FloatToBaseUnits(v float64, decimals int) (string, error) {
	if v < 0 {
		return "", ErrInvalidAmount
	}
	dec := strconv.FormatFloat(v, 'f', -1, 64)
	// Truncate fractional digits beyond the token precision; dust below
	// one smallest unit is not representable on-chain.
	if i := strings.IndexByte(dec, '.'); i >= 0 && len(dec)-i-1 > decimals {
		dec = dec[:i+1+decimals]
		dec = strings.TrimRight(dec, ".")
	}
	return ToBaseUnits(dec, decimals)
}

// BaseUnitsToFloat converts a base-unit integer string to a float for
// display and rate math. Not exact for very large amounts.
func BaseUnitsToFloat(baseUnits string, decimals int) (float64, error) {
	dec, err := FromBaseUnits(baseUnits, decimals)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(dec, 64)
	if err != nil {
		return 0, ErrInvalidBaseUnits
	}
	return f, nil
}
