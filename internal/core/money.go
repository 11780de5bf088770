// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from spreadsheet
// cells and formatting them as Brazilian real.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a spreadsheet amount cell to a non-negative decimal.
//
// It accepts dot (78.52) and comma (78,52) decimal separators, pt-BR
// thousands grouping (1.234,56) and an optional "R$" prefix.
// Zero is a valid amount. Negative values return ErrNegativeAmount and
// anything that is not a number returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("78.52")     -> 78.52, nil
//	ParseAmount("78,52")     -> 78.52, nil
//	ParseAmount("1.234,56")  -> 1234.56, nil
//	ParseAmount("abc")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// FormatBRL formats an amount as pt-BR currency (e.g., "R$ 1.234,56").
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
