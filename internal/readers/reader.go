// Package readers turns bank-issued spreadsheets into transactions.
//
// Each supported bank is a variant of the closed Bank type and is bound to
// one SheetReader by For. Adding a bank means adding a constant, a case in
// For and a reader; nothing is registered at runtime.
package readers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

var (
	// ErrNoReader is returned when a bank has no reader bound to it.
	ErrNoReader = errors.New("no reader registered")
	// ErrUnreadable is returned when the file bytes are not a spreadsheet.
	ErrUnreadable = errors.New("unreadable spreadsheet")
)

type Bank string

const (
	Nubank Bank = "nubank"
)

// Banks lists every supported bank in selector order.
func Banks() []Bank {
	return []Bank{Nubank}
}

// ParseBank maps a form value to a Bank.
func ParseBank(s string) (Bank, error) {
	b := Bank(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Banks() {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w for bank %q", ErrNoReader, s)
}

// Label is the display name of the bank.
func (b Bank) Label() string {
	switch b {
	case Nubank:
		return "Nubank"
	default:
		return string(b)
	}
}

// Source is an uploaded file.
type Source struct {
	Name string
	Data []byte
}

// SkippedRow describes a data row that did not become a transaction.
type SkippedRow struct {
	Row    int // 1-based sheet row
	Reason string
	Value  string // raw amount cell
}

// Result is the outcome of reading one sheet.
type Result struct {
	Rows         int // non-blank data rows, header excluded
	Transactions []core.Transaction
	Skipped      []SkippedRow
}

// Total sums the accepted transactions.
func (r Result) Total() decimal.Decimal {
	return core.Sum(r.Transactions)
}

// SheetReader parses the first sheet of a bank export.
type SheetReader interface {
	Read(ctx context.Context, src Source) (Result, error)
}

// For returns the reader bound to b.
func For(b Bank) (SheetReader, error) {
	switch b {
	case Nubank:
		return NewNubankReader(), nil
	default:
		return nil, fmt.Errorf("%w for bank %q", ErrNoReader, b)
	}
}

// SupportedExtensions lists the file extensions the workbook loader understands.
func SupportedExtensions() []string {
	return []string{"csv", "xlsx", "xls"}
}
