package readers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"gastos/internal/core"
)

// Nubank exports have a header row followed by (date, description, amount).
const (
	nubankColDate = iota
	nubankColDescription
	nubankColAmount
)

// 9999-12-31
const maxExcelSerial = 2958465

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006.01.02 15:04:05",
	"02/01/2006",
	"02/01/06",
	"2/1/2006",
}

// NubankReader reads Nubank credit card statements.
type NubankReader struct {
	newID func() string
}

func NewNubankReader() *NubankReader {
	return &NubankReader{newID: uuid.NewString}
}

// Read parses the first sheet of src. Rows whose amount is missing, not a
// number or negative are reported in Result.Skipped. A date that cannot be
// parsed leaves the transaction with an empty date.
func (r *NubankReader) Read(ctx context.Context, src Source) (Result, error) {
	rows, err := loadFirstSheet(src)
	if err != nil {
		return Result{}, err
	}

	res := Result{Transactions: []core.Transaction{}}
	if len(rows) < 2 {
		return res, nil
	}

	for i, row := range rows[1:] {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		if isBlank(row) {
			continue
		}
		res.Rows++
		sheetRow := i + 2

		raw := cell(row, nubankColAmount)
		if raw == "" {
			res.Skipped = append(res.Skipped, SkippedRow{Row: sheetRow, Reason: "missing amount"})
			continue
		}
		amount, err := core.ParseAmount(raw)
		if err != nil {
			reason := "amount is not a number"
			if errors.Is(err, core.ErrNegativeAmount) {
				reason = "negative amount"
			}
			res.Skipped = append(res.Skipped, SkippedRow{Row: sheetRow, Reason: reason, Value: raw})
			continue
		}

		res.Transactions = append(res.Transactions, core.Transaction{
			ID:          r.newID(),
			Date:        parseDate(cell(row, nubankColDate)),
			Description: cell(row, nubankColDescription),
			Amount:      amount,
		})
	}
	return res, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts Excel serial numbers and the common text layouts.
func parseDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > maxExcelSerial {
			return core.Date{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return core.Date{}
		}
		return core.NewDate(t.Year(), int(t.Month()), t.Day())
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day())
		}
	}
	return core.Date{}
}
