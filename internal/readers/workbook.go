package readers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

type format int

const (
	formatCSV format = iota
	formatXLSX
	formatXLS
)

func (f format) String() string {
	switch f {
	case formatXLSX:
		return "xlsx"
	case formatXLS:
		return "xls"
	default:
		return "csv"
	}
}

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
)

// detectFormat prefers the file signature and falls back to the extension.
func detectFormat(name string, data []byte) format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return formatXLSX
	case bytes.HasPrefix(data, ole2Magic):
		return formatXLS
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "xlsx", "xlsm":
		return formatXLSX
	case "xls":
		return formatXLS
	default:
		return formatCSV
	}
}

// loadFirstSheet returns the cell text of the first sheet, header included.
func loadFirstSheet(src Source) ([][]string, error) {
	if len(src.Data) == 0 {
		return nil, nil
	}
	f := detectFormat(src.Name, src.Data)
	var (
		rows [][]string
		err  error
	)
	switch f {
	case formatXLSX:
		rows, err = loadXLSX(src.Data)
	case formatXLS:
		rows, err = loadXLS(src.Data)
	default:
		rows, err = loadCSV(src.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrUnreadable, f, err)
	}
	return rows, nil
}

func loadXLSX(data []byte) ([][]string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	// Raw values keep date cells as serial numbers instead of locale strings.
	return wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func loadXLS(data []byte) (rows [][]string, err error) {
	// The xls decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("decode xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, errors.New("no workbook stream")
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}
	fullDateFormats(wb)
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// LastCol is one past the last used column.
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// xlsRow returns nil for rows the sheet holds no record of.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// fullDateFormats moves cells styled with a built-in date format onto a
// custom one. The decoder renders built-in date cells as year and month
// only, while custom formats come out as RFC 3339 timestamps.
func fullDateFormats(wb *xls.WorkBook) {
	custom := uint16(164)
	for id := range wb.Formats {
		if id >= custom {
			custom = id + 1
		}
	}
	moved := false
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			if builtinDateFormat(x.Format) {
				x.Format, moved = custom, true
			}
		case *xls.Xf5:
			if builtinDateFormat(x.Format) {
				x.Format, moved = custom, true
			}
		}
	}
	if moved {
		f := &xls.Format{}
		f.Head.Index = custom
		wb.Formats[custom] = f
	}
}

func builtinDateFormat(n uint16) bool {
	return 14 <= n && n <= 17 || n == 22 || 27 <= n && n <= 36 || 50 <= n && n <= 58
}

func loadCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter picks ';' when the header line uses it more than ','.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
