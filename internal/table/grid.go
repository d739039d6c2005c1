package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned for workbooks without a readable worksheet.
var ErrNoSheet = errors.New("no worksheet found")

// Record is one tokenized row and the 1-based source line it starts on.
type Record struct {
	Line  int
	Cells []string
}

// IsBlank reports whether every cell is empty after trimming.
func (r Record) IsBlank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Grid is a tokenized table. Record lines are strictly increasing.
type Grid struct {
	Records []Record
}

// IndexOfLine returns the index of the record starting on line.
func (g Grid) IndexOfLine(line int) (int, bool) {
	for i, r := range g.Records {
		if r.Line == line {
			return i, true
		}
		if r.Line > line {
			break
		}
	}
	return 0, false
}

// ReadCSV tokenizes decoded text. Quoted cells may span lines; each record
// keeps the line its first field starts on. Fully empty lines produce no
// record.
func ReadCSV(text, delimiter string) (Grid, error) {
	comma, size := utf8.DecodeRuneInString(delimiter)
	if size == 0 || size != len(delimiter) {
		return Grid{}, fmt.Errorf("invalid delimiter %q", delimiter)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var g Grid
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Grid{}, fmt.Errorf("reading CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		g.Records = append(g.Records, Record{Line: line, Cells: rec})
	}
	return g, nil
}

// ReadXLSX reads one worksheet of an .xlsx workbook; an empty sheet name
// selects the first sheet. Row n of the sheet becomes a record on line n.
func ReadXLSX(raw []byte, sheet string) (Grid, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return Grid{}, "", fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return Grid{}, "", ErrNoSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Grid{}, "", fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	g := Grid{Records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		g.Records = append(g.Records, Record{Line: i + 1, Cells: row})
	}
	return g, sheet, nil
}
