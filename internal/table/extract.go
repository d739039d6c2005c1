package table

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
)

// ErrHeaderOutOfRange is returned when no record starts on the header row.
var ErrHeaderOutOfRange = errors.New("header row out of range")

// Extract normalizes the header record on headerRow and turns every
// non-blank record starting at or after dataStartRow into a RawRow.
// Both rows are 1-based source lines.
func Extract(g Grid, headerRow, dataStartRow int) ([]string, []model.RawRow, error) {
	h, ok := g.IndexOfLine(headerRow)
	if !ok {
		return nil, nil, fmt.Errorf("%w: row %d", ErrHeaderOutOfRange, headerRow)
	}
	headers := normalize.NormalizeHeaders(g.Records[h].Cells)

	var rows []model.RawRow
	for _, rec := range g.Records[h+1:] {
		if rec.Line < dataStartRow || rec.IsBlank() {
			continue
		}
		rows = append(rows, model.NewRawRow(rec.Line, headers, rec.Cells))
	}
	return headers, rows, nil
}
