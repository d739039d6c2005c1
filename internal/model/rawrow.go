package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawRow maps normalized header names to raw cell text. Keys are unique and
// keep header order.
type RawRow struct {
	Line  int // 1-based source line (sheet row for spreadsheets)
	Keys  []string
	Cells map[string]string

	// Amount, when valid, replaces whatever the amount columns say. It is
	// set when a compound row is expanded and never serialized.
	Amount decimal.NullDecimal
}

// NewRawRow builds a row from headers and cells. Cells are padded with empty
// strings or truncated to the header length.
func NewRawRow(line int, headers, cells []string) RawRow {
	m := make(map[string]string, len(headers))
	for i, h := range headers {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		m[h] = v
	}
	return RawRow{Line: line, Keys: headers, Cells: m}
}

// Get returns the trimmed cell for key, or "" when key is empty or absent.
func (r RawRow) Get(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(r.Cells[key])
}

// With returns a copy of the row with key set to value.
func (r RawRow) With(key, value string) RawRow {
	cells := make(map[string]string, len(r.Cells))
	for k, v := range r.Cells {
		cells[k] = v
	}
	cells[key] = value
	return RawRow{Line: r.Line, Keys: r.Keys, Cells: cells, Amount: r.Amount}
}

// WithAmount returns a copy of the row carrying an amount override.
func (r RawRow) WithAmount(amount decimal.Decimal) RawRow {
	r.Amount = decimal.NewNullDecimal(amount)
	return r
}

// IsBlank reports whether every cell is empty after trimming.
func (r RawRow) IsBlank() bool {
	for _, v := range r.Cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// MarshalJSON writes the cells as an object in header order.
func (r RawRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.Cells[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
