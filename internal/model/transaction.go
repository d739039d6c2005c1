package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// SchemaVersion tags every CanonicalTransaction.
const SchemaVersion = "canonical_tx_v1"

// Direction is the booking direction derived from the sign of a signed amount.
type Direction string

const (
	DirectionNone   Direction = ""
	DirectionCredit Direction = "CRDT"
	DirectionDebit  Direction = "DBIT"
)

// DirectionOf returns CRDT for positive, DBIT for negative and DirectionNone
// for zero or missing amounts.
func DirectionOf(amount decimal.NullDecimal) Direction {
	if !amount.Valid {
		return DirectionNone
	}
	switch amount.Decimal.Sign() {
	case 1:
		return DirectionCredit
	case -1:
		return DirectionDebit
	default:
		return DirectionNone
	}
}

// MarshalJSON encodes DirectionNone as null.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirectionNone {
		return []byte("null"), nil
	}
	return []byte(`"` + string(d) + `"`), nil
}

// RowStatus is the validation outcome of one row.
type RowStatus string

const (
	RowOK          RowStatus = "ok"
	RowStatusError RowStatus = "error"
)

// Issue codes attached to rows that failed validation.
const (
	IssueInvalidDate   = "invalid_date"
	IssueMissingText   = "missing_text"
	IssueMissingAmount = "missing_amount"
)

// Issue is a row-level validation problem.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// CanonicalTransaction is the normalized form of one logical statement row.
type CanonicalTransaction struct {
	SchemaVersion  string              `json:"schema_version"`
	ImportID       string              `json:"import_id"`
	RowIndex       int                 `json:"row_index"`
	SourceFileName string              `json:"source_file_name"`
	BookingDate    *civil.Date         `json:"booking_date"`
	ValutaDate     *civil.Date         `json:"valuta_date"`
	Currency       string              `json:"currency"`
	AmountSigned   decimal.NullDecimal `json:"amount_signed"` // positive = credit, negative = debit
	Direction      Direction           `json:"direction"`
	ExchangeRate   decimal.NullDecimal `json:"exchange_rate"`
	TextRaw        string              `json:"text_raw"`
	TextClean      *string             `json:"text_clean"`
	Balance        decimal.NullDecimal `json:"balance"`
	Raw            RawRow              `json:"raw"`
	Status         RowStatus           `json:"status"`
	Issues         []Issue             `json:"issues"`
}

// Label returns text_clean, falling back to text_raw.
func (t CanonicalTransaction) Label() string {
	if t.TextClean != nil && *t.TextClean != "" {
		return *t.TextClean
	}
	return t.TextRaw
}
