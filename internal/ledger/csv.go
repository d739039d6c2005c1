package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Header is the CSV header for drafts.csv.
const Header = "import_id,row_index,booking_date,label,amount,currency,exchange_rate,debit_account,credit_account,suggested_account,vat_code,vat_account"

const (
	numFields     = 12
	colImportID   = 0
	colRowIndex   = 1
	colDate       = 2
	colLabel      = 3
	colAmount     = 4
	colCurrency   = 5
	colRate       = 6
	colDebit      = 7
	colCredit     = 8
	colSuggested  = 9
	colVATCode    = 10
	colVATAccount = 11
)

// Entry is one draft posting recorded in the ledger.
type Entry struct {
	ImportID string
	RowIndex int
	Date     civil.Date
	Posting  model.DraftPosting
}

// Key identifies the source row an entry came from.
func (e Entry) Key() string {
	return e.ImportID + "#" + strconv.Itoa(e.RowIndex)
}

// ReadEntries reads all entries from a drafts.csv reader.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to a drafts.csv writer (including header).
func WriteEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendEntries appends entries to an existing drafts.csv writer (no header).
func AppendEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	p := e.Posting
	row := make([]string, numFields)
	row[colImportID] = e.ImportID
	row[colRowIndex] = strconv.Itoa(e.RowIndex)
	row[colDate] = e.Date.String()
	row[colLabel] = p.Label
	row[colAmount] = p.Amount.StringFixed(2)
	row[colCurrency] = p.Currency
	row[colRate] = p.ExchangeRate.String()
	row[colDebit] = p.DebitAccount
	row[colCredit] = p.CreditAccount
	row[colSuggested] = p.SuggestedAccount
	if p.VATCode != nil {
		row[colVATCode] = *p.VATCode
	}
	if p.VATAccount != nil {
		row[colVATAccount] = *p.VATAccount
	}
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	rowIndex, err := strconv.Atoi(record[colRowIndex])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row_index %q: %w", record[colRowIndex], err)
	}

	date, err := civil.ParseDate(record[colDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing booking_date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	rate, err := decimal.NewFromString(record[colRate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing exchange_rate %q: %w", record[colRate], err)
	}

	p := model.DraftPosting{
		Label:            record[colLabel],
		Amount:           amount,
		Currency:         record[colCurrency],
		ExchangeRate:     rate,
		DebitAccount:     record[colDebit],
		CreditAccount:    record[colCredit],
		SuggestedAccount: record[colSuggested],
	}
	if v := record[colVATCode]; v != "" {
		p.VATCode = &v
	}
	if v := record[colVATAccount]; v != "" {
		p.VATAccount = &v
	}

	return Entry{
		ImportID: record[colImportID],
		RowIndex: rowIndex,
		Date:     date,
		Posting:  p,
	}, nil
}
