// Package export writes import results as CSV and JSON files for review and
// for loading into an accounting system.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

var (
	transactionHeader = []string{
		"row_index", "booking_date", "valuta_date", "currency", "amount_signed", "direction",
		"text_raw", "balance", "status", "import_id", "source_file_name",
	}
	postingHeader = []string{
		"row_index", "label", "amount", "currency", "exchange_rate",
		"debit_account", "credit_account", "suggested_account", "vat_code", "vat_account",
	}
	errorHeader = []string{"row_index", "codes", "messages", "raw"}
)

// WriteTransactions writes canonical transactions as CSV (including header).
func WriteTransactions(w io.Writer, txs []model.CanonicalTransaction) error {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, MarshalTransaction(tx))
	}
	return writeAll(w, transactionHeader, rows)
}

// WritePostings writes draft postings as CSV. txs and drafts are parallel.
func WritePostings(w io.Writer, txs []model.CanonicalTransaction, drafts []model.DraftPosting) error {
	if len(txs) != len(drafts) {
		return fmt.Errorf("writing postings: %d transactions but %d postings", len(txs), len(drafts))
	}
	rows := make([][]string, 0, len(drafts))
	for i, p := range drafts {
		rows = append(rows, MarshalPosting(txs[i].RowIndex, p))
	}
	return writeAll(w, postingHeader, rows)
}

// WriteErrors writes rejected rows as CSV; the raw row is embedded as JSON.
func WriteErrors(w io.Writer, errs []model.RowError) error {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		raw, err := json.Marshal(e.Raw)
		if err != nil {
			return fmt.Errorf("row %d: encoding raw row: %w", e.RowIndex, err)
		}
		codes := make([]string, 0, len(e.Issues))
		msgs := make([]string, 0, len(e.Issues))
		for _, is := range e.Issues {
			codes = append(codes, is.Code)
			msgs = append(msgs, is.Message)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.RowIndex), strings.Join(codes, ";"), strings.Join(msgs, "; "), string(raw),
		})
	}
	return writeAll(w, errorHeader, rows)
}

// WriteResultJSON writes the whole result as indented JSON.
func WriteResultJSON(w io.Writer, res *model.ImportResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(tx model.CanonicalTransaction) []string {
	return []string{
		strconv.Itoa(tx.RowIndex),
		formatDate(tx.BookingDate),
		formatDate(tx.ValutaDate),
		tx.Currency,
		formatNull(tx.AmountSigned),
		string(tx.Direction),
		tx.TextRaw,
		formatNull(tx.Balance),
		string(tx.Status),
		tx.ImportID,
		tx.SourceFileName,
	}
}

// MarshalPosting converts a draft posting to a CSV row.
func MarshalPosting(rowIndex int, p model.DraftPosting) []string {
	return []string{
		strconv.Itoa(rowIndex),
		p.Label,
		p.Amount.StringFixed(2),
		p.Currency,
		p.ExchangeRate.String(),
		p.DebitAccount,
		p.CreditAccount,
		p.SuggestedAccount,
		deref(p.VATCode),
		deref(p.VATAccount),
	}
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(d *civil.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
