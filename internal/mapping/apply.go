package mapping

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/template"
)

// Resolved holds the canonical fields of one row before it becomes a
// transaction.
type Resolved struct {
	BookingDate *civil.Date
	ValutaDate  *civil.Date
	Text        string
	Currency    string
	Amount      AmountResult
	Balance     decimal.NullDecimal
	Issues      []model.Issue
	Raw         model.RawRow
}

// Outcome splits applied rows into transactions and rejected rows.
type Outcome struct {
	Transactions []model.CanonicalTransaction
	Errors       []model.RowError
}

// Applier resolves canonical fields for the rows of one table.
type Applier struct {
	tpl      *template.Template
	resolver *Resolver
	expander *Expander
}

// NewApplier prepares an applier for rows keyed by headers.
func NewApplier(tpl *template.Template, headers []string) *Applier {
	r := NewResolver(tpl, headers)
	return &Applier{tpl: tpl, resolver: r, expander: NewExpander(tpl, r)}
}

// Apply expands compound rows (when enabled) and turns every row into a
// transaction. With the default error threshold of 0, rows with issues are
// reported in Errors instead of Transactions; any other threshold keeps
// them as transactions with status "error".
func (a *Applier) Apply(ctx context.Context, rows []model.RawRow, importID, sourceFileName string) Outcome {
	log := zerolog.Ctx(ctx)
	if a.tpl.Preprocessing.Explode() {
		before := len(rows)
		rows = a.expander.Expand(ctx, rows)
		log.Debug().Int("rows_before", before).Int("rows_after", len(rows)).Msg("compound rows expanded")
	}

	out := Outcome{Transactions: []model.CanonicalTransaction{}, Errors: []model.RowError{}}
	for _, row := range rows {
		tx := BuildTransaction(a.ResolveRow(row), importID, row.Line, sourceFileName)
		if tx.Status == model.RowStatusError && a.tpl.Validation.MaxParseErrorsBeforeFail == 0 {
			out.Errors = append(out.Errors, model.RowError{RowIndex: tx.RowIndex, Issues: tx.Issues, Raw: tx.Raw})
			continue
		}
		out.Transactions = append(out.Transactions, tx)
	}
	log.Debug().Int("ok", len(out.Transactions)).Int("errors", len(out.Errors)).Msg("rows applied")
	return out
}

// ResolveRow resolves each canonical field of row independently.
func (a *Applier) ResolveRow(row model.RawRow) Resolved {
	m := a.tpl.Mapping
	formats := a.tpl.Validation.DateFormats
	res := Resolved{Raw: row, Issues: []model.Issue{}}

	if d, ok := normalize.ParseDate(row.Get(m.DateColumn.Key()), formats); ok {
		res.BookingDate = &d
	} else {
		res.Issues = append(res.Issues, model.Issue{
			Code: model.IssueInvalidDate, Message: "could not parse booking date", Field: "booking_date",
		})
	}

	if v := row.Get(m.ValutaDateColumn.Key()); v != "" {
		if d, ok := normalize.ParseDate(v, formats); ok {
			res.ValutaDate = &d
		}
	}

	res.Text = composeText(row, m.TextKeys())
	if res.Text == "" {
		res.Issues = append(res.Issues, model.Issue{
			Code: model.IssueMissingText, Message: "text is empty after composition", Field: "text_raw",
		})
	}

	res.Currency = m.FixedCurrency
	if res.Currency == "" {
		res.Currency = row.Get(m.CurrencyColumn.Key())
	}
	if res.Currency == "" {
		res.Currency = template.DefaultCurrency
	}

	res.Amount = a.resolver.Resolve(row, 0)
	if !res.Amount.Signed.Valid {
		res.Issues = append(res.Issues, model.Issue{
			Code: model.IssueMissingAmount, Message: "could not parse amount", Field: "amount_signed",
		})
	}

	if k := m.BalanceColumn.Key(); k != "" {
		res.Balance = normalize.ParseNullNumber(row.Get(k), a.tpl.Input.CSV.DecimalSeparator, a.tpl.Input.CSV.ThousandsSeparator)
	}
	return res
}

// BuildTransaction assembles the canonical transaction for a resolved row.
func BuildTransaction(res Resolved, importID string, rowIndex int, sourceFileName string) model.CanonicalTransaction {
	status := model.RowOK
	if len(res.Issues) > 0 {
		status = model.RowStatusError
	}
	issues := res.Issues
	if issues == nil {
		issues = []model.Issue{}
	}
	return model.CanonicalTransaction{
		SchemaVersion:  model.SchemaVersion,
		ImportID:       importID,
		RowIndex:       rowIndex,
		SourceFileName: sourceFileName,
		BookingDate:    res.BookingDate,
		ValutaDate:     res.ValutaDate,
		Currency:       res.Currency,
		AmountSigned:   res.Amount.Signed,
		Direction:      model.DirectionOf(res.Amount.Signed),
		TextRaw:        res.Text,
		Balance:        res.Balance,
		Raw:            res.Raw,
		Status:         status,
		Issues:         issues,
	}
}
