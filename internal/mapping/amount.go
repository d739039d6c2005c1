// Package mapping applies a mapping template to extracted rows: it resolves
// signed amounts, collapses compound parent/child rows and builds canonical
// transactions.
package mapping

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/template"
)

// Amount sources.
const (
	SourceMapped   = "mapped"
	SourceCompound = "compound"
)

var epsilon = decimal.New(1, -12)

// fallbackKeywords are header substrings that suggest an amount column.
var fallbackKeywords = []string{
	"betrag_detail", "einzelbetrag", "betrag", "amount", "summe", "total", "gutschrift", "lastschrift",
}

// AmountResult is a resolved signed amount and where it came from.
type AmountResult struct {
	Signed    decimal.NullDecimal
	Direction model.Direction
	Source    string // "mapped", "compound" or "fallback:<header>"
}

// Resolver computes signed amounts for rows of one table.
type Resolver struct {
	amount   template.AmountMapping
	dec      string
	thou     string
	fallback []string
}

// NewResolver prepares a resolver for rows keyed by headers.
func NewResolver(tpl *template.Template, headers []string) *Resolver {
	return &Resolver{
		amount:   tpl.Mapping.Amount,
		dec:      tpl.Input.CSV.DecimalSeparator,
		thou:     tpl.Input.CSV.ThousandsSeparator,
		fallback: fallbackColumns(headers),
	}
}

// FallbackColumns returns the headers searched when the mapped amount is
// missing or zero, in search order.
func (r *Resolver) FallbackColumns() []string {
	return r.fallback
}

func (r *Resolver) parse(row model.RawRow, key string) decimal.NullDecimal {
	if key == "" {
		return decimal.NullDecimal{}
	}
	return normalize.ParseNullNumber(row.Get(key), r.dec, r.thou)
}

// Primary resolves the amount from the mapped columns only.
//
// In debit/credit mode a row with both values yields credit - debit; a lone
// debit is negated unless it already carries a minus sign.
func (r *Resolver) Primary(row model.RawRow) decimal.NullDecimal {
	if r.amount.Mode == template.ModeSigned {
		return r.parse(row, r.amount.SignedColumn.Key())
	}

	debit := r.parse(row, r.amount.DebitColumn.Key())
	credit := r.parse(row, r.amount.CreditColumn.Key())
	switch {
	case credit.Valid && debit.Valid:
		return decimal.NewNullDecimal(credit.Decimal.Sub(debit.Decimal))
	case credit.Valid:
		return credit
	case debit.Valid:
		if debit.Decimal.IsNegative() {
			return debit
		}
		return decimal.NewNullDecimal(debit.Decimal.Neg())
	}
	return decimal.NullDecimal{}
}

// Resolve computes the signed amount for row. When the mapped columns give
// nothing or zero, the fallback columns are searched for the first non-zero
// value. A parentSign of -1 or 1 forces that sign onto the result of the
// fallback search; any other value leaves it as parsed.
func (r *Resolver) Resolve(row model.RawRow, parentSign int) AmountResult {
	if row.Amount.Valid {
		return AmountResult{Signed: row.Amount, Direction: model.DirectionOf(row.Amount), Source: SourceCompound}
	}

	res := AmountResult{Signed: r.Primary(row), Source: SourceMapped}

	if !res.Signed.Valid || nearZero(res.Signed.Decimal) {
		for _, h := range r.fallback {
			v := r.parse(row, h)
			if !v.Valid || nearZero(v.Decimal) {
				continue
			}
			res.Signed = v
			res.Source = "fallback:" + h
			break
		}
		if res.Signed.Valid && (parentSign == 1 || parentSign == -1) {
			res.Signed = decimal.NewNullDecimal(res.Signed.Decimal.Abs().Mul(decimal.NewFromInt(int64(parentSign))))
		}
	}

	res.Direction = model.DirectionOf(res.Signed)
	return res
}

func nearZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(epsilon)
}

// fallbackColumns picks amount-like headers ordered detail amount, single
// amount, generic betrag/amount, then the rest; header order breaks ties.
func fallbackColumns(headers []string) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, h := range headers {
		if seen[h] {
			continue
		}
		for _, k := range fallbackKeywords {
			if strings.Contains(h, k) {
				cols = append(cols, h)
				seen[h] = true
				break
			}
		}
	}

	rank := func(h string) int {
		switch {
		case strings.Contains(h, "betrag_detail"):
			return 0
		case strings.Contains(h, "einzelbetrag"):
			return 1
		case h == "betrag" || h == "amount":
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(cols, func(i, j int) bool { return rank(cols[i]) < rank(cols[j]) })
	return cols
}
