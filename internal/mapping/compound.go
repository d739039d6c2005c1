package mapping

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/template"
)

// ReconcileTolerance is the largest accepted gap between a parent amount and
// the sum of its children.
var ReconcileTolerance = decimal.RequireFromString("0.02")

var (
	groupCount  = regexp.MustCompile(`\(\d+\)`)
	parentFloor = decimal.New(1, -9)
)

// IsGroupParent reports whether text reads like a collective booking, e.g.
// "Sammelauftrag (3)" or "Collective booking".
func IsGroupParent(text string) bool {
	t := strings.ToLower(text)
	return groupCount.MatchString(t) || strings.Contains(t, "sammel") || strings.Contains(t, "collective")
}

// Expander rewrites the row stream so that a dated collective parent row
// followed by undated detail rows becomes the detail rows, when their amounts
// add up to the parent's. Expanded children carry the parent's date and
// their reconciled amount.
type Expander struct {
	dateKey  string
	textKeys []string
	resolver *Resolver
}

// NewExpander builds an expander for one table.
func NewExpander(tpl *template.Template, resolver *Resolver) *Expander {
	return &Expander{
		dateKey:  tpl.Mapping.DateColumn.Key(),
		textKeys: tpl.Mapping.TextKeys(),
		resolver: resolver,
	}
}

func (e *Expander) dated(row model.RawRow) bool {
	return normalize.LooksLikeDate(row.Get(e.dateKey))
}

// Expand makes one left-to-right pass. A group is the dated row plus every
// following undated, non-blank row up to the next dated row. Groups whose
// children do not reconcile are left alone: the parent is emitted and the
// children are scanned again as ordinary rows. Afterwards the last valid date
// is carried onto rows whose date cell is empty.
func (e *Expander) Expand(ctx context.Context, rows []model.RawRow) []model.RawRow {
	log := zerolog.Ctx(ctx)
	if e.dateKey == "" {
		return rows
	}

	out := make([]model.RawRow, 0, len(rows))
	for i := 0; i < len(rows); {
		parent := rows[i]
		if !e.dated(parent) {
			out = append(out, parent)
			i++
			continue
		}

		j := i + 1
		var children []model.RawRow
		for ; j < len(rows); j++ {
			if e.dated(rows[j]) {
				break
			}
			if !rows[j].IsBlank() {
				children = append(children, rows[j])
			}
		}

		if expanded, ok := e.reconcile(parent, children); ok {
			log.Debug().
				Int("line", parent.Line).
				Int("children", len(expanded)).
				Msg("expanded compound row")
			out = append(out, expanded...)
			i = j
			continue
		}

		out = append(out, parent)
		i++
	}

	return e.carryDates(out)
}

// reconcile returns the date-filled children when they replace parent.
func (e *Expander) reconcile(parent model.RawRow, children []model.RawRow) ([]model.RawRow, bool) {
	if len(children) == 0 || !IsGroupParent(composeText(parent, e.textKeys)) {
		return nil, false
	}
	total := e.resolver.Primary(parent)
	if !total.Valid || total.Decimal.Abs().LessThanOrEqual(parentFloor) {
		return nil, false
	}

	sign := total.Decimal.Sign()
	date := parent.Get(e.dateKey)

	filled := make([]model.RawRow, 0, len(children))
	sum := decimal.Zero
	counted := 0
	for _, c := range children {
		c = c.With(e.dateKey, date)
		amt := e.resolver.Resolve(c, sign).Signed
		if amt.Valid && amt.Decimal.Abs().GreaterThan(parentFloor) {
			sum = sum.Add(amt.Decimal)
			counted++
			c = c.WithAmount(amt.Decimal)
		}
		filled = append(filled, c)
	}

	if counted == 0 || sum.Sub(total.Decimal).Abs().GreaterThan(ReconcileTolerance) {
		return nil, false
	}
	return filled, true
}

// carryDates fills empty date cells with the most recent valid date.
func (e *Expander) carryDates(rows []model.RawRow) []model.RawRow {
	last := ""
	for i, r := range rows {
		d := r.Get(e.dateKey)
		switch {
		case d != "" && normalize.LooksLikeDate(d):
			last = d
		case d == "" && last != "":
			rows[i] = r.With(e.dateKey, last)
		}
	}
	return rows
}

// composeText joins the non-blank cells of keys with single spaces.
func composeText(row model.RawRow, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := row.Get(k); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
