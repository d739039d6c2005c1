package posting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/model"
)

func tx(amount, text string) model.CanonicalTransaction {
	t := model.CanonicalTransaction{TextRaw: text, Currency: "CHF", RowIndex: 2}
	if amount != "" {
		t.AmountSigned = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	return t
}

func TestBuildDraft_Outflow(t *testing.T) {
	p := BuildDraft(tx("-50.0", "Migros"), Options{BankAccount: "1020"})

	assert.True(t, p.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "", p.DebitAccount)
	assert.Equal(t, "1020", p.CreditAccount)
	assert.Equal(t, "Migros", p.Label)
	assert.Equal(t, "CHF", p.Currency)
	assert.True(t, p.ExchangeRate.Equal(decimal.NewFromInt(1)))
	assert.Nil(t, p.VATCode)
	assert.Nil(t, p.VATAccount)
}

func TestBuildDraft_Inflow(t *testing.T) {
	p := BuildDraft(tx("5200", "Lohn"), Options{BankAccount: "1020"})
	assert.Equal(t, "1020", p.DebitAccount)
	assert.Equal(t, "", p.CreditAccount)
	assert.Equal(t, "5200", p.Amount.String())
}

func TestBuildDraft_NullAmount(t *testing.T) {
	in := tx("", "")
	in.Currency = ""
	clean := "  "
	in.TextClean = &clean

	p := BuildDraft(in, Options{BankAccount: "1020"})
	assert.True(t, p.Amount.IsZero())
	assert.Equal(t, "", p.DebitAccount)
	assert.Equal(t, "", p.CreditAccount)
	assert.Equal(t, "CHF", p.Currency)
}

func TestBuildDraft_LabelPrefersCleanText(t *testing.T) {
	in := tx("-1", "EINKAUF MIGROS ZH 1234")
	clean := "Migros"
	in.TextClean = &clean
	assert.Equal(t, "Migros", BuildDraft(in, Options{}).Label)
}

func TestBuildDraft_ExchangeRate(t *testing.T) {
	in := tx("-10", "Amazon")
	in.ExchangeRate = decimal.NewNullDecimal(decimal.RequireFromString("0.94"))
	assert.Equal(t, "0.94", BuildDraft(in, Options{}).ExchangeRate.String())
}

func TestBuildDraft_VAT(t *testing.T) {
	opts := Options{
		BankAccount: "1020",
		VATEnabled:  true,
		DefaultVAT:  VATDefaults{Code: "V81", Account: "1170"},
		Rules: []Rule{
			{Field: FieldText, Op: OpContains, Keyword: "swisscom", Account: "6510", VATCode: "V81", VATAccount: "1171"},
			{Field: FieldText, Op: OpPrefix, Keyword: "miete", Account: "6000"},
		},
	}

	p := BuildDraft(tx("-89.90", "Swisscom Rechnung"), opts)
	assert.Equal(t, "6510", p.SuggestedAccount)
	require.NotNil(t, p.VATCode)
	assert.Equal(t, "V81", *p.VATCode)
	assert.Equal(t, "1171", *p.VATAccount)

	p = BuildDraft(tx("-1850", "Miete März"), opts)
	assert.Equal(t, "6000", p.SuggestedAccount)
	assert.Equal(t, "V81", *p.VATCode)
	assert.Equal(t, "1170", *p.VATAccount)
	assert.Equal(t, "1020", p.CreditAccount)

	opts.VATEnabled = false
	p = BuildDraft(tx("-89.90", "Swisscom Rechnung"), opts)
	assert.Equal(t, "6510", p.SuggestedAccount)
	assert.Nil(t, p.VATCode)
	assert.Nil(t, p.VATAccount)
}

func TestBuildDrafts(t *testing.T) {
	got := BuildDrafts([]model.CanonicalTransaction{tx("1", "a"), tx("-2", "b")}, Options{BankAccount: "1020"})
	require.Len(t, got, 2)
	assert.Equal(t, "1020", got[0].DebitAccount)
	assert.Equal(t, "1020", got[1].CreditAccount)
}
