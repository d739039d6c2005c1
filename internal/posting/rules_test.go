package posting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	rules := []Rule{
		{Field: FieldText, Op: OpEquals, Keyword: "TWINT", Account: "3200"},
		{Field: FieldText, Op: OpPrefix, Keyword: "sbb", Account: "6280"},
		{Field: FieldCurrency, Op: OpEquals, Keyword: "eur", Account: "1025"},
		{Field: FieldText, Op: OpContains, Keyword: "migros", Account: "4200"},
	}

	tests := []struct {
		text, currency string
		want           string
	}{
		{"twint", "CHF", "3200"},
		{"TWINT Zahlung", "CHF", ""},
		{"SBB Mobile", "CHF", "6280"},
		{"Billett SBB", "CHF", ""},
		{"Amazon", "EUR", "1025"},
		{"Einkauf MIGROS Bern", "CHF", "4200"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := tx("-1", tt.text)
			in.Currency = tt.currency
			r, ok := Match(rules, in)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, r.Account)
		})
	}
}

func TestMatch_FirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Op: OpContains, Keyword: "coop", Account: "4200"},
		{Op: OpContains, Keyword: "coop pronto", Account: "6200"},
	}
	r, ok := Match(rules, tx("-5", "Coop Pronto Zürich"))
	require.True(t, ok)
	assert.Equal(t, "4200", r.Account)
}

func TestMatch_EmptyKeywordNeverMatches(t *testing.T) {
	_, ok := Match([]Rule{{Field: FieldText, Op: OpContains, Account: "4200"}}, tx("-5", "x"))
	assert.False(t, ok)
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting-rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - keyword: Swisscom
    account: "6510"
    vat_code: V81
  - field: text
    op: prefix
    keyword: SBB
    account: "6280"
`), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, FieldText, rules[0].Field)
	assert.Equal(t, OpContains, rules[0].Op)
	assert.Equal(t, "6510", rules[0].Account)
	assert.Equal(t, "V81", rules[0].VATCode)
	assert.Equal(t, OpPrefix, rules[1].Op)
}

func TestLoadRules_Missing(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [\n"), 0o644))
	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestSaveRulesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting-rules.yaml")
	in := []Rule{{Field: FieldText, Op: OpEquals, Keyword: "Lohn", Account: "3000"}}
	require.NoError(t, SaveRules(path, in))

	out, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
