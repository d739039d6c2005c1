package posting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts map[string]bool

func (m mockAccounts) Exists(id string) bool { return m[id] }

var chart = mockAccounts{"1020": true, "1170": true, "4200": true, "6510": true}

func invariants(errs []ValidationError) []int {
	out := make([]int, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Invariant)
	}
	return out
}

func TestValidateDrafts_Valid(t *testing.T) {
	txs := []model.CanonicalTransaction{tx("-50", "a"), tx("12.5", "b"), tx("", "c")}
	drafts := BuildDrafts(txs, Options{BankAccount: "1020"})
	assert.Empty(t, ValidateDrafts(txs, drafts, "1020", chart))
}

func TestValidateDrafts_WrongSide(t *testing.T) {
	txs := []model.CanonicalTransaction{tx("-50", "a")}
	drafts := []model.DraftPosting{{Amount: decimal.NewFromInt(50), DebitAccount: "1020"}}
	errs := ValidateDrafts(txs, drafts, "1020", chart)
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Invariant)
	assert.Contains(t, errs[0].Error(), "row 2")
}

func TestValidateDrafts_NegativeAndPrecision(t *testing.T) {
	txs := []model.CanonicalTransaction{tx("-1", "a"), tx("1", "b")}
	drafts := []model.DraftPosting{
		{Amount: decimal.NewFromInt(-1), CreditAccount: "1020"},
		{Amount: decimal.RequireFromString("1.005"), DebitAccount: "1020"},
	}
	assert.Equal(t, []int{2, 4}, invariants(ValidateDrafts(txs, drafts, "1020", chart)))
}

func TestValidateDrafts_UnknownAccounts(t *testing.T) {
	txs := []model.CanonicalTransaction{tx("-1", "a")}
	drafts := []model.DraftPosting{{Amount: decimal.NewFromInt(1), CreditAccount: "1021", SuggestedAccount: "9999"}}

	errs := ValidateDrafts(txs, drafts, "1021", chart)
	assert.Equal(t, []int{3, 3}, invariants(errs))

	assert.Empty(t, ValidateDrafts(txs, drafts, "1021", nil))
}

func TestValidateDrafts_UnknownVATAccount(t *testing.T) {
	txs := []model.CanonicalTransaction{tx("-89.90", "Swisscom")}
	drafts := BuildDrafts(txs, Options{
		BankAccount: "1020",
		VATEnabled:  true,
		DefaultVAT:  VATDefaults{Code: "VM81", Account: "1179"},
	})

	errs := ValidateDrafts(txs, drafts, "1020", chart)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Invariant)
	assert.Contains(t, errs[0].Error(), "unknown account 1179")

	drafts = BuildDrafts(txs, Options{
		BankAccount: "1020",
		VATEnabled:  true,
		DefaultVAT:  VATDefaults{Code: "VM81", Account: "1170"},
	})
	assert.Empty(t, ValidateDrafts(txs, drafts, "1020", chart))
}

func TestValidateDrafts_LengthMismatch(t *testing.T) {
	errs := ValidateDrafts([]model.CanonicalTransaction{tx("1", "a")}, nil, "1020", chart)
	require.Len(t, errs, 1)
	assert.Equal(t, 0, errs[0].Invariant)
}

func TestValidateRules(t *testing.T) {
	rules := []Rule{
		{Field: FieldText, Op: OpContains, Keyword: "swisscom", Account: "6510", VATAccount: "1170"},
		{Field: "iban", Op: "regex", Keyword: "", Account: "7777"},
	}
	errs := ValidateRules(rules, chart)
	require.Len(t, errs, 4)
	for _, e := range errs {
		assert.Equal(t, "rule 2", e.Ref)
	}
}
