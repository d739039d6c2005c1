// Package posting derives draft bookkeeping entries from canonical
// transactions and checks them before they leave the importer.
package posting

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/template"
)

// VATDefaults apply when VAT is enabled and no rule supplies its own code.
type VATDefaults struct {
	Code    string `yaml:"default_code"`
	Account string `yaml:"default_account"`
}

// Options configure BuildDraft.
type Options struct {
	BankAccount string // general-ledger account of the bank, e.g. "1020"
	VATEnabled  bool
	DefaultVAT  VATDefaults
	Rules       []Rule
}

// BuildDraft proposes a posting for tx. Money flowing into the bank debits
// the bank account, money flowing out credits it; the counter side is left
// open. A matching rule only fills SuggestedAccount and VAT fields.
func BuildDraft(tx model.CanonicalTransaction, opts Options) model.DraftPosting {
	amount := decimal.Zero
	if tx.AmountSigned.Valid {
		amount = tx.AmountSigned.Decimal
	}

	p := model.DraftPosting{
		Label:        tx.Label(),
		Amount:       amount.Abs(),
		Currency:     tx.Currency,
		ExchangeRate: decimal.NewFromInt(1),
	}
	if p.Currency == "" {
		p.Currency = template.DefaultCurrency
	}
	if tx.ExchangeRate.Valid && !tx.ExchangeRate.Decimal.IsZero() {
		p.ExchangeRate = tx.ExchangeRate.Decimal
	}

	switch amount.Sign() {
	case 1:
		p.DebitAccount = opts.BankAccount
	case -1:
		p.CreditAccount = opts.BankAccount
	}

	rule, matched := Match(opts.Rules, tx)
	if matched {
		p.SuggestedAccount = rule.Account
	}

	if opts.VATEnabled {
		code, account := opts.DefaultVAT.Code, opts.DefaultVAT.Account
		if matched && rule.VATCode != "" {
			code, account = rule.VATCode, rule.VATAccount
		}
		p.VATCode = optional(code)
		p.VATAccount = optional(account)
	}
	return p
}

// BuildDrafts builds one posting per transaction, in order.
func BuildDrafts(txs []model.CanonicalTransaction, opts Options) []model.DraftPosting {
	out := make([]model.DraftPosting, 0, len(txs))
	for _, tx := range txs {
		out = append(out, BuildDraft(tx, opts))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
