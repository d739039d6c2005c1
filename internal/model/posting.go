package model

import "github.com/shopspring/decimal"

// DraftPosting is a proposed bookkeeping entry for one transaction.
// Exactly one of DebitAccount/CreditAccount holds the bank account unless the
// amount is zero, in which case both are empty.
type DraftPosting struct {
	Label            string          `json:"label"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	DebitAccount     string          `json:"debit_account"`
	CreditAccount    string          `json:"credit_account"`
	VATCode          *string         `json:"vat_code"`
	VATAccount       *string         `json:"vat_account"`
	SuggestedAccount string          `json:"suggested_account,omitempty"`
}
