package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Account is a general-ledger account. IDs are kept as strings because
// accounting systems address them that way ("1020", "6570").
type Account struct {
	ID          string
	Name        string
	Type        AccountType
	ParentID    string // empty = top-level
	VATCode     string
	Description string
}
