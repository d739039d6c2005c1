package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/model"
)

const (
	numFields = 6
	colID     = 0
	colName   = 1
	colType   = 2
	colParent = 3
	colVAT    = 4
	colDesc   = 5
)

var header = []string{"account_id", "account_name", "account_type", "parent_id", "vat_code", "description"}

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colParent] = acct.ParentID
	row[colVAT] = acct.VATCode
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id := strings.TrimSpace(record[colID])
	if id == "" {
		return model.Account{}, fmt.Errorf("empty account_id")
	}

	typ := model.AccountType(strings.TrimSpace(record[colType]))
	switch typ {
	case model.AccountTypeAsset, model.AccountTypeLiability, model.AccountTypeEquity,
		model.AccountTypeRevenue, model.AccountTypeExpense:
	default:
		return model.Account{}, fmt.Errorf("account %s: unknown account_type %q", id, record[colType])
	}

	return model.Account{
		ID:          id,
		Name:        record[colName],
		Type:        typ,
		ParentID:    strings.TrimSpace(record[colParent]),
		VATCode:     record[colVAT],
		Description: record[colDesc],
	}, nil
}
