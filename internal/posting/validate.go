package posting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Ref         string // row or rule the problem belongs to
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Ref, e.Description)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id string) bool
}

var hundred = decimal.NewFromInt(100)

// ValidateDrafts enforces 4 invariants on the postings built for txs, which
// must be parallel slices. accounts may be nil to skip the account check.
func ValidateDrafts(txs []model.CanonicalTransaction, drafts []model.DraftPosting, bank string, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	if len(txs) != len(drafts) {
		return []ValidationError{{
			Invariant:   0,
			Ref:         "postings",
			Description: fmt.Sprintf("%d transactions but %d postings", len(txs), len(drafts)),
		}}
	}

	for i, p := range drafts {
		ref := fmt.Sprintf("row %d", txs[i].RowIndex)

		// Invariant 1: the bank account sits on the side the sign dictates.
		sign := 0
		if txs[i].AmountSigned.Valid {
			sign = txs[i].AmountSigned.Decimal.Sign()
		}
		var ok bool
		switch sign {
		case 1:
			ok = p.DebitAccount == bank && p.CreditAccount == ""
		case -1:
			ok = p.CreditAccount == bank && p.DebitAccount == ""
		default:
			ok = p.DebitAccount == "" && p.CreditAccount == ""
		}
		if !ok {
			errs = append(errs, ValidationError{
				Invariant:   1,
				Ref:         ref,
				Description: fmt.Sprintf("bank account %q on wrong side (debit %q, credit %q)", bank, p.DebitAccount, p.CreditAccount),
			})
		}

		// Invariant 2: amounts are magnitudes.
		if p.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Invariant:   2,
				Ref:         ref,
				Description: fmt.Sprintf("amount %s is negative", p.Amount),
			})
		}

		// Invariant 3: valid account references.
		if accounts != nil {
			refs := []string{p.DebitAccount, p.CreditAccount, p.SuggestedAccount}
			if p.VATAccount != nil {
				refs = append(refs, *p.VATAccount)
			}
			for _, acct := range refs {
				if acct != "" && !accounts.Exists(acct) {
					errs = append(errs, ValidationError{
						Invariant:   3,
						Ref:         ref,
						Description: fmt.Sprintf("unknown account %s", acct),
					})
				}
			}
		}

		// Invariant 4: no more than 2 decimal places.
		if !p.Amount.Mul(hundred).Equal(p.Amount.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   4,
				Ref:         ref,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", p.Amount),
			})
		}
	}
	return errs
}

// ValidateRules checks rule syntax and that every referenced account exists.
func ValidateRules(rules []Rule, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	for i, r := range rules {
		ref := fmt.Sprintf("rule %d", i+1)
		add := func(format string, args ...any) {
			errs = append(errs, ValidationError{Invariant: 5, Ref: ref, Description: fmt.Sprintf(format, args...)})
		}

		switch r.Field {
		case FieldText, FieldCurrency, "":
		default:
			add("unknown field %q", r.Field)
		}
		switch r.Op {
		case OpContains, OpEquals, OpPrefix, "":
		default:
			add("unknown op %q", r.Op)
		}
		if r.Keyword == "" {
			add("keyword is empty")
		}
		if r.Account == "" {
			add("account is empty")
		}
		if accounts != nil {
			for _, acct := range []string{r.Account, r.VATAccount} {
				if acct != "" && !accounts.Exists(acct) {
					add("unknown account %s", acct)
				}
			}
		}
	}
	return errs
}
