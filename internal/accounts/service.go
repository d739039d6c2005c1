package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Path returns where the chart of accounts lives under a workspace root.
func Path(root string) string {
	return filepath.Join(root, "accounts", "chart-of-accounts.csv")
}

// Load reads chart-of-accounts.csv from a workspace root and returns a Service.
func Load(root string) (*Service, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(root string) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

// CheckBank reports an error unless id names an asset account, the only
// kind a statement can be booked against.
func (s *Service) CheckBank(id string) error {
	a, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("bank account %s not in chart of accounts", id)
	}
	if a.Type != model.AccountTypeAsset {
		return fmt.Errorf("bank account %s is %s, not asset", id, a.Type)
	}
	return nil
}
