// Package ledger keeps a per-month file of accepted draft postings so that
// repeated imports of overlapping statements do not book a row twice.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/posting"
)

// Service appends draft postings to monthly ledger files.
type Service struct {
	root     string
	accounts posting.AccountChecker
}

// NewService creates a ledger Service. accounts may be nil.
func NewService(root string, accounts posting.AccountChecker) *Service {
	return &Service{root: root, accounts: accounts}
}

// AppendResult reports what Append did.
type AppendResult struct {
	Added      int
	Duplicates int // rows already recorded by an earlier run
	Skipped    int // rows without a booking date or with status error
}

type month struct{ year, month int }

// Append validates the postings of res against bank and the chart of
// accounts, then appends the ones not yet recorded to
// ledger/<yyyy>/<mm>/drafts.csv, by booking month.
func (s *Service) Append(res *model.ImportResult, bank string) (AppendResult, error) {
	var out AppendResult
	if len(res.PostingsDraft) == 0 {
		return out, nil
	}

	if verrs := posting.ValidateDrafts(res.Transactions, res.PostingsDraft, bank, s.accounts); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return out, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	byMonth := make(map[month][]Entry)
	var order []month
	for i, tx := range res.Transactions {
		if tx.BookingDate == nil || tx.Status != model.RowOK {
			out.Skipped++
			continue
		}
		m := month{tx.BookingDate.Year, int(tx.BookingDate.Month)}
		if _, seen := byMonth[m]; !seen {
			order = append(order, m)
		}
		byMonth[m] = append(byMonth[m], Entry{
			ImportID: tx.ImportID,
			RowIndex: tx.RowIndex,
			Date:     *tx.BookingDate,
			Posting:  res.PostingsDraft[i],
		})
	}

	for _, m := range order {
		added, dups, err := s.appendMonth(m, byMonth[m])
		if err != nil {
			return out, err
		}
		out.Added += added
		out.Duplicates += dups
	}
	return out, nil
}

func (s *Service) appendMonth(m month, entries []Entry) (int, int, error) {
	existing, err := s.ReadMonth(m.year, m.month)
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.Key()] = true
	}

	var fresh []Entry
	for _, e := range entries {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		fresh = append(fresh, e)
	}
	dups := len(entries) - len(fresh)
	if len(fresh) == 0 {
		return 0, dups, nil
	}

	path := s.monthPath(m.year, m.month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, 0, fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return 0, 0, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return 0, 0, fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendEntries(f, fresh); err != nil {
		return 0, 0, fmt.Errorf("appending entries: %w", err)
	}
	return len(fresh), dups, nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]Entry, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return entries, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, "ledger", fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "drafts.csv")
}
