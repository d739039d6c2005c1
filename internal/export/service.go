package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// File names inside an import's export directory.
const (
	TransactionsFile = "transactions.csv"
	PostingsFile     = "postings.csv"
	ErrorsFile       = "errors.csv"
	ResultFile       = "result.json"
)

type exportFile struct {
	name  string
	write func(io.Writer) error
}

// Service writes import results below a base directory.
type Service struct {
	dir string
}

// NewService creates an export Service rooted at dir.
func NewService(dir string) *Service {
	return &Service{dir: dir}
}

// Write stores res under <dir>/<importID>/ and returns that directory.
// The postings file is only written when postings were built.
func (s *Service) Write(importID string, res *model.ImportResult) (string, error) {
	if importID == "" {
		return "", fmt.Errorf("writing export: empty import id")
	}
	out := filepath.Join(s.dir, importID)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	files := []exportFile{
		{TransactionsFile, func(w io.Writer) error { return WriteTransactions(w, res.Transactions) }},
		{ErrorsFile, func(w io.Writer) error { return WriteErrors(w, res.Errors) }},
		{ResultFile, func(w io.Writer) error { return WriteResultJSON(w, res) }},
	}
	if len(res.PostingsDraft) > 0 {
		files = append(files, exportFile{PostingsFile, func(w io.Writer) error {
			return WritePostings(w, res.Transactions, res.PostingsDraft)
		}})
	}

	for _, f := range files {
		if err := writeFile(filepath.Join(out, f.name), f.write); err != nil {
			return "", err
		}
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
