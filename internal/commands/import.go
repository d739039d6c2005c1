package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/accounts"
	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/export"
	"github.com/cleared-dev/stmtimport/internal/gitops"
	"github.com/cleared-dev/stmtimport/internal/importer"
	"github.com/cleared-dev/stmtimport/internal/ledger"
	"github.com/cleared-dev/stmtimport/internal/logging"
	"github.com/cleared-dev/stmtimport/internal/posting"
	"github.com/cleared-dev/stmtimport/internal/template"
)

// importNamespace seeds content-derived import ids, so that importing the
// same file twice yields the same id and the ledger skips its rows.
var importNamespace = uuid.MustParse("6f1d3c2a-8e44-4b8e-9a53-2f0c7d5e1b90")

func contentID(raw []byte) string {
	return uuid.NewSHA1(importNamespace, raw).String()
}

// workspace bundles everything the import command loads from disk.
type workspace struct {
	root      string
	cfg       *config.Config
	accounts  *accounts.Service
	templates *template.Registry
	rules     []posting.Rule
}

func loadWorkspace(root string) (*workspace, error) {
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, err
	}

	accts, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}

	for _, b := range cfg.BankAccounts {
		if err := accts.CheckBank(b.GLAccount); err != nil {
			return nil, fmt.Errorf("bank %q: %w", b.Name, err)
		}
	}

	reg, err := template.LoadDir(config.Resolve(root, cfg.Paths.Templates))
	if err != nil {
		return nil, err
	}

	rules, err := posting.LoadRules(config.Resolve(root, cfg.Paths.Rules))
	if err != nil {
		return nil, err
	}
	if verrs := posting.ValidateRules(rules, accts); len(verrs) > 0 {
		return nil, fmt.Errorf("invalid posting rules: %w", verrs[0])
	}

	return &workspace{root: root, cfg: cfg, accounts: accts, templates: reg, rules: rules}, nil
}

func newImportCommand(rf *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [directory]",
		Short: "Import every statement file waiting in the workspace import directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			ws, err := loadWorkspace(root)
			if err != nil {
				return err
			}

			// Workspace logging settings apply unless overridden on the command line.
			level, format := ws.cfg.Logging.Level, ws.cfg.Logging.Format
			if cmd.Flags().Changed("log-level") {
				level = rf.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				format = rf.logFormat
			}
			if err := setupLogging(cmd, level, format); err != nil {
				return err
			}

			return runImport(cmd, ws, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "write exports only; leave the ledger and import directory untouched")

	return cmd
}

func runImport(cmd *cobra.Command, ws *workspace, dryRun bool) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	out := cmd.OutOrStdout()

	importDir := config.Resolve(ws.root, ws.cfg.Paths.Import)
	files, err := importer.Scan(importDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No files to import.")
		return nil
	}

	exports := export.NewService(config.Resolve(ws.root, ws.cfg.Paths.Exports))
	led := ledger.NewService(ws.root, ws.accounts)

	for _, f := range files {
		bank, ok := ws.cfg.BankFor(f.Name)
		if !ok {
			log.Warn().Str("file", f.Name).Msg("no bank account matches file name, skipping")
			fmt.Fprintf(out, "%s: skipped (no matching bank account)\n", f.Name)
			continue
		}
		tpl := ws.templates.Get(bank.Template)
		if tpl == nil {
			return fmt.Errorf("%s: bank %q: %w %q", f.Name, bank.Name, importer.ErrNoTemplate, bank.Template)
		}

		raw, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}

		importID := contentID(raw)
		res, err := importer.ApplyMapping(ctx, raw, tpl, importer.ApplyParams{
			ImportID:       importID,
			SourceFileName: f.Name,
			BankAccount:    bank.GLAccount,
			VATEnabled:     ws.cfg.VAT.Enabled,
			DefaultVAT:     posting.VATDefaults{Code: ws.cfg.VAT.DefaultCode, Account: ws.cfg.VAT.DefaultAccount},
			Rules:          ws.rules,
		})
		if err != nil {
			return fmt.Errorf("importing %s: %w", f.Name, err)
		}

		exportDir, err := exports.Write(importID, res)
		if err != nil {
			return err
		}

		if dryRun {
			fmt.Fprintf(out, "%s: %d ok, %d errors -> %s (dry run)\n", f.Name, res.RowsOK, res.RowsError, exportDir)
			continue
		}

		added, err := led.Append(res, bank.GLAccount)
		if err != nil {
			return fmt.Errorf("recording %s: %w", f.Name, err)
		}
		if err := importer.MarkProcessed(importDir, f.Name); err != nil {
			return err
		}

		hash, err := commitImport(ws, f.Name, added)
		if err != nil {
			return err
		}

		log.Info().Str("file", f.Name).Str("import_id", importID).Str("commit", hash).
			Int("added", added.Added).Int("duplicates", added.Duplicates).Msg("statement recorded")
		fmt.Fprintf(out, "%s: %d ok, %d errors, %d new postings (%d duplicates) -> %s\n",
			f.Name, res.RowsOK, res.RowsError, added.Added, added.Duplicates, exportDir)
	}
	return nil
}

// commitImport commits the ledger and the processed file when the workspace
// is a git repository with auto-commit on. It returns "" when nothing was
// committed.
func commitImport(ws *workspace, fileName string, added ledger.AppendResult) (string, error) {
	if !ws.cfg.Git.AutoCommit || !gitops.IsRepo(ws.root) {
		return "", nil
	}
	changed, err := gitops.HasChanges(ws.root)
	if err != nil || !changed {
		return "", err
	}
	msg := fmt.Sprintf("import: %s (%d new postings)", fileName, added.Added)
	hash, err := gitops.CommitAll(ws.root, msg, gitAuthor(ws.cfg))
	if err != nil {
		return "", fmt.Errorf("committing %s: %w", fileName, err)
	}
	return hash, nil
}
