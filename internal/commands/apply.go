package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/export"
	"github.com/cleared-dev/stmtimport/internal/importer"
	"github.com/cleared-dev/stmtimport/internal/posting"
	"github.com/cleared-dev/stmtimport/internal/template"
)

type applyFlags struct {
	template    string
	bankAccount string
	vat         bool
	vatCode     string
	vatAccount  string
	rules       string
	importID    string
	out         string
}

func newApplyCommand() *cobra.Command {
	var f applyFlags

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Apply a mapping template to one statement file",
		Long: `Apply reads a statement file with the given mapping template and prints
the import result as JSON. With --out the result is also written as CSV
exports into <out>/<import-id>/.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.template, "template", "", "mapping template file (required)")
	_ = cmd.MarkFlagRequired("template")
	cmd.Flags().StringVar(&f.bankAccount, "bank-account", "", "general-ledger bank account; enables draft postings")
	cmd.Flags().BoolVar(&f.vat, "vat", false, "add VAT fields to draft postings")
	cmd.Flags().StringVar(&f.vatCode, "vat-code", "VM81", "default VAT code")
	cmd.Flags().StringVar(&f.vatAccount, "vat-account", "1170", "default VAT account")
	cmd.Flags().StringVar(&f.rules, "rules", "", "posting rules file")
	cmd.Flags().StringVar(&f.importID, "import-id", "", "import id (generated when empty)")
	cmd.Flags().StringVar(&f.out, "out", "", "export directory")

	return cmd
}

func runApply(cmd *cobra.Command, path string, f applyFlags) error {
	tpl, err := template.Load(f.template)
	if err != nil {
		return err
	}

	var rules []posting.Rule
	if f.rules != "" {
		rules, err = posting.LoadRules(f.rules)
		if err != nil {
			return err
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	res, err := importer.ApplyMapping(cmd.Context(), raw, tpl, importer.ApplyParams{
		ImportID:       f.importID,
		SourceFileName: filepath.Base(path),
		BankAccount:    f.bankAccount,
		VATEnabled:     f.vat,
		DefaultVAT:     posting.VATDefaults{Code: f.vatCode, Account: f.vatAccount},
		Rules:          rules,
	})
	if err != nil {
		return err
	}

	if f.out != "" {
		id := f.importID
		if id == "" && len(res.Transactions) > 0 {
			id = res.Transactions[0].ImportID
		}
		if id == "" {
			return fmt.Errorf("no transactions to export; pass --import-id")
		}
		dir, err := export.NewService(f.out).Write(id, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote exports to %s\n", dir)
	}

	return export.WriteResultJSON(cmd.OutOrStdout(), res)
}
