package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/accounts"
	"github.com/cleared-dev/stmtimport/internal/model"
)

func newAccountsCommand() *cobra.Command {
	var accountType string

	cmd := &cobra.Command{
		Use:   "accounts [directory]",
		Short: "List the workspace chart of accounts",
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

			svc, err := accounts.Load(root)
			if err != nil {
				return err
			}

			list := svc.All()
			if accountType != "" {
				list = svc.ByType(model.AccountType(accountType))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, a := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, a.VATCode)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "only list accounts of this type (asset, liability, equity, revenue, expense)")

	return cmd
}
