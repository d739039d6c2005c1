package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/buildinfo"
	"github.com/cleared-dev/stmtimport/internal/logging"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var flags rootFlags

	// Amounts, balances and rates are JSON numbers in CLI output.
	decimal.MarshalJSONWithoutQuotes = true

	rootCmd := &cobra.Command{
		Use:     "stmtimport",
		Short:   "Bank statement import and reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd, flags.logLevel, flags.logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", logging.FormatConsole, "log format (console, json)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newImportCommand(&flags))
	rootCmd.AddCommand(newAccountsCommand())

	return rootCmd
}

// setupLogging attaches a stderr logger to the command context.
func setupLogging(cmd *cobra.Command, level, format string) error {
	logger, err := logging.New(cmd.ErrOrStderr(), level, format)
	if err != nil {
		return err
	}
	cmd.SetContext(logging.WithContext(cmd.Context(), logger))
	return nil
}
