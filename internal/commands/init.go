package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/accounts"
	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/gitops"
	"github.com/cleared-dev/stmtimport/internal/posting"
	"github.com/cleared-dev/stmtimport/internal/template"
)

func newInitCommand() *cobra.Command {
	var name string
	var entityType string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new import workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, name, entityType, !noGit)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace at %s (%s)\n", absDir, hash)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace at %s\n", absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&entityType, "entity-type", "gmbh", "legal form (sole_proprietorship, gmbh, ag)")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

// runInit lays out the workspace and, with useGit, commits it to a new git
// repository. It returns the commit hash when one was made.
func runInit(dir, name, entityType string, useGit bool) (string, error) {
	cfg := config.Default(name, entityType)

	dirs := []string{
		"accounts",
		"rules",
		"ledger",
		cfg.Paths.Templates,
		cfg.Paths.Exports,
		cfg.Paths.Import,
		filepath.Join(cfg.Paths.Import, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	chart := accounts.DefaultChart(entityType)
	if err := accounts.NewService(chart).Save(dir); err != nil {
		return "", fmt.Errorf("writing chart of accounts: %w", err)
	}

	if err := posting.SaveRules(config.Resolve(dir, cfg.Paths.Rules), nil); err != nil {
		return "", err
	}

	example := template.Example()
	if err := template.Save(filepath.Join(dir, cfg.Paths.Templates, example.Name+".yaml"), example); err != nil {
		return "", err
	}

	gitignore := "exports/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, cfg.Paths.Import, ".gitkeep"), []byte{}, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !useGit {
		return "", nil
	}
	if err := gitops.Init(dir); err != nil {
		return "", err
	}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, gitAuthor(cfg))
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
