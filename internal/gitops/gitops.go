// Package gitops records workspace changes (ledger appends, processed
// statements) as git commits.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits workspace changes.
type Author struct {
	Name  string
	Email string
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, nil, "init"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// HasChanges reports whether the working tree differs from HEAD, counting
// untracked files that are not ignored.
func HasChanges(dir string) (bool, error) {
	out, err := git(dir, nil, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %s: %w", out, err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message string, a Author) (string, error) {
	if out, err := git(dir, nil, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// The committer is set as well so commits work without a global git identity.
	env := []string{
		"GIT_AUTHOR_NAME=" + a.Name,
		"GIT_AUTHOR_EMAIL=" + a.Email,
		"GIT_COMMITTER_NAME=" + a.Name,
		"GIT_COMMITTER_EMAIL=" + a.Email,
	}
	if out, err := git(dir, env, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %s: %w", out, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func git(dir string, env []string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}
