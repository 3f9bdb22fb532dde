// Package gitops shells out to git for repository status, keeping the
// dashboard honest about whether a tree is committed and pushed.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Status describes a repository's relationship to its remote.
type Status struct {
	IsRepo      bool
	HasRemote   bool
	RemoteURL   string
	Branch      string
	Ahead       int
	Behind      int
	Uncommitted bool
}

// IsRepo reports whether path contains a .git directory.
func IsRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Load gathers the status of the repository at path. A non-repository
// path yields a zero Status with IsRepo false, not an error; individual
// probe failures degrade to zero values the same way git itself treats a
// detached or remoteless checkout.
func Load(ctx context.Context, path string) (Status, error) {
	var st Status
	if !IsRepo(path) {
		return st, nil
	}
	st.IsRepo = true

	if url, err := run(ctx, path, "remote", "get-url", "origin"); err == nil {
		st.HasRemote = true
		st.RemoteURL = url
	}
	if branch, err := run(ctx, path, "branch", "--show-current"); err == nil {
		st.Branch = branch
	}
	if st.HasRemote {
		st.Ahead, st.Behind = aheadBehind(ctx, path)
	}
	if out, err := run(ctx, path, "status", "--porcelain"); err == nil {
		st.Uncommitted = out != ""
	}
	return st, nil
}

// Fetch updates all remotes for the repository at path.
func Fetch(ctx context.Context, path string) error {
	if _, err := run(ctx, path, "fetch", "--all"); err != nil {
		return fmt.Errorf("git fetch: %w", err)
	}
	return nil
}

// Pull integrates remote changes for the repository at path.
func Pull(ctx context.Context, path string) error {
	if _, err := run(ctx, path, "pull"); err != nil {
		return fmt.Errorf("git pull: %w", err)
	}
	return nil
}

func aheadBehind(ctx context.Context, path string) (ahead, behind int) {
	out, err := run(ctx, path, "rev-list", "--left-right", "--count", "HEAD...origin/HEAD")
	if err != nil {
		return 0, 0
	}
	parts := strings.Fields(out)
	if len(parts) < 2 {
		return 0, 0
	}
	ahead, _ = strconv.Atoi(parts[0])
	behind, _ = strconv.Atoi(parts[1])
	return ahead, behind
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}
