// Package gitrepo provides read-only inspection operations over a local git
// repository: commit history, commit details, file content, text and
// structural search, diffs, and remote resolution. Every operation shells out
// to the git CLI through an injectable Runner so tests can substitute a fake.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotARepository indicates a path has no .git directory directly under it.
var ErrNotARepository = errors.New("not a git repository")

// CommandError indicates a git invocation exited non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("git %s failed with exit code %d", strings.Join(e.Args, " "), e.ExitCode)
	}
	return msg
}

// Runner executes a git subcommand against a repository and returns its
// stdout. A non-zero exit is reported as a *CommandError.
type Runner interface {
	Run(ctx context.Context, repoPath string, args ...string) (string, error)
}

// ExecRunner runs the real git binary, scoping every invocation to the
// repository with an explicit -C argument.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoPath}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("failed to run git: %w", err)
	}

	return stdout.String(), nil
}

// EnsureRepo verifies that repoPath contains a .git directory.
func EnsureRepo(repoPath string) error {
	info, err := os.Stat(filepath.Join(repoPath, ".git"))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w (missing .git directory): %s", ErrNotARepository, repoPath)
	}
	return nil
}

// runExternal executes an arbitrary binary and returns stdout and stderr.
// Unlike Runner it preserves stdout on failure: the structural-search tool
// needs to distinguish "exited non-zero with output" from a hard failure.
func runExternal(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
