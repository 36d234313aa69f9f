package gitrepo

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/fixscout/fixscout/evidence"
)

// Field and record separators used in git pretty formats. Neither appears in
// normal commit text, so subjects containing colons, pipes or tabs split
// safely.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Inspector exposes the git inspection tool operations. All operations are
// read-only and stateless apart from the evidence recorder.
type Inspector struct {
	runner   Runner
	recorder *evidence.Recorder
	logger   *slog.Logger

	// Injectable for structural-search tests.
	lookPath func(string) (string, error)
	runCmd   func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// NewInspector creates an Inspector backed by the given runner.
func NewInspector(runner Runner, recorder *evidence.Recorder, logger *slog.Logger) *Inspector {
	return &Inspector{
		runner:   runner,
		recorder: recorder,
		logger:   logger,
		lookPath: exec.LookPath,
		runCmd:   runExternal,
	}
}

// run validates the repository and executes a git subcommand.
func (in *Inspector) run(ctx context.Context, repoPath string, args ...string) (string, error) {
	if err := EnsureRepo(repoPath); err != nil {
		return "", err
	}
	in.logger.Debug("running git command", "repo", repoPath, "args", args)
	return in.runner.Run(ctx, repoPath, args...)
}

// splitLines splits text into lines without a trailing empty element for a
// final newline, matching how truncation bounds count lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
