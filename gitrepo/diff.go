package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// Diff produces a unified diff between two refs using three-dot notation,
// optionally restricted to a path, truncated to maxLines with a marker.
func (in *Inspector) Diff(ctx context.Context, repoPath, refA, refB string, maxLines int, pathFilter string) (*DiffResult, error) {
	if refB == "" {
		refB = "HEAD"
	}
	in.logger.Info("diffing refs",
		"repo", repoPath,
		"ref_a", refA,
		"ref_b", refB,
		"max_lines", maxLines,
		"path", pathFilter,
	)
	if refA == "" {
		return nil, fmt.Errorf("ref_a must not be empty")
	}
	if maxLines <= 0 {
		return nil, fmt.Errorf("max_lines must be > 0")
	}

	args := []string{"diff", "--no-color", refA + "..." + refB}
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}
	out, err := in.run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}

	result := &DiffResult{RefA: refA, RefB: refB}
	lines := splitLines(out)
	if len(lines) > maxLines {
		result.Diff = strings.Join(lines[:maxLines], "\n") + "\n\n[diff truncated]"
		result.Truncated = true
	} else {
		result.Diff = strings.Join(lines, "\n")
	}
	return result, nil
}
