package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ShowFile reads a file's content at a ref, truncated to maxLines. A path
// that does not exist at the ref is reported as an error record rather than
// a failed call.
func (in *Inspector) ShowFile(ctx context.Context, repoPath, filePath, ref string, maxLines int) (*FileSnapshot, error) {
	if ref == "" {
		ref = "HEAD"
	}
	in.logger.Info("showing file", "repo", repoPath, "path", filePath, "ref", ref, "max_lines", maxLines)
	if filePath == "" {
		return nil, fmt.Errorf("file path must not be empty")
	}
	if maxLines <= 0 {
		return nil, fmt.Errorf("max_lines must be > 0")
	}

	out, err := in.run(ctx, repoPath, "show", ref+":"+filePath)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			msg := strings.TrimSpace(cmdErr.Stderr)
			if msg == "" {
				msg = "git show failed"
			}
			in.logger.Warn("file not readable at ref", "path", filePath, "ref", ref, "error", msg)
			return &FileSnapshot{Error: msg}, nil
		}
		return nil, err
	}

	snapshot := &FileSnapshot{Ref: ref, Path: filePath}
	lines := splitLines(out)
	if len(lines) > maxLines {
		snapshot.Content = strings.Join(lines[:maxLines], "\n") + "\n\n[file truncated]"
		snapshot.Truncated = true
	} else {
		snapshot.Content = strings.Join(lines, "\n")
	}
	return snapshot, nil
}
