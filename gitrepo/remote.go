package gitrepo

import (
	"context"
	"strings"
)

// RemoteURL reads the URL of a configured remote. The remote defaults to
// "origin". A missing remote surfaces as a *CommandError.
func (in *Inspector) RemoteURL(ctx context.Context, repoPath, remote string) (string, error) {
	if remote == "" {
		remote = "origin"
	}
	in.logger.Info("reading remote URL", "repo", repoPath, "remote", remote)

	out, err := in.run(ctx, repoPath, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
