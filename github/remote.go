package github

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Repo identifies a repository on github.com.
type Repo struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

var sshRemoteRegex = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)

// ParseRemote extracts owner and repository name from a git remote URL.
// Both SSH (git@github.com:owner/repo.git) and HTTPS forms are accepted.
// Remotes pointing anywhere other than github.com are an error.
func ParseRemote(remoteURL string) (*Repo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return nil, fmt.Errorf("remote URL is empty")
	}

	if m := sshRemoteRegex.FindStringSubmatch(remoteURL); m != nil {
		return &Repo{Owner: m[1], Repo: m[2]}, nil
	}

	u, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse remote URL %q: %w", remoteURL, err)
	}
	if u.Host != "github.com" {
		return nil, fmt.Errorf("remote %q is not a github.com URL", remoteURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, fmt.Errorf("remote %q has no owner/repo path", remoteURL)
	}
	return &Repo{
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
	}, nil
}
