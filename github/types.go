package github

import "encoding/json"

// apiIssue is the wire shape of an issue from the issues list endpoint. The
// PullRequest field is a presence marker: the issues API returns PRs too,
// and a non-nil pull_request key is the only way to tell them apart.
type apiIssue struct {
	Number      int              `json:"number"`
	Title       string           `json:"title"`
	State       string           `json:"state"`
	Body        string           `json:"body"`
	HTMLURL     string           `json:"html_url"`
	ClosedAt    string           `json:"closed_at"`
	Labels      []apiLabel       `json:"labels"`
	PullRequest *json.RawMessage `json:"pull_request"`
}

type apiLabel struct {
	Name string `json:"name"`
}

// apiPull is the wire shape of a pull request.
type apiPull struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Body      string `json:"body"`
	MergedAt  string `json:"merged_at"`
	UpdatedAt string `json:"updated_at"`
	HTMLURL   string `json:"html_url"`
}

// apiPullFile is one entry from the PR files endpoint.
type apiPullFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
}

type apiUser struct {
	Login string `json:"login"`
}

// apiIssueComment is a top-level conversation comment on an issue or PR.
type apiIssueComment struct {
	User      apiUser `json:"user"`
	Body      string  `json:"body"`
	CreatedAt string  `json:"created_at"`
}

// apiReviewComment is an inline review comment anchored to a file position.
type apiReviewComment struct {
	User      apiUser `json:"user"`
	Body      string  `json:"body"`
	CreatedAt string  `json:"created_at"`
	Path      string  `json:"path"`
	Line      *int    `json:"line"`
}
