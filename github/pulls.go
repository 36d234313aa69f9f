package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// PullRequest is a closed pull request prepared for analysis.
type PullRequest struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Body      string `json:"body,omitempty"`
	MergedAt  string `json:"merged_at"`
	UpdatedAt string `json:"updated_at"`
	HTMLURL   string `json:"html_url"`
}

// PullRequestFile is one changed file in a pull request, its patch truncated
// to a fixed budget.
type PullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
}

// RecentPRsOptions selects which closed pull requests to list. Setting both
// FromPR and ToPR switches to explicit range mode, fetching each number in
// [FromPR, ToPR] directly; otherwise PRs are filtered by a recency window of
// SinceDays days. Zero values mean unset.
type RecentPRsOptions struct {
	SinceDays int
	MaxCount  int
	FromPR    int
	ToPR      int
}

// RecentPRs lists closed pull requests either by explicit number range or by
// recency window. Every returned PR is counted as examined evidence.
func (c *Client) RecentPRs(ctx context.Context, owner, repo string, opts RecentPRsOptions) ([]PullRequest, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must not be empty")
	}
	if opts.MaxCount <= 0 {
		return nil, fmt.Errorf("max_count must be > 0")
	}
	if opts.FromPR != 0 || opts.ToPR != 0 {
		return c.prsByRange(ctx, owner, repo, opts)
	}
	return c.prsByWindow(ctx, owner, repo, opts)
}

// prsByRange fetches each PR number in [FromPR, ToPR] directly. A number
// that does not exist is skipped; any other failure aborts. Only closed PRs
// are returned.
func (c *Client) prsByRange(ctx context.Context, owner, repo string, opts RecentPRsOptions) ([]PullRequest, error) {
	if opts.FromPR == 0 || opts.ToPR == 0 {
		return nil, fmt.Errorf("from_pr and to_pr must be provided together")
	}
	if opts.FromPR <= 0 || opts.ToPR <= 0 {
		return nil, fmt.Errorf("from_pr and to_pr must be > 0")
	}
	if opts.FromPR > opts.ToPR {
		return nil, fmt.Errorf("from_pr (%d) must be <= to_pr (%d)", opts.FromPR, opts.ToPR)
	}

	c.logger.Info("listing PRs by range",
		"owner", owner,
		"repo", repo,
		"from", opts.FromPR,
		"to", opts.ToPR,
	)

	prs := []PullRequest{}
	for number := opts.FromPR; number <= opts.ToPR; number++ {
		var raw apiPull
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
		if err := c.getJSON(ctx, path, nil, &raw); err != nil {
			if IsNotFound(err) {
				c.logger.Debug("PR not found, skipping", "number", number)
				continue
			}
			return nil, err
		}
		if raw.State != "closed" {
			continue
		}
		c.recorder.RecordPR(owner, repo, raw.Number)
		prs = append(prs, newPullRequest(raw, 0))
		if len(prs) >= opts.MaxCount {
			break
		}
	}
	c.logger.Info("found PRs in range", "count", len(prs))
	return prs, nil
}

// prsByWindow lists closed PRs sorted by recency and keeps those merged (or,
// lacking a merge date, updated) within the window. A PR whose date is
// absent or unparseable is kept rather than silently dropped.
func (c *Client) prsByWindow(ctx context.Context, owner, repo string, opts RecentPRsOptions) ([]PullRequest, error) {
	if opts.SinceDays <= 0 {
		return nil, fmt.Errorf("since_days must be > 0")
	}

	c.logger.Info("listing PRs by window",
		"owner", owner,
		"repo", repo,
		"since_days", opts.SinceDays,
		"max_count", opts.MaxCount,
	)

	query := url.Values{}
	query.Set("state", "closed")
	query.Set("sort", "updated")
	query.Set("direction", "desc")
	query.Set("per_page", strconv.Itoa(perPage))

	var raw []apiPull
	path := fmt.Sprintf("/repos/%s/%s/pulls", owner, repo)
	if err := c.getJSON(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -opts.SinceDays)
	prs := []PullRequest{}
	for _, item := range raw {
		date := item.MergedAt
		if date == "" {
			date = item.UpdatedAt
		}
		if date != "" {
			if t, err := time.Parse(time.RFC3339, date); err == nil && t.Before(cutoff) {
				continue
			}
		}
		c.recorder.RecordPR(owner, repo, item.Number)
		prs = append(prs, newPullRequest(item, 0))
		if len(prs) >= opts.MaxCount {
			break
		}
	}
	c.logger.Info("found PRs in window", "count", len(prs))
	return prs, nil
}

// FetchPR reads a single pull request with its body included.
func (c *Client) FetchPR(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	c.logger.Info("fetching PR", "owner", owner, "repo", repo, "number", number)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must not be empty")
	}
	if number <= 0 {
		return nil, fmt.Errorf("PR number must be > 0")
	}

	var raw apiPull
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	if err := c.getJSON(ctx, path, nil, &raw); err != nil {
		return nil, err
	}

	c.recorder.RecordPR(owner, repo, raw.Number)
	pr := newPullRequest(raw, issueBodyFullLimit)
	return &pr, nil
}

// FetchPRFiles lists the files changed in a pull request, paginating until
// maxFiles entries have been collected or pages run out. Patches are
// truncated with a marker.
func (c *Client) FetchPRFiles(ctx context.Context, owner, repo string, number, maxFiles int) ([]PullRequestFile, error) {
	c.logger.Info("fetching PR files", "owner", owner, "repo", repo, "number", number, "max_files", maxFiles)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must not be empty")
	}
	if number <= 0 {
		return nil, fmt.Errorf("PR number must be > 0")
	}
	if maxFiles <= 0 {
		return nil, fmt.Errorf("max_files must be > 0")
	}

	files := []PullRequestFile{}
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/files", owner, repo, number)
	for page := 1; len(files) < maxFiles; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(perPage))
		query.Set("page", strconv.Itoa(page))

		var raw []apiPullFile
		if err := c.getJSON(ctx, path, query, &raw); err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}
		for _, item := range raw {
			patch := item.Patch
			if len(patch) > prPatchLimit {
				patch = truncateBytes(patch, prPatchLimit) + "\n\n[patch truncated]"
			}
			files = append(files, PullRequestFile{
				Filename:  item.Filename,
				Status:    item.Status,
				Additions: item.Additions,
				Deletions: item.Deletions,
				Changes:   item.Changes,
				Patch:     patch,
			})
			if len(files) >= maxFiles {
				break
			}
		}
	}

	c.recorder.RecordPR(owner, repo, number)
	c.logger.Info("fetched PR files", "count", len(files))
	return files, nil
}

func newPullRequest(raw apiPull, bodyLimit int) PullRequest {
	pr := PullRequest{
		Number:    raw.Number,
		Title:     raw.Title,
		State:     raw.State,
		MergedAt:  raw.MergedAt,
		UpdatedAt: raw.UpdatedAt,
		HTMLURL:   raw.HTMLURL,
	}
	if bodyLimit > 0 {
		pr.Body = truncateBytes(raw.Body, bodyLimit)
	}
	return pr
}
