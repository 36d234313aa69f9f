package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Issue is a closed issue prepared for analysis. Bodies are truncated:
// previews in listings, a larger budget for single fetches.
type Issue struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	State    string   `json:"state"`
	Body     string   `json:"body"`
	HTMLURL  string   `json:"html_url"`
	ClosedAt string   `json:"closed_at"`
	Labels   []string `json:"labels"`
}

// RecentIssues lists closed issues updated within the last sinceDays days,
// most recently updated first. Pull requests returned by the issues API are
// filtered out.
func (c *Client) RecentIssues(ctx context.Context, owner, repo string, sinceDays, maxCount int) ([]Issue, error) {
	c.logger.Info("listing recent issues",
		"owner", owner,
		"repo", repo,
		"since_days", sinceDays,
		"max_count", maxCount,
	)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must not be empty")
	}
	if sinceDays <= 0 {
		return nil, fmt.Errorf("since_days must be > 0")
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("max_count must be > 0")
	}

	query := url.Values{}
	query.Set("state", "closed")
	query.Set("sort", "updated")
	query.Set("direction", "desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("since", isoSinceDays(sinceDays))

	var raw []apiIssue
	path := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
	if err := c.getJSON(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	issues := []Issue{}
	for _, item := range raw {
		if item.PullRequest != nil {
			continue
		}
		issues = append(issues, newIssue(item, issueBodyPreviewLimit))
		if len(issues) >= maxCount {
			break
		}
	}
	c.logger.Info("found recent issues", "count", len(issues))
	return issues, nil
}

// FetchIssue reads a single issue with a larger body budget.
func (c *Client) FetchIssue(ctx context.Context, owner, repo string, number int) (*Issue, error) {
	c.logger.Info("fetching issue", "owner", owner, "repo", repo, "number", number)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must not be empty")
	}
	if number <= 0 {
		return nil, fmt.Errorf("issue number must be > 0")
	}

	var raw apiIssue
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)
	if err := c.getJSON(ctx, path, nil, &raw); err != nil {
		return nil, err
	}

	issue := newIssue(raw, issueBodyFullLimit)
	return &issue, nil
}

func newIssue(raw apiIssue, bodyLimit int) Issue {
	labels := []string{}
	for _, l := range raw.Labels {
		labels = append(labels, l.Name)
	}
	return Issue{
		Number:   raw.Number,
		Title:    raw.Title,
		State:    raw.State,
		Body:     truncateBytes(raw.Body, bodyLimit),
		HTMLURL:  raw.HTMLURL,
		ClosedAt: raw.ClosedAt,
		Labels:   labels,
	}
}
