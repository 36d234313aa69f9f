package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PullRequestComment is one discussion or inline review comment on a PR.
// Path and Line are null for conversation-level comments.
type PullRequestComment struct {
	User      string  `json:"user"`
	Body      string  `json:"body"`
	CreatedAt string  `json:"created_at"`
	Path      *string `json:"path"`
	Line      *int    `json:"line"`
}

// FetchPRComments reads a PR's conversation comments followed by its inline
// review comments, in that order, capped at maxCount across both streams.
func (c *Client) FetchPRComments(ctx context.Context, owner, repo string, number, maxCount int) ([]PullRequestComment, error) {
	c.logger.Info("fetching PR comments", "owner", owner, "repo", repo, "number", number, "max_count", maxCount)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must not be empty")
	}
	if number <= 0 {
		return nil, fmt.Errorf("PR number must be > 0")
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("max_count must be > 0")
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))

	comments := []PullRequestComment{}

	var issueComments []apiIssueComment
	issuePath := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)
	if err := c.getJSON(ctx, issuePath, query, &issueComments); err != nil {
		return nil, err
	}
	for _, item := range issueComments {
		comments = append(comments, PullRequestComment{
			User:      item.User.Login,
			Body:      truncateBytes(item.Body, commentBodyLimit),
			CreatedAt: item.CreatedAt,
		})
		if len(comments) >= maxCount {
			break
		}
	}

	if len(comments) < maxCount {
		var reviewComments []apiReviewComment
		reviewPath := fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", owner, repo, number)
		if err := c.getJSON(ctx, reviewPath, query, &reviewComments); err != nil {
			return nil, err
		}
		for _, item := range reviewComments {
			path := item.Path
			comments = append(comments, PullRequestComment{
				User:      item.User.Login,
				Body:      truncateBytes(item.Body, commentBodyLimit),
				CreatedAt: item.CreatedAt,
				Path:      &path,
				Line:      item.Line,
			})
			if len(comments) >= maxCount {
				break
			}
		}
	}

	c.recorder.RecordPR(owner, repo, number)
	c.logger.Info("fetched PR comments", "count", len(comments))
	return comments, nil
}
