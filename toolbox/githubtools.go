package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fixscout/fixscout/github"
	"github.com/fixscout/fixscout/gitrepo"
)

// errorRecord is the shape tool results use to report an environmental
// failure the model should reason about instead of aborting the run.
func errorRecord(format string, args ...any) map[string]string {
	return map[string]string{"error": fmt.Sprintf(format, args...)}
}

// listOrError converts a request failure into a single-element error record
// while letting argument validation errors propagate as failed tool calls.
func listOrError[T any](items []T, err error) (any, error) {
	if err != nil {
		if github.IsRequestError(err) {
			return []map[string]string{errorRecord("GitHub request failed: %v", err)}, nil
		}
		return nil, err
	}
	return items, nil
}

func itemOrError[T any](item *T, err error) (any, error) {
	if err != nil {
		if github.IsRequestError(err) {
			return errorRecord("GitHub request failed: %v", err), nil
		}
		return nil, err
	}
	return item, nil
}

func githubRepoTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_github_repo",
		Description: "Resolve the repository's GitHub owner and name from a git remote. Use this before any github_* tool.",
		InputSchema: objectSchema(map[string]any{
			"remote": prop("string", "Remote name to resolve (default origin)."),
		}),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Remote string `json:"remote"`
			}{Remote: "origin"}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			remoteURL, err := in.RemoteURL(ctx, repoPath, args.Remote)
			if err != nil {
				return errorRecord("Failed to read git remote '%s': %v", args.Remote, err), nil
			}
			repo, err := github.ParseRemote(remoteURL)
			if err != nil {
				return errorRecord("Could not parse a github.com remote from: %s", remoteURL), nil
			}
			return repo, nil
		},
	}
}

func recentIssuesTool(client *github.Client) Tool {
	return Tool{
		Name:        "github_recent_issues",
		Description: "List recently closed issues for a GitHub repository. Bodies are truncated previews.",
		InputSchema: objectSchema(map[string]any{
			"owner":      prop("string", "Repository owner."),
			"repo":       prop("string", "Repository name."),
			"since_days": prop("integer", "How many days back to look (default 30)."),
			"max_count":  prop("integer", "Maximum issues to return (default 50)."),
		}, "owner", "repo"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Owner     string `json:"owner"`
				Repo      string `json:"repo"`
				SinceDays int    `json:"since_days"`
				MaxCount  int    `json:"max_count"`
			}{SinceDays: 30, MaxCount: 50}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return listOrError(client.RecentIssues(ctx, args.Owner, args.Repo, args.SinceDays, args.MaxCount))
		},
	}
}

func recentPRsTool(client *github.Client) Tool {
	return Tool{
		Name:        "github_recent_prs",
		Description: "List recently closed pull requests. Provide from_pr and to_pr together to fetch an explicit number range instead of a time window.",
		InputSchema: objectSchema(map[string]any{
			"owner":      prop("string", "Repository owner."),
			"repo":       prop("string", "Repository name."),
			"since_days": prop("integer", "How many days back to look (default 30, ignored in range mode)."),
			"max_count":  prop("integer", "Maximum PRs to return (default 50)."),
			"from_pr":    prop("integer", "First PR number of an explicit range."),
			"to_pr":      prop("integer", "Last PR number of an explicit range."),
		}, "owner", "repo"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Owner     string `json:"owner"`
				Repo      string `json:"repo"`
				SinceDays int    `json:"since_days"`
				MaxCount  int    `json:"max_count"`
				FromPR    int    `json:"from_pr"`
				ToPR      int    `json:"to_pr"`
			}{SinceDays: 30, MaxCount: 50}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return listOrError(client.RecentPRs(ctx, args.Owner, args.Repo, github.RecentPRsOptions{
				SinceDays: args.SinceDays,
				MaxCount:  args.MaxCount,
				FromPR:    args.FromPR,
				ToPR:      args.ToPR,
			}))
		},
	}
}

func fetchIssueTool(client *github.Client) Tool {
	return Tool{
		Name:        "github_fetch_issue",
		Description: "Fetch a single issue with a larger body budget than the listing preview.",
		InputSchema: objectSchema(map[string]any{
			"owner":  prop("string", "Repository owner."),
			"repo":   prop("string", "Repository name."),
			"number": prop("integer", "Issue number."),
		}, "owner", "repo", "number"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Owner  string `json:"owner"`
				Repo   string `json:"repo"`
				Number int    `json:"number"`
			}{}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return itemOrError(client.FetchIssue(ctx, args.Owner, args.Repo, args.Number))
		},
	}
}

func fetchPRTool(client *github.Client) Tool {
	return Tool{
		Name:        "github_fetch_pr",
		Description: "Fetch a single pull request including its description.",
		InputSchema: objectSchema(map[string]any{
			"owner":  prop("string", "Repository owner."),
			"repo":   prop("string", "Repository name."),
			"number": prop("integer", "Pull request number."),
		}, "owner", "repo", "number"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Owner  string `json:"owner"`
				Repo   string `json:"repo"`
				Number int    `json:"number"`
			}{}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return itemOrError(client.FetchPR(ctx, args.Owner, args.Repo, args.Number))
		},
	}
}

func fetchPRFilesTool(client *github.Client) Tool {
	return Tool{
		Name:        "github_fetch_pr_files",
		Description: "List the files changed in a pull request with truncated patches.",
		InputSchema: objectSchema(map[string]any{
			"owner":     prop("string", "Repository owner."),
			"repo":      prop("string", "Repository name."),
			"number":    prop("integer", "Pull request number."),
			"max_files": prop("integer", "Maximum files to return (default 200)."),
		}, "owner", "repo", "number"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Owner    string `json:"owner"`
				Repo     string `json:"repo"`
				Number   int    `json:"number"`
				MaxFiles int    `json:"max_files"`
			}{MaxFiles: 200}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return listOrError(client.FetchPRFiles(ctx, args.Owner, args.Repo, args.Number, args.MaxFiles))
		},
	}
}

func fetchPRCommentsTool(client *github.Client) Tool {
	return Tool{
		Name:        "github_fetch_pr_comments",
		Description: "Read a pull request's discussion and inline review comments.",
		InputSchema: objectSchema(map[string]any{
			"owner":     prop("string", "Repository owner."),
			"repo":      prop("string", "Repository name."),
			"number":    prop("integer", "Pull request number."),
			"max_count": prop("integer", "Maximum comments to return (default 100)."),
		}, "owner", "repo", "number"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Owner    string `json:"owner"`
				Repo     string `json:"repo"`
				Number   int    `json:"number"`
				MaxCount int    `json:"max_count"`
			}{MaxCount: 100}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return listOrError(client.FetchPRComments(ctx, args.Owner, args.Repo, args.Number, args.MaxCount))
		},
	}
}
