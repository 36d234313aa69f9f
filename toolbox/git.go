package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fixscout/fixscout/gitrepo"
)

// decodeArgs fills a defaults-prefilled argument struct from the tool input.
func decodeArgs(input json.RawMessage, out any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, out); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

func recentCommitsTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_recent_commits",
		Description: "List recent commits in the repository, newest first. Returns sha, author, date and subject for each commit.",
		InputSchema: objectSchema(map[string]any{
			"since_days": prop("integer", "How many days back to look (default 30)."),
			"max_count":  prop("integer", "Maximum commits to return (default 50)."),
		}),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				SinceDays int `json:"since_days"`
				MaxCount  int `json:"max_count"`
			}{SinceDays: 30, MaxCount: 50}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.RecentCommits(ctx, repoPath, args.SinceDays, args.MaxCount)
		},
	}
}

func showCommitTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_show_commit",
		Description: "Show a single commit: metadata, changed files and the patch. Long patches are truncated with a marker.",
		InputSchema: objectSchema(map[string]any{
			"sha":             prop("string", "Commit SHA or any rev git understands."),
			"max_patch_lines": prop("integer", "Maximum patch lines to return (default 400)."),
		}, "sha"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				SHA           string `json:"sha"`
				MaxPatchLines int    `json:"max_patch_lines"`
			}{MaxPatchLines: 400}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.ShowCommit(ctx, repoPath, args.SHA, args.MaxPatchLines)
		},
	}
}

func showFileTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_show_file",
		Description: "Read a file's content at a given ref. A missing path at the ref returns an error record, not a failure.",
		InputSchema: objectSchema(map[string]any{
			"path":      prop("string", "Path of the file relative to the repository root."),
			"ref":       prop("string", "Ref to read at (default HEAD)."),
			"max_lines": prop("integer", "Maximum lines to return (default 400)."),
		}, "path"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Path     string `json:"path"`
				Ref      string `json:"ref"`
				MaxLines int    `json:"max_lines"`
			}{Ref: "HEAD", MaxLines: 400}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.ShowFile(ctx, repoPath, args.Path, args.Ref, args.MaxLines)
		},
	}
}

func grepTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_grep",
		Description: "Search tracked file content. fixed_string=true (default) matches the pattern literally; set false for a regular expression.",
		InputSchema: objectSchema(map[string]any{
			"pattern":      prop("string", "Text or regular expression to search for."),
			"max_matches":  prop("integer", "Maximum matches to return (default 50)."),
			"fixed_string": prop("boolean", "Treat the pattern as a literal string (default true)."),
		}, "pattern"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Pattern     string `json:"pattern"`
				MaxMatches  int    `json:"max_matches"`
				FixedString bool   `json:"fixed_string"`
			}{MaxMatches: 50, FixedString: true}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.Grep(ctx, repoPath, args.Pattern, args.MaxMatches, args.FixedString)
		},
	}
}

func diffTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_diff",
		Description: "Unified diff between two refs (three-dot), optionally limited to a path. Long diffs are truncated with a marker.",
		InputSchema: objectSchema(map[string]any{
			"ref_a":     prop("string", "Older ref."),
			"ref_b":     prop("string", "Newer ref (default HEAD)."),
			"max_lines": prop("integer", "Maximum diff lines to return (default 400)."),
			"path":      prop("string", "Restrict the diff to this path."),
		}, "ref_a"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				RefA     string `json:"ref_a"`
				RefB     string `json:"ref_b"`
				MaxLines int    `json:"max_lines"`
				Path     string `json:"path"`
			}{RefB: "HEAD", MaxLines: 400}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.Diff(ctx, repoPath, args.RefA, args.RefB, args.MaxLines, args.Path)
		},
	}
}

func logSearchTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_log_search",
		Description: "Search commit messages across all refs for a pattern.",
		InputSchema: objectSchema(map[string]any{
			"pattern":   prop("string", "Pattern to search commit messages for."),
			"max_count": prop("integer", "Maximum commits to return (default 20)."),
		}, "pattern"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Pattern  string `json:"pattern"`
				MaxCount int    `json:"max_count"`
			}{MaxCount: 20}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.SearchLog(ctx, repoPath, args.Pattern, args.MaxCount)
		},
	}
}

func lsFilesTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "git_ls_files",
		Description: "List tracked files, optionally under a path prefix.",
		InputSchema: objectSchema(map[string]any{
			"prefix":    prop("string", "Only list files under this path prefix."),
			"max_files": prop("integer", "Maximum files to return (default 200)."),
		}),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Prefix   string `json:"prefix"`
				MaxFiles int    `json:"max_files"`
			}{MaxFiles: 200}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.ListFiles(ctx, repoPath, args.Prefix, args.MaxFiles)
		},
	}
}

func astGrepTool(in *gitrepo.Inspector, repoPath string) Tool {
	return Tool{
		Name:        "ast_grep",
		Description: "Structural code search using an ast-grep pattern, e.g. 'foo($X)'. Returns an error record when ast-grep is unavailable.",
		InputSchema: objectSchema(map[string]any{
			"pattern":     prop("string", "ast-grep pattern to match."),
			"language":    prop("string", "Language hint, e.g. go, python, rust."),
			"max_matches": prop("integer", "Maximum matches to return (default 50)."),
		}, "pattern"),
		Call: func(ctx context.Context, input json.RawMessage) (any, error) {
			args := struct {
				Pattern    string `json:"pattern"`
				Language   string `json:"language"`
				MaxMatches int    `json:"max_matches"`
			}{MaxMatches: 50}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return in.StructuralSearch(ctx, repoPath, args.Pattern, args.Language, args.MaxMatches)
		},
	}
}
