package gitrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Grep searches tracked file content with git grep. Exit code 1 means no
// matches and yields an empty slice; any other non-zero exit is an error.
// fixedString toggles -F (literal) versus regular-expression matching.
func (in *Inspector) Grep(ctx context.Context, repoPath, pattern string, maxMatches int, fixedString bool) ([]SearchMatch, error) {
	in.logger.Info("grepping repository",
		"repo", repoPath,
		"pattern", pattern,
		"max_matches", maxMatches,
		"fixed_string", fixedString,
	)
	if pattern == "" {
		return nil, fmt.Errorf("pattern must not be empty")
	}
	if maxMatches <= 0 {
		return nil, fmt.Errorf("max_matches must be > 0")
	}

	args := []string{"grep", "-n", "--full-name", "--no-color", "-I"}
	if fixedString {
		args = append(args, "-F")
	}
	args = append(args, pattern)

	out, err := in.run(ctx, repoPath, args...)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
			return []SearchMatch{}, nil
		}
		return nil, err
	}

	matches := []SearchMatch{}
	for _, line := range splitLines(out) {
		// path:line:text, splitting on the first two colons only so text
		// containing colons survives intact.
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		lineNo, convErr := strconv.Atoi(parts[1])
		if convErr != nil {
			continue
		}
		matches = append(matches, SearchMatch{Path: parts[0], Line: lineNo, Text: parts[2]})
		if len(matches) >= maxMatches {
			break
		}
	}
	in.logger.Info("grep finished", "matches", len(matches))
	return matches, nil
}

// astGrepMatch is the subset of ast-grep's JSON output we read.
type astGrepMatch struct {
	File  string `json:"file"`
	Text  string `json:"text"`
	Range struct {
		Start struct {
			Line *int `json:"line"`
		} `json:"start"`
	} `json:"range"`
}

// StructuralSearch runs an ast-grep pattern over the repository. A missing
// binary or unreadable output is reported as a single error record so the
// caller can fall back to text search.
func (in *Inspector) StructuralSearch(ctx context.Context, repoPath, pattern, language string, maxMatches int) ([]StructuralMatch, error) {
	in.logger.Info("structural search",
		"repo", repoPath,
		"pattern", pattern,
		"language", language,
		"max_matches", maxMatches,
	)
	if pattern == "" {
		return nil, fmt.Errorf("pattern must not be empty")
	}
	if maxMatches <= 0 {
		return nil, fmt.Errorf("max_matches must be > 0")
	}

	binary := ""
	for _, candidate := range []string{"ast-grep", "sg"} {
		if path, err := in.lookPath(candidate); err == nil {
			binary = path
			break
		}
	}
	if binary == "" {
		return []StructuralMatch{
			{Error: "ast-grep is not installed (install via: cargo install ast-grep)"},
		}, nil
	}

	args := []string{"--pattern", pattern, "--json"}
	if language != "" {
		args = append(args, "--lang", language)
	}
	args = append(args, repoPath)

	stdout, stderr, runErr := in.runCmd(ctx, binary, args...)
	if runErr != nil && stdout == "" {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = "ast-grep failed"
		}
		in.logger.Warn("ast-grep failed", "error", msg)
		return []StructuralMatch{{Error: msg}}, nil
	}

	var raw []astGrepMatch
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return []StructuralMatch{{Error: "failed to parse ast-grep JSON output"}}, nil
	}

	matches := []StructuralMatch{}
	for _, m := range raw {
		matches = append(matches, StructuralMatch{File: m.File, Line: m.Range.Start.Line, Text: m.Text})
		if len(matches) >= maxMatches {
			break
		}
	}
	in.logger.Info("structural search finished", "matches", len(matches))
	return matches, nil
}
