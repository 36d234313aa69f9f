package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// RecentCommits lists commits from the last sinceDays days, newest first,
// bounded by maxCount. An empty window yields an empty slice, not an error.
func (in *Inspector) RecentCommits(ctx context.Context, repoPath string, sinceDays, maxCount int) ([]CommitSummary, error) {
	in.logger.Info("reading recent commits",
		"repo", repoPath,
		"since_days", sinceDays,
		"max_count", maxCount,
	)
	if sinceDays <= 0 {
		return nil, fmt.Errorf("since_days must be > 0")
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("max_count must be > 0")
	}

	// Each record: sha, author name, author date, subject.
	format := "%H" + "%x1f" + "%an" + "%x1f" + "%ad" + "%x1f" + "%s" + "%x1e"
	out, err := in.run(ctx, repoPath,
		"log",
		fmt.Sprintf("--since=%d days ago", sinceDays),
		fmt.Sprintf("--max-count=%d", maxCount),
		"--date=iso-strict",
		"--pretty=format:"+format,
	)
	if err != nil {
		return nil, err
	}

	commits := []CommitSummary{}
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.Split(record, fieldSep)
		if len(fields) != 4 {
			continue
		}
		commits = append(commits, CommitSummary{
			SHA:     fields[0],
			Author:  fields[1],
			Date:    fields[2],
			Subject: fields[3],
		})
	}
	in.logger.Info("found recent commits", "count", len(commits))
	return commits, nil
}

// SearchLog greps commit messages across all refs, bounded by maxCount.
// No matches yields an empty slice.
func (in *Inspector) SearchLog(ctx context.Context, repoPath, pattern string, maxCount int) ([]LogMatch, error) {
	in.logger.Info("searching commit messages",
		"repo", repoPath,
		"pattern", pattern,
		"max_count", maxCount,
	)
	if maxCount <= 0 {
		return nil, fmt.Errorf("max_count must be > 0")
	}

	format := "%H" + "%x1f" + "%s" + "%x1f" + "%ad" + "%x1e"
	out, err := in.run(ctx, repoPath,
		"log",
		"--grep="+pattern,
		"--all",
		fmt.Sprintf("--max-count=%d", maxCount),
		"--date=iso-strict",
		"--pretty=format:"+format,
	)
	if err != nil {
		return nil, err
	}

	results := []LogMatch{}
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.Split(record, fieldSep)
		if len(fields) != 3 {
			continue
		}
		results = append(results, LogMatch{SHA: fields[0], Subject: fields[1], Date: fields[2]})
	}
	in.logger.Info("found matching commits", "count", len(results))
	return results, nil
}

// ListFiles lists tracked files, optionally restricted to a path prefix,
// truncated deterministically at maxFiles.
func (in *Inspector) ListFiles(ctx context.Context, repoPath, pathPrefix string, maxFiles int) ([]string, error) {
	in.logger.Info("listing files",
		"repo", repoPath,
		"prefix", pathPrefix,
		"max_files", maxFiles,
	)
	if maxFiles <= 0 {
		return nil, fmt.Errorf("max_files must be > 0")
	}

	args := []string{"ls-files"}
	if pathPrefix != "" {
		args = append(args, pathPrefix)
	}
	out, err := in.run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, line := range splitLines(out) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		files = append(files, line)
		if len(files) >= maxFiles {
			break
		}
	}
	in.logger.Info("listed files", "count", len(files))
	return files, nil
}
