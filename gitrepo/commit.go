package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// ShowCommit reads a single commit's metadata, changed files and patch. The
// patch is truncated to maxPatchLines with an explicit marker so the reader
// knows content is missing. The commit is recorded as examined evidence.
func (in *Inspector) ShowCommit(ctx context.Context, repoPath, sha string, maxPatchLines int) (*CommitDetail, error) {
	in.logger.Info("showing commit", "repo", repoPath, "sha", sha, "max_patch_lines", maxPatchLines)
	if sha == "" {
		return nil, fmt.Errorf("sha must not be empty")
	}
	if maxPatchLines <= 0 {
		return nil, fmt.Errorf("max_patch_lines must be > 0")
	}

	format := "%H" + "%x1f" + "%an" + "%x1f" + "%ad" + "%x1f" + "%s" + "%x1f" + "%b"
	meta, err := in.run(ctx, repoPath,
		"show",
		"--no-color",
		"--date=iso-strict",
		"--pretty=format:"+format,
		"--name-status",
		"--no-patch",
		sha,
	)
	if err != nil {
		return nil, err
	}

	lines := splitLines(meta)
	if len(lines) == 0 {
		return nil, fmt.Errorf("unexpected empty output from git show for %s", sha)
	}
	fields := strings.SplitN(lines[0], fieldSep, 5)
	if len(fields) != 5 {
		return nil, fmt.Errorf("unexpected git show header for %s: %q", sha, lines[0])
	}

	detail := &CommitDetail{
		SHA:     fields[0],
		Author:  fields[1],
		Date:    fields[2],
		Subject: fields[3],
		Body:    strings.TrimSpace(fields[4]),
		Files:   []ChangedFile{},
	}

	// Name-status lines follow the header, one "STATUS\tPATH" per file.
	// Rename entries carry two paths; the status code is kept verbatim.
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		detail.Files = append(detail.Files, ChangedFile{Status: parts[0], Path: parts[1]})
	}

	patch, err := in.run(ctx, repoPath, "show", "--no-color", "--format=", "--patch", sha)
	if err != nil {
		return nil, err
	}
	patchLines := splitLines(patch)
	if len(patchLines) > maxPatchLines {
		detail.Patch = strings.Join(patchLines[:maxPatchLines], "\n") + "\n\n[patch truncated]"
		detail.PatchTruncated = true
	} else {
		detail.Patch = patch
	}

	in.recorder.RecordCommit(detail.SHA)
	return detail, nil
}
