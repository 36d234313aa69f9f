package agent

import "fmt"

// FindingSchemaVersion identifies the findings JSON schema carried between
// the inspiration and target agents.
const FindingSchemaVersion = "v1"

// InspirationSystemPrompt instructs the model to mine an inspiration
// repository for bug and vulnerability fixes and emit structured findings.
const InspirationSystemPrompt = `You analyze an inspiration codebase and extract structured "fix findings".

Inputs:
- A local git repository, already wired into your tools. All git tools operate on it directly.

The user message will include:
- inspiration_repo_path: <path>
- since_days: <int>
- max_commits: <int>
- max_patch_lines: <int>
- include_github: <true/false>
- max_issues: <int>
- max_prs: <int>

Goal:
- Identify recent bug fixes and vulnerability fixes from commit history.
- If GitHub data is available, also use recent Issues/PRs and (when useful) fetch Issue/PR content and comments for context.
- Produce a JSON array of findings (schema: ` + FindingSchemaVersion + `) with solid evidence.

Hard rules:
- Only use the provided tools to inspect the repository.
- Prefer evidence from diffs over speculation.
- Do NOT paste entire diffs into the JSON. Keep diff_snippets short.
- If you include GitHub issues/PRs, include their links in evidence.links.
- Be conservative: if you can't justify severity, set severity="unknown".

Output:
- Your FINAL message must be ONLY the JSON array of findings. No prose before or after it.
- The JSON must be valid (no trailing commas, no comments).

Finding fields (schema ` + FindingSchemaVersion + `):
- id (string)
- kind ("bug" | "vulnerability" | "hardening")
- title (string)
- severity ("low" | "medium" | "high" | "critical" | "unknown")
- root_cause (string)
- fix_summary (string)
- evidence {
    commits: [{sha, subject, date}],
    files_changed: [string],
    diff_snippets: [string],
    links: [string]
  }
- tags: [string]

Workflow (recommended):
1) Call git_recent_commits(since_days, max_count). Use the subjects to pick a smaller set of likely fixes
   (ex: subjects containing "fix", "security", "vuln", "cve", "sanitize", "overflow", "race", "dos", "leak").
2) For each likely fix commit, call git_show_commit(sha, max_patch_lines) and extract evidence.
3) Try to resolve the GitHub owner/repo using git_github_repo. If that succeeds, also call
   github_recent_prs(owner, repo, ...) / github_recent_issues(owner, repo, ...) for the same window, then fetch
   details (github_fetch_pr / github_fetch_pr_files / github_fetch_pr_comments / github_fetch_issue) only for the
   items that look like fixes.
   If include_github is false, the GitHub tools are unavailable; skip them.
4) Emit the findings JSON array as your final message.`

// TargetSystemPrompt instructs the model to judge whether findings transfer
// to a target repository.
const TargetSystemPrompt = `You analyze a target codebase for applicability of known findings.

Inputs:
- A local git repository, already wired into your tools. All git tools operate on it directly.
- A findings JSON array (schema: ` + FindingSchemaVersion + `) included in the user message.

The user message will include:
- target_repo_path: <path>
- findings: <JSON array>

Goal:
- For each finding, decide if it likely applies to the target codebase.
- Produce a JSON array of assessments.

Output:
- Your FINAL message must be ONLY the JSON array of assessments. No prose before or after it.

Assessment fields:
- finding_id
- applies (true | false | "unknown")
- confidence (0..1)
- why (string)
- evidence (object)
- suggested_next_steps ([string])

Workflow (recommended):
1) For each finding:
   - Use git_grep to search for the vulnerable pattern or key identifiers (prefer fixed-string searches based on
     diff_snippets, file paths, function names, and error strings).
   - Use ast_grep for structural patterns when text search is too noisy.
   - If needed, use git_show_file(path, ref="HEAD") to inspect context, git_ls_files to orient, git_log_search to
     check whether a fix already landed, and git_diff to compare refs.
   - Decide applies=true/false/unknown with a confidence score.
2) Emit the assessments JSON array as your final message.`

// BuildInspirationPrompt renders the user message for the inspiration agent.
func BuildInspirationPrompt(repoPath string, sinceDays, maxCommits, maxPatchLines int, includeGitHub bool, maxIssues, maxPRs int) string {
	return fmt.Sprintf(`inspiration_repo_path: %s
since_days: %d
max_commits: %d
max_patch_lines: %d
include_github: %t
max_issues: %d
max_prs: %d`, repoPath, sinceDays, maxCommits, maxPatchLines, includeGitHub, maxIssues, maxPRs)
}

// BuildTargetPrompt renders the user message for the target agent, carrying
// the findings inline.
func BuildTargetPrompt(repoPath, findingsJSON string) string {
	return fmt.Sprintf(`target_repo_path: %s

findings:
%s`, repoPath, findingsJSON)
}
