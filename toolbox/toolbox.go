package toolbox

import (
	"github.com/fixscout/fixscout/github"
	"github.com/fixscout/fixscout/gitrepo"
)

// InspirationTools builds the registry for analyzing the inspiration
// repository: commit history, commit details, and hosted issue/PR context.
// GitHub tools are omitted when includeGitHub is false, for repositories
// with no usable github.com remote.
func InspirationTools(in *gitrepo.Inspector, repoPath string, client *github.Client, includeGitHub bool) *Registry {
	tools := []Tool{
		recentCommitsTool(in, repoPath),
		showCommitTool(in, repoPath),
	}
	if includeGitHub {
		tools = append(tools,
			githubRepoTool(in, repoPath),
			recentIssuesTool(client),
			recentPRsTool(client),
			fetchIssueTool(client),
			fetchPRTool(client),
			fetchPRFilesTool(client),
			fetchPRCommentsTool(client),
		)
	}
	return NewRegistry(tools...)
}

// TargetTools builds the registry for probing the target repository:
// content search, file reads, diffs, history search and structural search.
func TargetTools(in *gitrepo.Inspector, repoPath string) *Registry {
	return NewRegistry(
		grepTool(in, repoPath),
		showFileTool(in, repoPath),
		diffTool(in, repoPath),
		logSearchTool(in, repoPath),
		lsFilesTool(in, repoPath),
		astGrepTool(in, repoPath),
	)
}
