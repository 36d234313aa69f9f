// Package evidence tracks which commits and pull requests a run has inspected.
package evidence

import "sync"

type prKey struct {
	owner  string
	repo   string
	number int
}

// Recorder counts the distinct commits and pull requests observed during a
// run. A given commit SHA or (owner, repo, number) triple is counted at most
// once no matter how many times it is recorded. Safe for concurrent use.
//
// The counts are used for run auditing only; nothing gates on them.
type Recorder struct {
	mu      sync.Mutex
	commits map[string]struct{}
	prs     map[prKey]struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		commits: make(map[string]struct{}),
		prs:     make(map[prKey]struct{}),
	}
}

// RecordCommit marks a commit as analyzed. Empty SHAs are ignored.
func (r *Recorder) RecordCommit(sha string) {
	if sha == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits[sha] = struct{}{}
}

// RecordPR marks a pull request as analyzed. Incomplete keys are ignored.
func (r *Recorder) RecordPR(owner, repo string, number int) {
	if owner == "" || repo == "" || number <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prs[prKey{owner: owner, repo: repo, number: number}] = struct{}{}
}

// CommitCount returns the number of distinct commits recorded.
func (r *Recorder) CommitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commits)
}

// PRCount returns the number of distinct pull requests recorded.
func (r *Recorder) PRCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prs)
}

// Reset clears both counters. Called by the orchestrator between runs.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = make(map[string]struct{})
	r.prs = make(map[prKey]struct{})
}
