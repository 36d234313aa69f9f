package gitrepo

// CommitSummary is one commit from a history listing, newest first.
type CommitSummary struct {
	SHA     string `json:"sha"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
}

// ChangedFile is one name-status entry from a commit. Status is the raw
// abbreviation git reports (A, M, D, R100, ...), passed through verbatim.
type ChangedFile struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// CommitDetail is a single commit's metadata, changed files and patch.
type CommitDetail struct {
	SHA            string        `json:"sha"`
	Author         string        `json:"author"`
	Date           string        `json:"date"`
	Subject        string        `json:"subject"`
	Body           string        `json:"body"`
	Files          []ChangedFile `json:"files"`
	Patch          string        `json:"patch"`
	PatchTruncated bool          `json:"patch_truncated"`
}

// FileSnapshot is a file's content at a ref. Error is set instead of the
// other fields when the path could not be read at the ref; that is a normal
// outcome for a search agent, not a failed call.
type FileSnapshot struct {
	Ref       string `json:"ref,omitempty"`
	Path      string `json:"path,omitempty"`
	Content   string `json:"content,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SearchMatch is one git grep hit.
type SearchMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// StructuralMatch is one ast-grep hit, or a single explanatory error record
// when the search could not run. Line is null when the position is unknown.
type StructuralMatch struct {
	File  string `json:"file,omitempty"`
	Line  *int   `json:"line"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// DiffResult is a unified diff between two refs.
type DiffResult struct {
	RefA      string `json:"ref_a"`
	RefB      string `json:"ref_b"`
	Diff      string `json:"diff"`
	Truncated bool   `json:"truncated"`
}

// LogMatch is one commit whose message matched a log search.
type LogMatch struct {
	SHA     string `json:"sha"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}
