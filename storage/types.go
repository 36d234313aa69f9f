package storage

// TokenUsage represents Claude API token usage for one run.
type TokenUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
}

// Run records one complete analysis: the repositories examined, the raw
// findings and assessments JSON, and evidence counters.
type Run struct {
	ID              string      `json:"id"`
	InspirationPath string      `json:"inspiration_path"`
	TargetPath      string      `json:"target_path,omitempty"`
	Model           string      `json:"model"`
	FindingsJSON    string      `json:"findings_json"`
	AssessmentsJSON string      `json:"assessments_json,omitempty"`
	CommitsAnalyzed int         `json:"commits_analyzed"`
	PRsAnalyzed     int         `json:"prs_analyzed"`
	Usage           *TokenUsage `json:"usage,omitempty"`
	CreatedAt       string      `json:"created_at"`
}
