package agent

import (
	"strings"
	"testing"
)

const sampleFindings = `[
  {
    "id": "f-001",
    "kind": "vulnerability",
    "title": "Path traversal in archive extraction",
    "severity": "high",
    "root_cause": "entry names were joined to the destination without normalization",
    "fix_summary": "reject entries escaping the destination directory",
    "evidence": {
      "commits": [{"sha": "abc123", "subject": "fix: validate archive entry paths", "date": "2025-05-01T10:00:00+00:00"}],
      "files_changed": ["internal/archive/extract.go"],
      "diff_snippets": ["+if strings.Contains(name, \"..\") {"],
      "links": ["https://github.com/acme/tool/pull/42"]
    },
    "tags": ["path-traversal"]
  }
]`

func TestParseFindings(t *testing.T) {
	findings, err := ParseFindings(sampleFindings)
	if err != nil {
		t.Fatalf("ParseFindings() error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.ID != "f-001" || f.Kind != "vulnerability" || f.Severity != "high" {
		t.Errorf("finding = %+v", f)
	}
	if len(f.Evidence.Commits) != 1 || f.Evidence.Commits[0].SHA != "abc123" {
		t.Errorf("evidence = %+v", f.Evidence)
	}
}

func TestParseFindingsStripsMarkdownFences(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "json fence", response: "```json\n" + sampleFindings + "\n```"},
		{name: "bare fence", response: "```\n" + sampleFindings + "\n```"},
		{name: "surrounding whitespace", response: "\n\n  " + sampleFindings + "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := ParseFindings(tt.response)
			if err != nil {
				t.Fatalf("ParseFindings() error: %v", err)
			}
			if len(findings) != 1 {
				t.Errorf("got %d findings, want 1", len(findings))
			}
		})
	}
}

func TestParseFindingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "I could not find anything."},
		{name: "missing id", response: `[{"title": "something"}]`},
		{name: "missing title", response: `[{"id": "f-001"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFindings(tt.response); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseAssessments(t *testing.T) {
	response := `[
	  {"finding_id": "f-001", "applies": true, "confidence": 0.8, "why": "same extraction helper present", "evidence": {"matches": 3}, "suggested_next_steps": ["add entry path validation"]},
	  {"finding_id": "f-002", "applies": "unknown", "confidence": 0.3, "why": "pattern not found", "evidence": {}}
	]`
	assessments, err := ParseAssessments(response)
	if err != nil {
		t.Fatalf("ParseAssessments() error: %v", err)
	}
	if len(assessments) != 2 {
		t.Fatalf("got %d assessments, want 2", len(assessments))
	}
	if got := assessments[0].AppliesString(); got != "true" {
		t.Errorf("AppliesString() = %q, want true", got)
	}
	if got := assessments[1].AppliesString(); got != "unknown" {
		t.Errorf("AppliesString() = %q, want unknown", got)
	}
	if assessments[0].Confidence != 0.8 {
		t.Errorf("Confidence = %v", assessments[0].Confidence)
	}
}

func TestParseAssessmentsRejectsMissingFindingID(t *testing.T) {
	if _, err := ParseAssessments(`[{"applies": false}]`); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limit", err: errString("got 429 too many requests"), want: true},
		{name: "server error", err: errString("unexpected 503 from upstream"), want: true},
		{name: "network", err: errString("connection reset by peer"), want: true},
		{name: "timeout", err: errString("request timeout"), want: true},
		{name: "auth failure", err: errString("401 unauthorized"), want: false},
		{name: "bad request", err: errString("invalid model name"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestTokenUsageAdd(t *testing.T) {
	total := TokenUsage{}
	total.Add(TokenUsage{InputTokens: 100, OutputTokens: 20, CacheReadInputTokens: 5})
	total.Add(TokenUsage{InputTokens: 50, OutputTokens: 10, CacheCreationInputTokens: 7})

	if total.InputTokens != 150 || total.OutputTokens != 30 {
		t.Errorf("total = %+v", total)
	}
	if total.CacheReadInputTokens != 5 || total.CacheCreationInputTokens != 7 {
		t.Errorf("cache totals = %+v", total)
	}
}

func TestBuildPrompts(t *testing.T) {
	prompt := BuildInspirationPrompt("/tmp/repo", 30, 50, 400, true, 50, 50)
	for _, want := range []string{"inspiration_repo_path: /tmp/repo", "since_days: 30", "include_github: true"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	target := BuildTargetPrompt("/tmp/other", `[{"id": "f-001"}]`)
	if !strings.Contains(target, "target_repo_path: /tmp/other") || !strings.Contains(target, `"f-001"`) {
		t.Errorf("target prompt = %s", target)
	}
}
