package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CommitRef identifies one commit cited as evidence.
type CommitRef struct {
	SHA     string `json:"sha"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

// Evidence backs a finding with concrete repository artifacts.
type Evidence struct {
	Commits      []CommitRef `json:"commits"`
	FilesChanged []string    `json:"files_changed"`
	DiffSnippets []string    `json:"diff_snippets"`
	Links        []string    `json:"links"`
}

// Finding is one extracted bug or vulnerability fix.
type Finding struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Title      string   `json:"title"`
	Severity   string   `json:"severity"`
	RootCause  string   `json:"root_cause"`
	FixSummary string   `json:"fix_summary"`
	Evidence   Evidence `json:"evidence"`
	Tags       []string `json:"tags"`
}

// Assessment is the target agent's verdict on one finding. Applies is kept
// raw because the model may answer true, false or the string "unknown".
type Assessment struct {
	FindingID          string          `json:"finding_id"`
	Applies            json.RawMessage `json:"applies"`
	Confidence         float64         `json:"confidence"`
	Why                string          `json:"why"`
	Evidence           json.RawMessage `json:"evidence"`
	SuggestedNextSteps []string        `json:"suggested_next_steps"`
}

// AppliesString renders the applies verdict as a plain string.
func (a *Assessment) AppliesString() string {
	s := strings.TrimSpace(string(a.Applies))
	return strings.Trim(s, `"`)
}

// ParseFindings parses the inspiration agent's final message into findings.
func ParseFindings(response string) ([]Finding, error) {
	cleaned := cleanResponse(response)

	var findings []Finding
	if err := json.Unmarshal([]byte(cleaned), &findings); err != nil {
		return nil, fmt.Errorf("failed to parse findings as JSON: %w\nResponse: %s", err, cleaned)
	}

	for i, f := range findings {
		if f.ID == "" {
			return nil, fmt.Errorf("finding %d has empty id", i)
		}
		if f.Title == "" {
			return nil, fmt.Errorf("finding %q has empty title", f.ID)
		}
	}
	return findings, nil
}

// ParseAssessments parses the target agent's final message into assessments.
func ParseAssessments(response string) ([]Assessment, error) {
	cleaned := cleanResponse(response)

	var assessments []Assessment
	if err := json.Unmarshal([]byte(cleaned), &assessments); err != nil {
		return nil, fmt.Errorf("failed to parse assessments as JSON: %w\nResponse: %s", err, cleaned)
	}

	for i, a := range assessments {
		if a.FindingID == "" {
			return nil, fmt.Errorf("assessment %d has empty finding_id", i)
		}
	}
	return assessments, nil
}

// cleanResponse removes markdown code blocks and other formatting.
func cleanResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}

	response = strings.TrimSuffix(response, "```")

	return strings.TrimSpace(response)
}
