// Package report renders findings and assessments as standalone HTML
// documents for human review.
package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/fixscout/fixscout/agent"
)

var findingsTemplate = template.Must(template.New("findings").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Findings</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c1c1c; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: .3rem; }
.finding { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
.severity { display: inline-block; padding: .1rem .5rem; border-radius: 4px; color: #fff; font-size: .85rem; }
.severity-critical, .severity-high { background: #c0392b; }
.severity-medium { background: #d68910; }
.severity-low { background: #2471a3; }
.severity-unknown { background: #7f8c8d; }
pre { background: #f4f4f4; padding: .5rem; overflow-x: auto; }
.meta { color: #666; font-size: .9rem; }
</style>
</head>
<body>
<h1>Findings</h1>
<p class="meta">Generated {{.Generated}} &middot; {{len .Findings}} finding(s)</p>
{{range .Findings}}
<div class="finding">
<h2>{{.Title}}</h2>
<p><span class="severity severity-{{.Severity}}">{{.Severity}}</span> &middot; {{.Kind}} &middot; <code>{{.ID}}</code></p>
<p><strong>Root cause:</strong> {{.RootCause}}</p>
<p><strong>Fix:</strong> {{.FixSummary}}</p>
{{if .Evidence.Commits}}<p><strong>Commits:</strong></p><ul>{{range .Evidence.Commits}}<li><code>{{.SHA}}</code> {{.Subject}} <span class="meta">{{.Date}}</span></li>{{end}}</ul>{{end}}
{{if .Evidence.FilesChanged}}<p><strong>Files:</strong> {{range .Evidence.FilesChanged}}<code>{{.}}</code> {{end}}</p>{{end}}
{{range .Evidence.DiffSnippets}}<pre>{{.}}</pre>{{end}}
{{if .Evidence.Links}}<ul>{{range .Evidence.Links}}<li><a href="{{.}}">{{.}}</a></li>{{end}}</ul>{{end}}
{{if .Tags}}<p class="meta">Tags: {{range .Tags}}{{.}} {{end}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`))

var assessmentsTemplate = template.Must(template.New("assessments").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Target Assessment</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c1c1c; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: .3rem; }
.assessment { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
.applies-true { color: #c0392b; font-weight: bold; }
.applies-false { color: #1e8449; font-weight: bold; }
.applies-unknown { color: #7f8c8d; font-weight: bold; }
.meta { color: #666; font-size: .9rem; }
</style>
</head>
<body>
<h1>Target Assessment</h1>
<p class="meta">Generated {{.Generated}} &middot; {{len .Assessments}} assessment(s)</p>
{{range .Assessments}}
<div class="assessment">
<h2><code>{{.FindingID}}</code></h2>
<p>Applies: <span class="applies-{{.Applies}}">{{.Applies}}</span> &middot; confidence {{printf "%.2f" .Confidence}}</p>
<p>{{.Why}}</p>
{{if .NextSteps}}<p><strong>Next steps:</strong></p><ul>{{range .NextSteps}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>
{{end}}
</body>
</html>
`))

type findingsPage struct {
	Generated string
	Findings  []agent.Finding
}

type assessmentRow struct {
	FindingID  string
	Applies    string
	Confidence float64
	Why        string
	NextSteps  []string
}

type assessmentsPage struct {
	Generated   string
	Assessments []assessmentRow
}

// RenderFindings writes an HTML findings report to w.
func RenderFindings(w io.Writer, findings []agent.Finding) error {
	page := findingsPage{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Findings:  findings,
	}
	if err := findingsTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render findings report: %w", err)
	}
	return nil
}

// RenderAssessments writes an HTML assessment report to w.
func RenderAssessments(w io.Writer, assessments []agent.Assessment) error {
	rows := make([]assessmentRow, 0, len(assessments))
	for _, a := range assessments {
		rows = append(rows, assessmentRow{
			FindingID:  a.FindingID,
			Applies:    a.AppliesString(),
			Confidence: a.Confidence,
			Why:        a.Why,
			NextSteps:  a.SuggestedNextSteps,
		})
	}
	page := assessmentsPage{
		Generated:   time.Now().UTC().Format(time.RFC3339),
		Assessments: rows,
	}
	if err := assessmentsTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render assessment report: %w", err)
	}
	return nil
}
