package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fixscout/fixscout/evidence"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *evidence.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec := evidence.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(rec, logger, WithBaseURL(server.URL), WithToken("test-token")), rec
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

func TestParseRemote(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{name: "ssh with .git", url: "git@github.com:octocat/hello.git", owner: "octocat", repo: "hello"},
		{name: "ssh without .git", url: "git@github.com:octocat/hello", owner: "octocat", repo: "hello"},
		{name: "https with .git", url: "https://github.com/octocat/hello.git", owner: "octocat", repo: "hello"},
		{name: "https without .git", url: "https://github.com/octocat/hello", owner: "octocat", repo: "hello"},
		{name: "https with extra path", url: "https://github.com/octocat/hello/tree/main", owner: "octocat", repo: "hello"},
		{name: "gitlab rejected", url: "https://gitlab.com/octocat/hello.git", wantErr: true},
		{name: "ssh gitlab rejected", url: "git@gitlab.com:octocat/hello.git", wantErr: true},
		{name: "missing repo segment", url: "https://github.com/octocat", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRemote(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRemote(%q) = %+v, want error", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRemote(%q) error: %v", tt.url, err)
			}
			if got.Owner != tt.owner || got.Repo != tt.repo {
				t.Errorf("ParseRemote(%q) = %+v, want %s/%s", tt.url, got, tt.owner, tt.repo)
			}
		})
	}
}

func TestRecentIssuesFiltersPullRequests(t *testing.T) {
	prMarker := json.RawMessage(`{"url": "https://api.github.com/..."}`)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/issues" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("state") != "closed" || q.Get("sort") != "updated" {
			t.Errorf("unexpected query %v", q)
		}
		writeJSON(t, w, []apiIssue{
			{Number: 1, Title: "real issue", State: "closed"},
			{Number: 2, Title: "actually a PR", State: "closed", PullRequest: &prMarker},
			{Number: 3, Title: "another issue", State: "closed", Labels: []apiLabel{{Name: "bug"}}},
		})
	})
	client, _ := newTestClient(t, handler)

	issues, err := client.RecentIssues(context.Background(), "octocat", "hello", 30, 50)
	if err != nil {
		t.Fatalf("RecentIssues() error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2 (PR filtered)", len(issues))
	}
	if issues[0].Number != 1 || issues[1].Number != 3 {
		t.Errorf("issues = %+v", issues)
	}
	if len(issues[1].Labels) != 1 || issues[1].Labels[0] != "bug" {
		t.Errorf("labels = %v", issues[1].Labels)
	}
}

func TestRecentIssuesCapsAndTruncates(t *testing.T) {
	long := strings.Repeat("x", issueBodyPreviewLimit+100)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []apiIssue{
			{Number: 1, Body: long},
			{Number: 2},
			{Number: 3},
		})
	})
	client, _ := newTestClient(t, handler)

	issues, err := client.RecentIssues(context.Background(), "octocat", "hello", 30, 2)
	if err != nil {
		t.Fatalf("RecentIssues() error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if len(issues[0].Body) != issueBodyPreviewLimit {
		t.Errorf("body length = %d, want %d", len(issues[0].Body), issueBodyPreviewLimit)
	}
}

func TestFetchIssueUsesLargerBudget(t *testing.T) {
	long := strings.Repeat("y", issueBodyFullLimit+500)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/issues/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, apiIssue{Number: 42, Title: "deep dive", Body: long})
	})
	client, _ := newTestClient(t, handler)

	issue, err := client.FetchIssue(context.Background(), "octocat", "hello", 42)
	if err != nil {
		t.Fatalf("FetchIssue() error: %v", err)
	}
	if len(issue.Body) != issueBodyFullLimit {
		t.Errorf("body length = %d, want %d", len(issue.Body), issueBodyFullLimit)
	}
}

func TestRecentPRsByRange(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/hello/pulls/1":
			writeJSON(t, w, apiPull{Number: 1, State: "closed", Title: "first"})
		case "/repos/octocat/hello/pulls/2":
			writeJSON(t, w, apiPull{Number: 2, State: "open", Title: "still open"})
		case "/repos/octocat/hello/pulls/3":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		case "/repos/octocat/hello/pulls/4":
			writeJSON(t, w, apiPull{Number: 4, State: "closed", Title: "fourth"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client, rec := newTestClient(t, handler)

	prs, err := client.RecentPRs(context.Background(), "octocat", "hello", RecentPRsOptions{
		MaxCount: 50,
		FromPR:   1,
		ToPR:     4,
	})
	if err != nil {
		t.Fatalf("RecentPRs() error: %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("got %d PRs, want 2 (open and 404 skipped)", len(prs))
	}
	if prs[0].Number != 1 || prs[1].Number != 4 {
		t.Errorf("prs = %+v", prs)
	}
	if got := rec.PRCount(); got != 2 {
		t.Errorf("PRCount() = %d, want 2", got)
	}
}

func TestRecentPRsRangeValidation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid range")
	})
	client, _ := newTestClient(t, handler)

	tests := []struct {
		name string
		opts RecentPRsOptions
	}{
		{name: "from without to", opts: RecentPRsOptions{MaxCount: 10, FromPR: 5}},
		{name: "to without from", opts: RecentPRsOptions{MaxCount: 10, ToPR: 5}},
		{name: "negative bound", opts: RecentPRsOptions{MaxCount: 10, FromPR: -1, ToPR: 5}},
		{name: "inverted range", opts: RecentPRsOptions{MaxCount: 10, FromPR: 9, ToPR: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.RecentPRs(context.Background(), "octocat", "hello", tt.opts); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestRecentPRsByWindow(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/pulls" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, []apiPull{
			{Number: 10, State: "closed", MergedAt: "2099-01-01T00:00:00Z"},
			{Number: 11, State: "closed", MergedAt: "2001-01-01T00:00:00Z"},
			{Number: 12, State: "closed", UpdatedAt: "2099-01-02T00:00:00Z"},
			{Number: 13, State: "closed"},
			{Number: 14, State: "closed", MergedAt: "not-a-date"},
		})
	})
	client, rec := newTestClient(t, handler)

	prs, err := client.RecentPRs(context.Background(), "octocat", "hello", RecentPRsOptions{
		SinceDays: 30,
		MaxCount:  50,
	})
	if err != nil {
		t.Fatalf("RecentPRs() error: %v", err)
	}
	// 11 is out of window; 13 (no dates) and 14 (unparseable) are kept.
	want := []int{10, 12, 13, 14}
	if len(prs) != len(want) {
		t.Fatalf("got %d PRs, want %d: %+v", len(prs), len(want), prs)
	}
	for i, n := range want {
		if prs[i].Number != n {
			t.Errorf("prs[%d].Number = %d, want %d", i, prs[i].Number, n)
		}
	}
	if got := rec.PRCount(); got != 4 {
		t.Errorf("PRCount() = %d, want 4", got)
	}
}

func TestFetchPRFilesPaginatesAndTruncates(t *testing.T) {
	longPatch := strings.Repeat("p", prPatchLimit+1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/pulls/7/files" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("page") {
		case "1":
			files := make([]apiPullFile, perPage)
			for i := range files {
				files[i] = apiPullFile{Filename: fmt.Sprintf("f%d.go", i), Status: "modified"}
			}
			files[0].Patch = longPatch
			writeJSON(t, w, files)
		case "2":
			writeJSON(t, w, []apiPullFile{{Filename: "last.go", Status: "added"}})
		case "3":
			writeJSON(t, w, []apiPullFile{})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	client, rec := newTestClient(t, handler)

	files, err := client.FetchPRFiles(context.Background(), "octocat", "hello", 7, 500)
	if err != nil {
		t.Fatalf("FetchPRFiles() error: %v", err)
	}
	if len(files) != perPage+1 {
		t.Fatalf("got %d files, want %d", len(files), perPage+1)
	}
	if !strings.HasSuffix(files[0].Patch, "\n\n[patch truncated]") {
		t.Errorf("long patch not truncated: %q", files[0].Patch[len(files[0].Patch)-30:])
	}
	if files[perPage].Filename != "last.go" {
		t.Errorf("last file = %+v", files[perPage])
	}
	if got := rec.PRCount(); got != 1 {
		t.Errorf("PRCount() = %d, want 1", got)
	}
}

func TestFetchPRFilesCaps(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		files := make([]apiPullFile, perPage)
		for i := range files {
			files[i] = apiPullFile{Filename: fmt.Sprintf("f%d.go", i)}
		}
		writeJSON(t, w, files)
	})
	client, _ := newTestClient(t, handler)

	files, err := client.FetchPRFiles(context.Background(), "octocat", "hello", 7, 3)
	if err != nil {
		t.Fatalf("FetchPRFiles() error: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("got %d files, want 3", len(files))
	}
}

func TestFetchPRComments(t *testing.T) {
	line := 12
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/hello/issues/7/comments":
			writeJSON(t, w, []apiIssueComment{
				{User: apiUser{Login: "alice"}, Body: "looks good", CreatedAt: "2025-05-01T00:00:00Z"},
			})
		case "/repos/octocat/hello/pulls/7/comments":
			writeJSON(t, w, []apiReviewComment{
				{User: apiUser{Login: "bob"}, Body: "nit", CreatedAt: "2025-05-02T00:00:00Z", Path: "main.go", Line: &line},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client, rec := newTestClient(t, handler)

	comments, err := client.FetchPRComments(context.Background(), "octocat", "hello", 7, 100)
	if err != nil {
		t.Fatalf("FetchPRComments() error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].User != "alice" || comments[0].Path != nil || comments[0].Line != nil {
		t.Errorf("conversation comment = %+v", comments[0])
	}
	if comments[1].Path == nil || *comments[1].Path != "main.go" {
		t.Errorf("review comment path = %v", comments[1].Path)
	}
	if comments[1].Line == nil || *comments[1].Line != 12 {
		t.Errorf("review comment line = %v", comments[1].Line)
	}
	if got := rec.PRCount(); got != 1 {
		t.Errorf("PRCount() = %d, want 1", got)
	}

	// Null path and line must serialize explicitly for conversation comments.
	encoded, err := json.Marshal(comments[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(encoded), `"path":null`) || !strings.Contains(string(encoded), `"line":null`) {
		t.Errorf("encoded = %s", encoded)
	}
}

func TestFetchPRCommentsCapsAcrossStreams(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/hello/issues/7/comments":
			writeJSON(t, w, []apiIssueComment{
				{User: apiUser{Login: "a"}, Body: "1"},
				{User: apiUser{Login: "b"}, Body: "2"},
			})
		case "/repos/octocat/hello/pulls/7/comments":
			t.Error("review comments must not be fetched once the cap is reached")
		}
	})
	client, _ := newTestClient(t, handler)

	comments, err := client.FetchPRComments(context.Background(), "octocat", "hello", 7, 2)
	if err != nil {
		t.Fatalf("FetchPRComments() error: %v", err)
	}
	if len(comments) != 2 {
		t.Errorf("got %d comments, want 2", len(comments))
	}
}

func TestRequestErrorClassification(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "rate limited"}`)
	})
	client, _ := newTestClient(t, handler)

	_, err := client.FetchIssue(context.Background(), "octocat", "hello", 1)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsRequestError(err) {
		t.Errorf("IsRequestError(%v) = false, want true", err)
	}
	if IsNotFound(err) {
		t.Error("403 classified as not found")
	}

	// Argument validation failures are not request errors.
	_, err = client.FetchIssue(context.Background(), "", "", 1)
	if err == nil || IsRequestError(err) {
		t.Errorf("validation error misclassified: %v", err)
	}
}

func TestAuthHeaderSent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q", got)
		}
		writeJSON(t, w, apiIssue{Number: 1})
	})
	client, _ := newTestClient(t, handler)

	if _, err := client.FetchIssue(context.Background(), "octocat", "hello", 1); err != nil {
		t.Fatalf("FetchIssue() error: %v", err)
	}
}
