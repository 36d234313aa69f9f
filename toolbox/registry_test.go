package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fixscout/fixscout/evidence"
	"github.com/fixscout/fixscout/github"
	"github.com/fixscout/fixscout/gitrepo"
)

type stubRunner struct {
	responses map[string]string
	errs      map[string]error
}

func (s *stubRunner) Run(_ context.Context, _ string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	if err, ok := s.errs[key]; ok {
		return "", err
	}
	out, ok := s.responses[key]
	if !ok {
		return "", fmt.Errorf("unexpected git invocation: %v", args)
	}
	return out, nil
}

func newFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newFixtureInspector(runner gitrepo.Runner) (*gitrepo.Inspector, *evidence.Recorder) {
	rec := evidence.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gitrepo.NewInspector(runner, rec, logger), rec
}

func TestRegistryDispatch(t *testing.T) {
	repo := newFixtureRepo(t)
	runner := &stubRunner{responses: map[string]string{
		"ls-files": "a.go\nb.go\n",
	}}
	in, _ := newFixtureInspector(runner)
	registry := TargetTools(in, repo)

	result, err := registry.Call(context.Background(), "git_ls_files", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	files, ok := result.([]string)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if len(files) != 2 || files[0] != "a.go" {
		t.Errorf("files = %v", files)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	repo := newFixtureRepo(t)
	in, _ := newFixtureInspector(&stubRunner{})
	registry := TargetTools(in, repo)

	if _, err := registry.Call(context.Background(), "no_such_tool", nil); err == nil {
		t.Error("expected error for unknown tool, got nil")
	}
}

func TestToolDefaultsApplied(t *testing.T) {
	repo := newFixtureRepo(t)
	runner := &stubRunner{responses: map[string]string{
		// fixed_string defaults to true, max defaults to 50.
		"grep -n --full-name --no-color -I -F needle": "a.go:1:needle here\n",
	}}
	in, _ := newFixtureInspector(runner)
	registry := TargetTools(in, repo)

	result, err := registry.Call(context.Background(), "git_grep", json.RawMessage(`{"pattern": "needle"}`))
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	matches := result.([]gitrepo.SearchMatch)
	if len(matches) != 1 || matches[0].Line != 1 {
		t.Errorf("matches = %+v", matches)
	}
}

func TestToolDefaultsOverridden(t *testing.T) {
	repo := newFixtureRepo(t)
	runner := &stubRunner{responses: map[string]string{
		"grep -n --full-name --no-color -I needle.*": "a.go:4:needle four\n",
	}}
	in, _ := newFixtureInspector(runner)
	registry := TargetTools(in, repo)

	input := json.RawMessage(`{"pattern": "needle.*", "fixed_string": false}`)
	result, err := registry.Call(context.Background(), "git_grep", input)
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	matches := result.([]gitrepo.SearchMatch)
	if len(matches) != 1 || matches[0].Line != 4 {
		t.Errorf("matches = %+v", matches)
	}
}

func TestInvalidArgumentsFailTheCall(t *testing.T) {
	repo := newFixtureRepo(t)
	in, _ := newFixtureInspector(&stubRunner{})
	registry := TargetTools(in, repo)

	_, err := registry.Call(context.Background(), "git_grep", json.RawMessage(`{"pattern": 7}`))
	if err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestGitHubRepoToolErrorRecords(t *testing.T) {
	repo := newFixtureRepo(t)

	t.Run("missing remote", func(t *testing.T) {
		runner := &stubRunner{errs: map[string]error{
			"remote get-url origin": &gitrepo.CommandError{
				Args:     []string{"remote", "get-url", "origin"},
				ExitCode: 2,
				Stderr:   "error: No such remote 'origin'",
			},
		}}
		in, _ := newFixtureInspector(runner)
		registry := InspirationTools(in, repo, nil, true)

		result, err := registry.Call(context.Background(), "git_github_repo", nil)
		if err != nil {
			t.Fatalf("Call() error: %v", err)
		}
		record := result.(map[string]string)
		if !strings.Contains(record["error"], "Failed to read git remote 'origin'") {
			t.Errorf("record = %v", record)
		}
	})

	t.Run("non-github remote", func(t *testing.T) {
		runner := &stubRunner{responses: map[string]string{
			"remote get-url origin": "https://gitlab.com/acme/tool.git\n",
		}}
		in, _ := newFixtureInspector(runner)
		registry := InspirationTools(in, repo, nil, true)

		result, err := registry.Call(context.Background(), "git_github_repo", nil)
		if err != nil {
			t.Fatalf("Call() error: %v", err)
		}
		record := result.(map[string]string)
		want := "Could not parse a github.com remote from: https://gitlab.com/acme/tool.git"
		if record["error"] != want {
			t.Errorf("record = %v, want error %q", record, want)
		}
	})

	t.Run("resolves owner and repo", func(t *testing.T) {
		runner := &stubRunner{responses: map[string]string{
			"remote get-url origin": "git@github.com:acme/tool.git\n",
		}}
		in, _ := newFixtureInspector(runner)
		registry := InspirationTools(in, repo, nil, true)

		result, err := registry.Call(context.Background(), "git_github_repo", nil)
		if err != nil {
			t.Fatalf("Call() error: %v", err)
		}
		parsed := result.(*github.Repo)
		if parsed.Owner != "acme" || parsed.Repo != "tool" {
			t.Errorf("parsed = %+v", parsed)
		}
	})
}

func TestGitHubRequestFailureBecomesErrorRecord(t *testing.T) {
	repo := newFixtureRepo(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	rec := evidence.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := github.NewClient(rec, logger, github.WithBaseURL(server.URL))
	in, _ := newFixtureInspector(&stubRunner{})
	registry := InspirationTools(in, repo, client, true)

	input := json.RawMessage(`{"owner": "acme", "repo": "tool"}`)
	result, err := registry.Call(context.Background(), "github_recent_issues", input)
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	records := result.([]map[string]string)
	if len(records) != 1 || !strings.Contains(records[0]["error"], "GitHub request failed") {
		t.Errorf("records = %v", records)
	}
}

func TestInspirationToolsWithoutGitHub(t *testing.T) {
	repo := newFixtureRepo(t)
	in, _ := newFixtureInspector(&stubRunner{})
	registry := InspirationTools(in, repo, nil, false)

	for _, tool := range registry.Tools() {
		if strings.HasPrefix(tool.Name, "github_") || tool.Name == "git_github_repo" {
			t.Errorf("unexpected GitHub tool %s", tool.Name)
		}
	}
	if _, err := registry.Call(context.Background(), "github_recent_issues", nil); err == nil {
		t.Error("expected unknown tool error, got nil")
	}
}
