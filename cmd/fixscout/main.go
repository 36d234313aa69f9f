// Package main provides the fixscout command line interface.
//
// fixscout mines an "inspiration" git repository for recent bug and
// vulnerability fixes, then checks whether those findings transfer to a
// target repository.
//
// Configuration via environment variables:
//
//	ANTHROPIC_API_KEY              - Anthropic API key for Claude (required)
//	GITHUB_TOKEN                   - GitHub token for issue/PR context (optional)
//	GITHUB_APP_ID                  - GitHub App ID for app auth (optional)
//	GITHUB_APP_INSTALLATION_ID     - Installation ID for app auth (optional)
//	GITHUB_PRIVATE_KEY_PATH        - Path to the app's PEM key (optional)
//	DATABASE_URL                   - PostgreSQL connection string (optional)
//
// Usage:
//
//	fixscout --inspiration /path/to/inspiration --target /path/to/target
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/cobra"

	"github.com/fixscout/fixscout/agent"
	"github.com/fixscout/fixscout/anthropic"
	"github.com/fixscout/fixscout/config"
	"github.com/fixscout/fixscout/evidence"
	"github.com/fixscout/fixscout/github"
	"github.com/fixscout/fixscout/gitrepo"
	"github.com/fixscout/fixscout/report"
	"github.com/fixscout/fixscout/storage"
	"github.com/fixscout/fixscout/storage/postgres"
	"github.com/fixscout/fixscout/toolbox"
)

type options struct {
	configPath      string
	model           string
	inspirationPath string
	targetPath      string
	extractOnly     bool
	sinceDays       int
	sinceDate       string
	maxCommits      int
	maxPatchLines   int
	findingsOut     string
	assessmentOut   string
}

func main() {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "fixscout",
		Short:        "Extract fix findings from one repository and test them against another",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the config file")
	flags.StringVar(&opts.model, "model", "", "Claude model override")
	flags.StringVar(&opts.inspirationPath, "inspiration", "", "path to the inspiration repository (required)")
	flags.StringVar(&opts.targetPath, "target", "", "path to the target repository")
	flags.BoolVar(&opts.extractOnly, "extract-only", false, "extract findings without assessing a target")
	flags.IntVar(&opts.sinceDays, "since-days", 0, "history window in days")
	flags.StringVar(&opts.sinceDate, "since-date", "", "history window start date (YYYY-MM-DD or RFC 3339)")
	flags.IntVar(&opts.maxCommits, "max-commits", 0, "maximum commits to list")
	flags.IntVar(&opts.maxPatchLines, "max-patch-lines", 0, "maximum patch lines per commit")
	flags.StringVar(&opts.findingsOut, "findings-out", filepath.Join("outputs", "findings.json"), "findings output path")
	flags.StringVar(&opts.assessmentOut, "assessment-out", filepath.Join("outputs", "target_assessment.json"), "assessment output path")

	if err := cmd.MarkFlagRequired("inspiration"); err != nil {
		panic(err)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	// .env is a development convenience; a missing file is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, opts, time.Now()); err != nil {
		return err
	}

	if err := gitrepo.EnsureRepo(opts.inspirationPath); err != nil {
		return fmt.Errorf("inspiration repository: %w", err)
	}
	if !opts.extractOnly {
		if opts.targetPath == "" {
			return fmt.Errorf("--target is required unless --extract-only is set")
		}
		if err := gitrepo.EnsureRepo(opts.targetPath); err != nil {
			return fmt.Errorf("target repository: %w", err)
		}
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if err := anthropic.ValidateAPIKey(ctx, apiKey); err != nil {
		return err
	}

	recorder := evidence.NewRecorder()
	inspector := gitrepo.NewInspector(gitrepo.ExecRunner{}, recorder, logger)
	githubClient, err := newGitHubClient(recorder, logger)
	if err != nil {
		return err
	}

	totalUsage := agent.TokenUsage{}

	// Phase one: mine the inspiration repository for findings.
	inspirationRegistry := toolbox.InspirationTools(inspector, opts.inspirationPath, githubClient, cfg.Extract.IncludeGitHub)
	inspirationAgent := agent.New(apiKey, cfg.Model.Name, agent.InspirationSystemPrompt, cfg.Model.MaxTokens, inspirationRegistry, logger)

	logger.Info("extracting findings", "repo", opts.inspirationPath, "model", cfg.Model.Name)
	inspirationResult, err := inspirationAgent.Run(ctx, agent.BuildInspirationPrompt(
		opts.inspirationPath,
		cfg.Extract.SinceDays,
		cfg.Extract.MaxCommits,
		cfg.Extract.MaxPatchLines,
		cfg.Extract.IncludeGitHub,
		cfg.Extract.MaxIssues,
		cfg.Extract.MaxPRs,
	))
	if err != nil {
		return fmt.Errorf("inspiration analysis failed: %w", err)
	}
	totalUsage.Add(inspirationResult.Usage)

	findings, err := agent.ParseFindings(inspirationResult.Text)
	if err != nil {
		return err
	}
	findingsJSON, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	if err := writeOutput(opts.findingsOut, findingsJSON); err != nil {
		return err
	}
	logger.Info("wrote findings", "path", opts.findingsOut, "count", len(findings))

	if cfg.Reports.HTML {
		if err := writeHTML(htmlPath(opts.findingsOut), func(f *os.File) error {
			return report.RenderFindings(f, findings)
		}); err != nil {
			return err
		}
	}

	// Phase two: assess the findings against the target repository.
	var assessments []agent.Assessment
	var assessmentsJSON []byte
	if !opts.extractOnly {
		targetRegistry := toolbox.TargetTools(inspector, opts.targetPath)
		targetAgent := agent.New(apiKey, cfg.Model.Name, agent.TargetSystemPrompt, cfg.Model.MaxTokens, targetRegistry, logger)

		logger.Info("assessing target", "repo", opts.targetPath)
		targetResult, err := targetAgent.Run(ctx, agent.BuildTargetPrompt(opts.targetPath, string(findingsJSON)))
		if err != nil {
			return fmt.Errorf("target analysis failed: %w", err)
		}
		totalUsage.Add(targetResult.Usage)

		assessments, err = agent.ParseAssessments(targetResult.Text)
		if err != nil {
			return err
		}
		assessmentsJSON, err = json.MarshalIndent(assessments, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode assessments: %w", err)
		}
		if err := writeOutput(opts.assessmentOut, assessmentsJSON); err != nil {
			return err
		}
		logger.Info("wrote assessments", "path", opts.assessmentOut, "count", len(assessments))

		if cfg.Reports.HTML {
			if err := writeHTML(htmlPath(opts.assessmentOut), func(f *os.File) error {
				return report.RenderAssessments(f, assessments)
			}); err != nil {
				return err
			}
		}
	}

	logger.Info("analysis complete",
		"commits_analyzed", recorder.CommitCount(),
		"prs_analyzed", recorder.PRCount(),
		"input_tokens", totalUsage.InputTokens,
		"output_tokens", totalUsage.OutputTokens,
	)

	if err := storeRun(ctx, cfg, opts, logger, recorder, totalUsage, string(findingsJSON), string(assessmentsJSON)); err != nil {
		// History is best-effort; the analysis itself succeeded.
		logger.Warn("failed to store run history", "error", err)
	}

	recorder.Reset()
	return nil
}

// applyOverrides folds command line flags into the loaded config. now is
// injected for testing date arithmetic.
func applyOverrides(cfg *config.Config, opts *options, now time.Time) error {
	if opts.model != "" {
		cfg.Model.Name = opts.model
	}
	if opts.sinceDays != 0 && opts.sinceDate != "" {
		return fmt.Errorf("--since-days and --since-date are mutually exclusive")
	}
	if opts.sinceDays != 0 {
		if opts.sinceDays < 0 {
			return fmt.Errorf("--since-days must be > 0")
		}
		cfg.Extract.SinceDays = opts.sinceDays
	}
	if opts.sinceDate != "" {
		days, err := sinceDaysFromDate(opts.sinceDate, now)
		if err != nil {
			return err
		}
		cfg.Extract.SinceDays = days
	}
	if opts.maxCommits != 0 {
		if opts.maxCommits < 0 {
			return fmt.Errorf("--max-commits must be > 0")
		}
		cfg.Extract.MaxCommits = opts.maxCommits
	}
	if opts.maxPatchLines != 0 {
		if opts.maxPatchLines < 0 {
			return fmt.Errorf("--max-patch-lines must be > 0")
		}
		cfg.Extract.MaxPatchLines = opts.maxPatchLines
	}
	return cfg.Validate()
}

// sinceDaysFromDate converts a start date into a whole-day window ending
// now, rounding partial days up so the given date is always covered.
func sinceDaysFromDate(value string, now time.Time) (int, error) {
	var start time.Time
	var err error
	if start, err = time.Parse("2006-01-02", value); err != nil {
		start, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return 0, fmt.Errorf("invalid --since-date %q: use YYYY-MM-DD or RFC 3339", value)
		}
	}

	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0, fmt.Errorf("--since-date %q is not in the past", value)
	}
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days, nil
}

// newGitHubClient selects app auth when the app environment is fully set,
// falling back to token (or anonymous) auth otherwise.
func newGitHubClient(recorder *evidence.Recorder, logger *slog.Logger) (*github.Client, error) {
	appID := os.Getenv("GITHUB_APP_ID")
	installationID := os.Getenv("GITHUB_APP_INSTALLATION_ID")
	keyPath := os.Getenv("GITHUB_PRIVATE_KEY_PATH")

	if appID == "" || installationID == "" || keyPath == "" {
		return github.NewClient(recorder, logger), nil
	}

	appIDNum, err := strconv.ParseInt(appID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_APP_ID: %w", err)
	}
	installationIDNum, err := strconv.ParseInt(installationID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_APP_INSTALLATION_ID: %w", err)
	}
	privateKey, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
	}

	logger.Info("using GitHub App authentication", "app_id", appIDNum)
	return github.NewAppClient(appIDNum, installationIDNum, privateKey, recorder, logger)
}

// storeRun persists the run when a database is configured. No configured
// database means history is simply off.
func storeRun(ctx context.Context, cfg *config.Config, opts *options, logger *slog.Logger, recorder *evidence.Recorder, usage agent.TokenUsage, findingsJSON, assessmentsJSON string) error {
	dsn := cfg.Storage.DSN
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil
	}

	store, err := postgres.NewFromDSN(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	run := &storage.Run{
		ID:              uuid.NewString(),
		InspirationPath: opts.inspirationPath,
		TargetPath:      opts.targetPath,
		Model:           cfg.Model.Name,
		FindingsJSON:    findingsJSON,
		AssessmentsJSON: assessmentsJSON,
		CommitsAnalyzed: recorder.CommitCount(),
		PRsAnalyzed:     recorder.PRCount(),
		Usage: &storage.TokenUsage{
			InputTokens:              usage.InputTokens,
			OutputTokens:             usage.OutputTokens,
			CacheReadInputTokens:     usage.CacheReadInputTokens,
			CacheCreationInputTokens: usage.CacheCreationInputTokens,
		},
	}
	if err := store.StoreRun(ctx, run); err != nil {
		return err
	}
	logger.Info("stored run history", "run_id", run.ID)
	return nil
}

func writeOutput(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeHTML(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return render(f)
}

// htmlPath swaps a .json output path's extension for .html.
func htmlPath(jsonPath string) string {
	ext := filepath.Ext(jsonPath)
	return jsonPath[:len(jsonPath)-len(ext)] + ".html"
}
