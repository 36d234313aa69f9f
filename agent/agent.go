// Package agent runs a tool-calling analysis loop against the Anthropic API.
// An agent is given a system prompt, a tool registry and a user prompt, and
// keeps exchanging tool calls and results with the model until it produces a
// final text answer.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fixscout/fixscout/toolbox"
)

const (
	// DefaultModel is the Claude model used for repository analysis.
	DefaultModel = "claude-sonnet-4-20250514"

	// APITimeout is the maximum time to wait for a single API response.
	APITimeout = 3 * time.Minute

	// MaxTurns bounds the tool-calling loop so a confused model cannot spin
	// forever.
	MaxTurns = 60

	// MaxConcurrentToolCalls limits how many tool calls from one assistant
	// turn execute in parallel.
	MaxConcurrentToolCalls = 4

	// MaxRetries is the number of times to retry transient API failures.
	MaxRetries = 3

	// RetryBaseDelay is the initial delay between retries (doubles each attempt).
	RetryBaseDelay = 1 * time.Second
)

// isRetryableError checks if an error is transient and worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		errors.Is(err, context.DeadlineExceeded)
}

// retryWithBackoff executes fn with exponential backoff on retryable errors.
func retryWithBackoff[T any](ctx context.Context, logger *slog.Logger, operation string, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		if !isRetryableError(lastErr) {
			return result, lastErr
		}

		if attempt < MaxRetries {
			delay := RetryBaseDelay * time.Duration(1<<attempt)
			logger.Warn("retrying after transient error",
				"operation", operation,
				"attempt", attempt+1,
				"max_attempts", MaxRetries+1,
				"delay", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return result, fmt.Errorf("max retries exceeded for %s: %w", operation, lastErr)
}

// TokenUsage tracks token consumption across a run.
type TokenUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

func (u *TokenUsage) add(usage anthropic.Usage) {
	u.InputTokens += usage.InputTokens
	u.OutputTokens += usage.OutputTokens
	u.CacheReadInputTokens += usage.CacheReadInputTokens
	u.CacheCreationInputTokens += usage.CacheCreationInputTokens
}

// Add accumulates another run's usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
}

// Result is the outcome of one agent run.
type Result struct {
	// Text is the model's final answer after all tool calls.
	Text string
	// Usage is the total token consumption across all turns.
	Usage TokenUsage
	// Turns is the number of assistant turns taken.
	Turns int
}

// Agent drives the tool-calling loop for one analysis task.
type Agent struct {
	apiKey    string
	model     string
	system    string
	maxTokens int64
	registry  *toolbox.Registry
	logger    *slog.Logger
}

// New creates an agent. An empty model selects DefaultModel.
func New(apiKey, model, system string, maxTokens int64, registry *toolbox.Registry, logger *slog.Logger) *Agent {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Agent{
		apiKey:    apiKey,
		model:     model,
		system:    system,
		maxTokens: maxTokens,
		registry:  registry,
		logger:    logger,
	}
}

// Run executes the loop until the model stops requesting tools or the turn
// budget runs out.
func (a *Agent) Run(ctx context.Context, userPrompt string) (*Result, error) {
	client := anthropic.NewClient(option.WithAPIKey(a.apiKey))

	tools := make([]anthropic.ToolParam, 0, len(a.registry.Tools()))
	for _, t := range a.registry.Tools() {
		tools = append(tools, anthropic.ToolParam{
			Name:        anthropic.F(t.Name),
			Description: anthropic.F(t.Description),
			InputSchema: anthropic.F[interface{}](t.InputSchema),
		})
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
	}

	result := &Result{}
	for turn := 1; turn <= MaxTurns; turn++ {
		timeoutCtx, cancel := context.WithTimeout(ctx, APITimeout)
		message, err := retryWithBackoff(timeoutCtx, a.logger, fmt.Sprintf("turn_%d", turn), func() (*anthropic.Message, error) {
			return client.Messages.New(timeoutCtx, anthropic.MessageNewParams{
				Model:     anthropic.F(anthropic.Model(a.model)),
				MaxTokens: anthropic.F(a.maxTokens),
				System: anthropic.F([]anthropic.TextBlockParam{
					anthropic.NewTextBlock(a.system),
				}),
				Messages: anthropic.F(messages),
				Tools:    anthropic.F(tools),
			})
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("model call failed on turn %d: %w", turn, err)
		}

		result.Turns = turn
		result.Usage.add(message.Usage)

		if message.StopReason != anthropic.MessageStopReasonToolUse {
			result.Text = textContent(message)
			a.logger.Info("agent run finished",
				"turns", result.Turns,
				"input_tokens", result.Usage.InputTokens,
				"output_tokens", result.Usage.OutputTokens,
			)
			return result, nil
		}

		toolResults, err := a.executeToolCalls(ctx, message)
		if err != nil {
			return nil, err
		}

		messages = append(messages, message.ToParam())
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return nil, fmt.Errorf("agent exceeded %d turns without a final answer", MaxTurns)
}

// executeToolCalls runs all tool_use blocks from one assistant turn,
// bounded-parallel, and returns the result blocks in the original order.
func (a *Agent) executeToolCalls(ctx context.Context, message *anthropic.Message) ([]anthropic.ContentBlockParamUnion, error) {
	type call struct {
		id    string
		name  string
		input json.RawMessage
	}

	var calls []call
	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeToolUse {
			calls = append(calls, call{id: block.ID, name: block.Name, input: block.Input})
		}
	}

	results := make([]anthropic.ContentBlockParamUnion, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(MaxConcurrentToolCalls)

	for i, c := range calls {
		i, c := i, c
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			a.logger.Info("tool call", "tool", c.name)
			payload, isErr := a.callTool(gctx, c.name, c.input)
			results[i] = anthropic.NewToolResultBlock(c.id, payload, isErr)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}
	return results, nil
}

// callTool dispatches one tool invocation and serializes the outcome. A tool
// error becomes an is_error result the model can recover from.
func (a *Agent) callTool(ctx context.Context, name string, input json.RawMessage) (string, bool) {
	value, err := a.registry.Call(ctx, name, input)
	if err != nil {
		a.logger.Warn("tool call failed", "tool", name, "error", err)
		return err.Error(), true
	}

	payload, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("tool result not serializable", "tool", name, "error", err)
		return fmt.Sprintf("failed to serialize tool result: %v", err), true
	}
	return string(payload), false
}

// textContent concatenates the text blocks of a message.
func textContent(message *anthropic.Message) string {
	var parts []string
	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
