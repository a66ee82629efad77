// Package advisor turns a producer's quality profile and open alerts into a
// short remediation plan using the Anthropic API. It sits entirely outside
// the scoring path: heuristic verdicts stay deterministic whether or not an
// advisor is configured.
package advisor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/slopwatch/slopwatch/internal/types"
)

// ModelDefault is the cost-efficient tier: remediation advice is a simple
// summarization task, not deep reasoning.
const ModelDefault = "claude-3-5-haiku-20241022"

// GetModel returns the advisor model, checking SLOPWATCH_MODEL first.
func GetModel() string {
	if model := os.Getenv("SLOPWATCH_MODEL"); model != "" {
		return model
	}
	return ModelDefault
}

// Advisor generates remediation guidance for degraded producers.
type Advisor struct {
	client *anthropic.Client
	model  string
	sem    *semaphore.Weighted // bounds concurrent API calls
}

// Config holds advisor construction options.
type Config struct {
	APIKey         string // falls back to ANTHROPIC_API_KEY
	Model          string
	MaxConcurrency int64
}

// New creates an advisor. It fails when no API key is available so callers
// can decide to run without one.
func New(cfg *Config) (*Advisor, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetModel()
	}

	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Advisor{
		client: &client,
		model:  model,
		sem:    semaphore.NewWeighted(concurrency),
	}, nil
}

// Advise asks for a remediation plan for one producer. The returned text is
// advisory prose for an operator, not structured data.
func (a *Advisor) Advise(ctx context.Context, profile *types.AgentQualityProfile, alerts []*types.QualityAlert) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is required")
	}

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire advisor slot: %w", err)
	}
	defer a.sem.Release(1)

	prompt := buildPrompt(profile, alerts)

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty advisor response")
	}
	return text.String(), nil
}

func buildPrompt(profile *types.AgentQualityProfile, alerts []*types.QualityAlert) string {
	var b strings.Builder
	b.WriteString("You are reviewing the output quality of an automated text producer.\n\n")
	fmt.Fprintf(&b, "Producer: %s\n", profile.ProducerID)
	fmt.Fprintf(&b, "Requests scored: %d\n", profile.RequestCount)
	fmt.Fprintf(&b, "Average quality score: %.2f (0-1)\n", profile.AverageScore)
	fmt.Fprintf(&b, "Slop responses: %d\n", profile.SlopCount)

	if len(profile.Issues) > 0 {
		b.WriteString("\nObserved issues:\n")
		for _, issue := range profile.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	if len(alerts) > 0 {
		b.WriteString("\nOpen alerts:\n")
		for _, alert := range alerts {
			fmt.Fprintf(&b, "- [%s] %s: %s (value %.2f, threshold %.2f)\n",
				alert.Severity, alert.MetricType, alert.Message, alert.CurrentValue, alert.Threshold)
		}
	}

	b.WriteString("\nWrite a short remediation plan (max 5 bullet points) an operator " +
		"can apply to this producer's prompt or generation settings. Be specific; " +
		"do not restate the statistics above.")
	return b.String()
}
