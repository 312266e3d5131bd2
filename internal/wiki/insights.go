package wiki

import (
	"context"
	"fmt"
	"log"
	"strings"
	"text/template"

	"golang.org/x/time/rate"
)

// LLMCompleter abstracts LLM completion for testability.
type LLMCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// insightsPlaceholder is shown when AI generation fails or is disabled.
const insightsPlaceholder = "AI insights unavailable."

var fileInsightTmpl = template.Must(template.New("insight").Parse(
	`Summarize the purpose and structure of the source file "{{.Path}}" ({{.Language}}, {{.Lines}} lines).

Declared symbols:
{{range .Symbols}}- {{.Name}} ({{.Kind}})
{{end}}
Respond with a short paragraph suitable for a documentation page.`))

// FileInsights generates a short AI summary for one file. A nil completer or
// any completion failure degrades to a placeholder, never an error.
func FileInsights(ctx context.Context, llm LLMCompleter, file ScannedFile) string {
	if llm == nil {
		return insightsPlaceholder
	}

	var b strings.Builder
	if err := fileInsightTmpl.Execute(&b, file); err != nil {
		log.Printf("WARNING: insight prompt for %q failed: %v", file.Path, err)
		return insightsPlaceholder
	}

	response, err := llm.Complete(ctx, b.String())
	if err != nil {
		log.Printf("WARNING: insights for %q failed: %v", file.Path, err)
		return insightsPlaceholder
	}
	return strings.TrimSpace(response)
}

// MockCompleter returns a canned response, standing in for a live provider
// in tests and offline runs.
type MockCompleter struct{}

// Complete returns a fixed summary regardless of prompt.
func (MockCompleter) Complete(_ context.Context, _ string) (string, error) {
	return "This file is part of the analyzed codebase. Its declared symbols and structure are listed above.", nil
}

// RateLimitedCompleter wraps an LLMCompleter with a token-bucket rate limit,
// keeping batch generation within provider quotas.
type RateLimitedCompleter struct {
	inner   LLMCompleter
	limiter *rate.Limiter
}

// NewRateLimitedCompleter creates a wrapper allowing rps requests per second
// with the given burst.
func NewRateLimitedCompleter(inner LLMCompleter, rps float64, burst int) *RateLimitedCompleter {
	return &RateLimitedCompleter{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Complete waits for limiter capacity, then delegates.
func (c *RateLimitedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return c.inner.Complete(ctx, prompt)
}
