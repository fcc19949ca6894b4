// Package llm generates an optional narrative summary of a finished
// case report. The summary is strictly decorative: it is produced after
// scoring from the already-final report and nothing downstream reads it
// back. A failed or unavailable provider degrades to a warning, never
// to a failed analysis.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative summary of the case report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the finished case report to summarize
	Report *model.CaseReport

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated narrative text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerSecond and Burst throttle API calls during batch runs
	RequestsPerSecond float64
	Burst             int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Model:             "",
		Timeout:           30,
		MaxTokens:         1000,
		RequestsPerSecond: 1,
		Burst:             2,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:          mc.Provider,
		Model:             mc.Model,
		APIKey:            mc.APIKey,
		BaseURL:           mc.BaseURL,
		Timeout:           mc.Timeout,
		MaxTokens:         mc.MaxTokens,
		RequestsPerSecond: mc.RequestsPerSecond,
		Burst:             mc.Burst,
	}
}

// BuildPrompt constructs the default summarization prompt. The tags and
// scores it quotes are heuristic outputs; the prompt says so explicitly
// so the narrative does not overstate them.
func BuildPrompt(report *model.CaseReport) string {
	var b strings.Builder

	b.WriteString(`You are summarizing an automated communications analysis for an investigator.

CRITICAL RULES:
1. Every tag, flag, and score below is a HEURISTIC output, not a finding of fact. Describe them as such.
2. Do not speculate about guilt, intent, or identity. Use phrases like:
   - "The automated analysis flagged..."
   - "X events were tagged as..."
   - "This pattern may warrant review..."
3. Do not invent contacts, dates, or events beyond those listed.
4. Keep the summary to 4-6 sentences.

`)

	fmt.Fprintf(&b, "Case Summary:\n")
	fmt.Fprintf(&b, "- Records: %d SMS, %d calls, %d emails\n",
		report.Counts.SMS, report.Counts.Calls, report.Counts.Emails)
	if start, end, ok := report.TimeRange(); ok {
		fmt.Fprintf(&b, "- Time range: %s to %s\n",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if report.SubjectAddress != "" {
		fmt.Fprintf(&b, "- Inferred subject address (frequency heuristic): %s\n", report.SubjectAddress)
	}
	fmt.Fprintf(&b, "- Suspicious events: %d of %d\n",
		len(report.SuspiciousEvents()), len(report.Timeline))
	fmt.Fprintf(&b, "- Simple risk score: %d/100 (%s)\n",
		report.Assessment.SimpleScore, report.Assessment.SimpleLevel())
	fmt.Fprintf(&b, "- Weighted risk score: %.1f/100 (%s)\n",
		report.Assessment.Weighted.Score, report.Assessment.Weighted.Level())

	if len(report.Assessment.Flags) > 0 {
		b.WriteString("\nRisk Flags:\n")
		for i, flag := range report.Assessment.Flags {
			if i >= 5 {
				fmt.Fprintf(&b, "... and %d more flags\n", len(report.Assessment.Flags)-5)
				break
			}
			fmt.Fprintf(&b, "- %s\n", flag.Label)
		}
	}

	if len(report.TopContacts) > 0 {
		b.WriteString("\nTop Contacts:\n")
		for i, c := range report.TopContacts {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s (%d interactions)\n", c.Address, c.TotalInteractions())
		}
	}

	b.WriteString("\nProvide the narrative summary now.")
	return b.String()
}

const systemPrompt = "You are a careful assistant that summarizes automated communications analyses for investigators, always describing outputs as heuristic rather than factual."
