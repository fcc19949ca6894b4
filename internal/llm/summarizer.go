package llm

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/time/rate"

	"github.com/commtrace/commtrace/internal/model"
)

// addressPattern matches phone-like tokens in the generated narrative
// so mentions of addresses absent from the report can be flagged.
var addressPattern = regexp.MustCompile(`\+\d{7,15}`)

// Summarizer wraps a provider with rate limiting and turns raw provider
// output into a model.CaseSummary. A nil provider means LLM is disabled
// and every call returns a disabled summary.
type Summarizer struct {
	provider Provider
	limiter  *rate.Limiter
	config   Config
}

// NewSummarizer builds a Summarizer from configuration. The error is
// only non-nil for a misconfigured provider; a blank provider name is
// valid and yields a disabled summarizer.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Summarizer{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		config:   config,
	}, nil
}

// Enabled reports whether a provider is configured.
func (s *Summarizer) Enabled() bool {
	return s != nil && s.provider != nil
}

// Summarize produces the narrative for a finished report. Provider
// errors come back as a summary carrying a warning, not as a pipeline
// error; the deterministic report stands on its own.
func (s *Summarizer) Summarize(ctx context.Context, report *model.CaseReport) *model.CaseSummary {
	if !s.Enabled() {
		return &model.CaseSummary{Enabled: false}
	}

	summary := &model.CaseSummary{
		Enabled:  true,
		Provider: s.provider.Name(),
		Model:    s.config.Model,
	}

	if err := s.limiter.Wait(ctx); err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("rate limiter: %v", err))
		return summary
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{Report: report})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("summarization failed: %v", err))
		return summary
	}

	summary.Model = resp.Model
	summary.SummaryMD = resp.Summary
	summary.Warnings = append(summary.Warnings, auditMentions(resp.Summary, report)...)
	return summary
}

// auditMentions flags phone-like addresses in the narrative that do not
// appear in the report. The narrative is kept either way; the warning
// tells the reader which mentions are unverifiable.
func auditMentions(summary string, report *model.CaseReport) []string {
	var warnings []string
	seen := make(map[string]bool)
	for _, addr := range addressPattern.FindAllString(summary, -1) {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		if _, ok := report.Contacts[addr]; !ok {
			warnings = append(warnings, fmt.Sprintf("narrative mentions address not in report: %s", addr))
		}
	}
	return warnings
}
