package model

import "time"

// SourceCounts are the per-stream record counts of one case.
type SourceCounts struct {
	SMS    int `json:"sms_count"`
	Calls  int `json:"call_count"`
	Emails int `json:"email_count"`
}

// Total is the combined record count.
func (c SourceCounts) Total() int { return c.SMS + c.Calls + c.Emails }

// CaseReport is the complete analysis result for one case: the fused
// timeline, the contact map, the inferred subject address (may be empty),
// and the risk assessment. Re-running the pipeline recomputes everything
// from scratch; nothing here is mutated after it is produced.
type CaseReport struct {
	CaseDir     string    `json:"case_dir,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Counts   SourceCounts        `json:"data_summary"`
	Contacts map[string]*Contact `json:"contacts"`

	// TopContacts are the contacts ranked by total interactions,
	// descending, ties broken by address for determinism.
	TopContacts []*Contact `json:"top_contacts"`

	// SubjectAddress is a frequency heuristic, not a verified identity.
	// Empty when no guess could be made.
	SubjectAddress string `json:"subject_address,omitempty"`

	Timeline   []TimelineEvent `json:"timeline"`
	Assessment Assessment      `json:"risk_assessment"`

	// LLM holds the optional narrative summary. It is generated after
	// scoring and never feeds back into tags, flags, or scores.
	LLM *CaseSummary `json:"llm,omitempty"`
}

// SuspiciousEvents returns the timeline events carrying a suspicious tag,
// in timeline order.
func (r *CaseReport) SuspiciousEvents() []TimelineEvent {
	var out []TimelineEvent
	for _, ev := range r.Timeline {
		if ev.Tag.IsSuspicious() {
			out = append(out, ev)
		}
	}
	return out
}

// TimeRange returns the first and last timeline timestamps. ok is false
// for an empty timeline.
func (r *CaseReport) TimeRange() (start, end time.Time, ok bool) {
	if len(r.Timeline) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return r.Timeline[0].Timestamp, r.Timeline[len(r.Timeline)-1].Timestamp, true
}

// CaseSummary is an optional LLM-generated narrative. It is clearly
// separated from the deterministic outputs and never affects them.
type CaseSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
