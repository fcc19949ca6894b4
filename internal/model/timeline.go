package model

import "time"

// ForensicTag is the category the classifier assigns to a timeline event.
// The assignment is a keyword/metadata heuristic, not a verified finding.
type ForensicTag string

const (
	TagFinancial     ForensicTag = "FINANCIAL"
	TagSuspicious    ForensicTag = "SUSPICIOUS"
	TagUrgent        ForensicTag = "URGENT"
	TagInternational ForensicTag = "INTERNATIONAL"
	TagExtendedComm  ForensicTag = "EXTENDED_COMM"
	TagSpam          ForensicTag = "SPAM"
	TagBusiness      ForensicTag = "BUSINESS"
	TagPersonal      ForensicTag = "PERSONAL"
	TagRoutine       ForensicTag = "ROUTINE"
)

// SuspiciousTags are the categories counted as suspicious by reports and
// the weighted risk score.
var SuspiciousTags = []ForensicTag{
	TagSuspicious, TagFinancial, TagUrgent, TagInternational, TagExtendedComm, TagSpam,
}

// IsSuspicious reports whether the tag belongs to the suspicious set.
func (t ForensicTag) IsSuspicious() bool {
	for _, s := range SuspiciousTags {
		if t == s {
			return true
		}
	}
	return false
}

// EventDetails holds source-specific side data carried on a timeline event.
type EventDetails struct {
	Direction     string `json:"direction,omitempty"`
	MessageLength int    `json:"message_length,omitempty"`
	Duration      int    `json:"duration,omitempty"`
	CallType      string `json:"call_type,omitempty"`
	Churn         bool   `json:"churn,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
	Subject       string `json:"subject,omitempty"`
	BodyLength    int    `json:"body_length,omitempty"`
}

// TimelineEvent is one entry of the fused timeline. Events are created
// during fusion, classified once, and never mutated afterwards.
//
// The fused timeline is sorted by Timestamp ascending; equal timestamps
// keep construction order (SMS before CALL before EMAIL, input order
// within a source). Consumers depend on that stability.
type TimelineEvent struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Contact   string       `json:"contact"`
	Source    SourceKind   `json:"source"`
	Type      string       `json:"type"`
	Content   string       `json:"content"`
	Tag       ForensicTag  `json:"forensic_tag"`
	Reasons   []string     `json:"reasons"`
	Details   EventDetails `json:"details"`
}
