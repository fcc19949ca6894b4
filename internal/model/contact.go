package model

import "time"

// Contact aggregates interaction statistics for one canonical address.
// Built fresh on every aggregation pass; never persisted.
type Contact struct {
	Address            string    `json:"address"`
	SMSCount           int       `json:"sms_count"`
	CallCount          int       `json:"call_count"`
	TotalCallDuration  int       `json:"total_call_duration"`
	SentEmailCount     int       `json:"sent_email_count"`
	ReceivedEmailCount int       `json:"received_email_count"`
	LastSMS            time.Time `json:"last_sms,omitempty"`
	LastCall           time.Time `json:"last_call,omitempty"`
	LastEmailSent      time.Time `json:"last_email_sent,omitempty"`
	LastEmailReceived  time.Time `json:"last_email_received,omitempty"`
}

// TotalInteractions is the combined event count across all kinds.
func (c *Contact) TotalInteractions() int {
	return c.SMSCount + c.CallCount + c.SentEmailCount + c.ReceivedEmailCount
}

// LastSeen returns the most recent interaction timestamp of any kind,
// or the zero time when the contact has none recorded.
func (c *Contact) LastSeen() time.Time {
	last := c.LastSMS
	for _, t := range []time.Time{c.LastCall, c.LastEmailSent, c.LastEmailReceived} {
		if t.After(last) {
			last = t
		}
	}
	return last
}
