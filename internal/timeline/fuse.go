// Package timeline fuses normalized records from all sources into one
// chronologically ordered sequence of classified events.
package timeline

import (
	"fmt"
	"sort"

	"github.com/commtrace/commtrace/internal/model"
)

const (
	smsContentLimit     = 200
	subjectContentLimit = 100
)

// Classifier tags one event per record. Implemented by classify.Classifier.
type Classifier interface {
	SMS(model.SMSRecord) (model.ForensicTag, []string)
	Call(model.CallRecord) (model.ForensicTag, []string)
	Email(model.EmailRecord) (model.ForensicTag, []string)
}

// Fuse builds timeline events for every record, classifies each exactly
// once, and stably sorts the result by timestamp ascending. Events are
// constructed SMS first, then CALL, then EMAIL, each in input order, so
// equal-timestamp ties resolve deterministically. Empty inputs produce
// an empty timeline, never an error.
func Fuse(sms []model.SMSRecord, calls []model.CallRecord, emails []model.EmailRecord, c Classifier) []model.TimelineEvent {
	events := make([]model.TimelineEvent, 0, len(sms)+len(calls)+len(emails))

	for _, rec := range sms {
		tag, reasons := c.SMS(rec)
		events = append(events, model.TimelineEvent{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Contact:   rec.Contact,
			Source:    model.SourceSMS,
			Type:      string(rec.Direction),
			Content:   truncate(rec.Message, smsContentLimit),
			Tag:       tag,
			Reasons:   reasons,
			Details: model.EventDetails{
				Direction:     string(rec.Direction),
				MessageLength: len(rec.Message),
			},
		})
	}

	for _, rec := range calls {
		tag, reasons := c.Call(rec)
		events = append(events, model.TimelineEvent{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Contact:   rec.Contact,
			Source:    model.SourceCall,
			Type:      string(rec.Type),
			Content:   fmt.Sprintf("Duration: %ds | Type: %s", rec.Duration, rec.Type),
			Tag:       tag,
			Reasons:   reasons,
			Details: model.EventDetails{
				Duration: rec.Duration,
				CallType: string(rec.Type),
				Churn:    rec.Metrics.Churn,
			},
		})
	}

	for _, rec := range emails {
		tag, reasons := c.Email(rec)
		events = append(events, model.TimelineEvent{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Contact:   rec.Sender,
			Source:    model.SourceEmail,
			Type:      "SENT",
			Content:   fmt.Sprintf("To: %s | Subject: %s", rec.Recipient, truncate(rec.Subject, subjectContentLimit)),
			Tag:       tag,
			Reasons:   reasons,
			Details: model.EventDetails{
				Recipient:  rec.Recipient,
				Subject:    rec.Subject,
				BodyLength: len(rec.Body),
			},
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
