// Package normalize maps arbitrary tokenized input rows onto the canonical
// record schema. Column layouts are not fixed in advance: each target field
// is filled by the first column whose lowercased name contains one of the
// field's keywords. Every missing or unparsable field has a deterministic
// (when seeded) fallback, so normalization never fails on bad data.
package normalize

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/commtrace/commtrace/internal/model"
)

// Historical windows, in days, for synthesized timestamps.
const (
	callWindowDays  = 90
	smsWindowDays   = 180
	emailWindowDays = 180
)

// Field keyword sets. Scanning is per field over the row's columns in
// their given order; once filled a field is never overwritten.
var (
	contactKeywords   = []string{"phone", "number", "address", "contact", "from"}
	messageKeywords   = []string{"message", "body", "content", "text"}
	timestampKeywords = []string{"date", "time", "timestamp", "received", "sent"}
	directionKeywords = []string{"type", "direction", "status"}

	senderKeywords    = []string{"from", "sender", "author"}
	recipientKeywords = []string{"to", "recipient", "receiver"}
	subjectKeywords   = []string{"subject", "title", "topic"}
)

// Substring sets for direction inference, checked in this order.
var (
	incomingHints = []string{"incoming", "received", "in", "recv"}
	outgoingHints = []string{"outgoing", "sent", "out", "send"}
)

// Fallback material for emails with missing fields.
var (
	fallbackDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "company.com", "outlook.com"}

	fallbackSubjects = []string{
		"Meeting Request", "Project Update", "Important Information",
		"Follow Up", "Action Required", "Report Attached",
		"Weekly Summary", "Question Regarding", "Urgent: Response Needed",
	}

	fallbackBodies = []string{
		"Please find attached the requested document.",
		"Looking forward to your feedback on this matter.",
		"Can we schedule a meeting for next week?",
		"Here is the update you requested.",
		"Please review and let me know your thoughts.",
		"This is in reference to our earlier conversation.",
	}
)

// Normalizer converts raw rows into normalized records. It carries the
// injected random source used by all fallback synthesis and the reference
// time anchoring the historical windows, so a fixed seed and reference
// time make every output reproducible.
//
// A Normalizer is not safe for concurrent use.
type Normalizer struct {
	rng *rand.Rand
	now time.Time

	smsSeq   int
	callSeq  int
	emailSeq int
}

// New creates a Normalizer seeded for deterministic fallback synthesis.
func New(seed int64, now time.Time) *Normalizer {
	return &Normalizer{
		rng: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

// Normalize dispatches a raw row to the matching per-source operation.
// An unrecognized source kind is a caller defect, not bad data, and is
// reported as an error.
func (n *Normalizer) Normalize(row model.RawRow, kind model.SourceKind) (model.Record, error) {
	switch kind {
	case model.SourceSMS:
		return n.SMS(row), nil
	case model.SourceCall:
		return n.Call(row), nil
	case model.SourceEmail:
		return n.Email(row), nil
	default:
		return nil, fmt.Errorf("normalize: unknown source kind %q", kind)
	}
}

// SMS normalizes one short-message row.
func (n *Normalizer) SMS(row model.RawRow) model.SMSRecord {
	n.smsSeq++

	rec := model.SMSRecord{
		ID: fmt.Sprintf("SMS_%06d", n.smsSeq),
	}

	contact, _ := resolveField(row, contactKeywords)
	if strings.TrimSpace(contact) == "" {
		rec.Contact = n.syntheticPhone()
	} else {
		rec.Contact = n.CanonicalPhone(contact)
	}

	raw, _ := resolveField(row, timestampKeywords)
	if ts, ok := ParseTimestamp(raw); ok {
		rec.Timestamp = ts
	} else {
		rec.Timestamp = n.syntheticTimestamp(smsWindowDays)
	}

	message, _ := resolveField(row, messageKeywords)
	message = strings.TrimSpace(message)
	if message == "" {
		message = fmt.Sprintf("SMS message %d", n.smsSeq)
	}
	rec.Message = message

	direction, _ := resolveField(row, directionKeywords)
	rec.Direction = n.inferDirection(direction)

	return rec
}

// Call normalizes one call detail record row. CDR exports carry per-band
// minute counts rather than a duration column, so the duration is derived
// and the call type is classified from the metrics.
func (n *Normalizer) Call(row model.RawRow) model.CallRecord {
	n.callSeq++

	rec := model.CallRecord{
		ID: fmt.Sprintf("CALL_%06d", n.callSeq),
	}

	contact, _ := resolveField(row, contactKeywords)
	if strings.TrimSpace(contact) == "" {
		rec.Contact = n.syntheticPhone()
	} else {
		rec.Contact = n.CanonicalPhone(contact)
	}

	raw, _ := resolveField(row, timestampKeywords)
	if ts, ok := ParseTimestamp(raw); ok {
		rec.Timestamp = ts
	} else {
		rec.Timestamp = n.syntheticTimestamp(callWindowDays)
	}

	metrics, minsOK := resolveCallMetrics(row)
	rec.Metrics = metrics
	if minsOK {
		rec.Duration = int((metrics.DayMins + metrics.EveMins + metrics.NightMins) * 60)
	} else {
		rec.Duration = 30 + n.rng.Intn(1770) // 30s to 30min
	}
	rec.Type = deriveCallType(rec.Duration, metrics)

	return rec
}

// Email normalizes one email row. Addresses are trimmed but not
// canonicalized; absent fields get synthesized placeholders.
func (n *Normalizer) Email(row model.RawRow) model.EmailRecord {
	n.emailSeq++

	rec := model.EmailRecord{
		ID: fmt.Sprintf("EMAIL_%06d", n.emailSeq),
	}

	raw, _ := resolveField(row, timestampKeywords)
	if ts, ok := ParseTimestamp(raw); ok {
		rec.Timestamp = ts
	} else {
		rec.Timestamp = n.syntheticTimestamp(emailWindowDays)
	}

	sender, _ := resolveField(row, senderKeywords)
	if sender = strings.TrimSpace(sender); sender == "" {
		sender = fmt.Sprintf("user%d@%s", 1+n.rng.Intn(999), n.pickString(fallbackDomains))
	}
	rec.Sender = sender

	recipient, _ := resolveField(row, recipientKeywords)
	if recipient = strings.TrimSpace(recipient); recipient == "" {
		recipient = fmt.Sprintf("recipient%d@%s", 1+n.rng.Intn(999), n.pickString(fallbackDomains))
	}
	rec.Recipient = recipient

	subject, _ := resolveField(row, subjectKeywords)
	if subject = strings.TrimSpace(subject); subject == "" {
		subject = fmt.Sprintf("%s - %d", n.pickString(fallbackSubjects), 1+n.rng.Intn(99))
	}
	rec.Subject = subject

	body, _ := resolveField(row, messageKeywords)
	if body = strings.TrimSpace(body); body == "" {
		body = n.pickString(fallbackBodies)
	}
	rec.Body = body

	return rec
}

// SMSRows normalizes a whole SMS row set in input order.
func (n *Normalizer) SMSRows(rows []model.RawRow) []model.SMSRecord {
	out := make([]model.SMSRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, n.SMS(row))
	}
	return out
}

// CallRows normalizes a whole CDR row set in input order.
func (n *Normalizer) CallRows(rows []model.RawRow) []model.CallRecord {
	out := make([]model.CallRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, n.Call(row))
	}
	return out
}

// EmailRows normalizes a whole email row set in input order.
func (n *Normalizer) EmailRows(rows []model.RawRow) []model.EmailRecord {
	out := make([]model.EmailRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, n.Email(row))
	}
	return out
}

// resolveField returns the value of the first column whose lowercased
// name contains any of the keywords.
func resolveField(row model.RawRow, keywords []string) (string, bool) {
	for _, col := range row.Columns {
		if col == "" {
			continue
		}
		lower := strings.ToLower(col)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return row.Values[col], true
			}
		}
	}
	return "", false
}

// inferDirection classifies a direction value by substring. The incoming
// hints are checked first, in order. Ambiguous or absent values get a
// random direction; that is an explicit heuristic, not a guarantee.
func (n *Normalizer) inferDirection(raw string) model.Direction {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v != "" {
		for _, hint := range incomingHints {
			if strings.Contains(v, hint) {
				return model.DirectionIncoming
			}
		}
		for _, hint := range outgoingHints {
			if strings.Contains(v, hint) {
				return model.DirectionOutgoing
			}
		}
	}
	if n.rng.Float64() > 0.5 {
		return model.DirectionOutgoing
	}
	return model.DirectionIncoming
}

// syntheticTimestamp picks a uniformly random point inside the trailing
// historical window.
func (n *Normalizer) syntheticTimestamp(windowDays int) time.Time {
	days := n.rng.Intn(windowDays)
	hours := n.rng.Intn(24)
	minutes := n.rng.Intn(60)
	return n.now.Add(-(time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute))
}

func (n *Normalizer) pickString(options []string) string {
	return options[n.rng.Intn(len(options))]
}

// resolveCallMetrics pulls the per-band CDR metrics out of a row by
// fuzzy column match. minsOK is false when any minute band is present
// but unparsable, in which case the caller falls back to a synthetic
// duration and the bands read as zero.
func resolveCallMetrics(row model.RawRow) (model.CallMetrics, bool) {
	minsOK := true
	floatCol := func(fragment string) float64 {
		raw, found := fuzzyField(row, fragment)
		if !found || strings.TrimSpace(raw) == "" {
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			minsOK = false
			return 0
		}
		return v
	}
	intCol := func(fragment string) int {
		raw, found := fuzzyField(row, fragment)
		if !found {
			return 0
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0
		}
		return v
	}

	m := model.CallMetrics{
		DayMins:       floatCol("day min"),
		EveMins:       floatCol("eve min"),
		NightMins:     floatCol("night min"),
		IntlMins:      floatCol("intl min"),
		DayCalls:      intCol("day call"),
		EveCalls:      intCol("eve call"),
		NightCalls:    intCol("night call"),
		IntlCalls:     intCol("intl call"),
		DayCharge:     floatCol("day charge"),
		EveCharge:     floatCol("eve charge"),
		NightCharge:   floatCol("night charge"),
		IntlCharge:    floatCol("intl charge"),
		VMailMessages: intCol("vmail"),
		AccountLength: intCol("account length"),
		CustServCalls: intCol("custserv"),
	}
	if raw, found := fuzzyField(row, "churn"); found {
		m.Churn = strings.EqualFold(strings.TrimSpace(raw), "TRUE")
	}
	if !minsOK {
		m.DayMins, m.EveMins, m.NightMins, m.IntlMins = 0, 0, 0, 0
	}
	return m, minsOK
}

// fuzzyField finds the first column whose lowercased name contains the
// fragment.
func fuzzyField(row model.RawRow, fragment string) (string, bool) {
	for _, col := range row.Columns {
		if strings.Contains(strings.ToLower(col), fragment) {
			return row.Values[col], true
		}
	}
	return "", false
}

// deriveCallType classifies a call from its duration and CDR metrics.
// Order matters: short thresholds first, then complaint, long,
// international, else answered.
func deriveCallType(duration int, m model.CallMetrics) model.CallType {
	switch {
	case duration <= 5:
		return model.CallMissed
	case duration <= 15:
		return model.CallShort
	case m.Churn && m.CustServCalls > 2:
		return model.CallComplaint
	case duration > 600:
		return model.CallLong
	case m.IntlMins > 10:
		return model.CallInternational
	default:
		return model.CallAnswered
	}
}
