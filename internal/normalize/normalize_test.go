package normalize

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/commtrace/commtrace/internal/model"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func row(pairs ...string) model.RawRow {
	r := model.RawRow{Values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Columns = append(r.Columns, pairs[i])
		r.Values[pairs[i]] = pairs[i+1]
	}
	return r
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{
			name: "iso datetime",
			raw:  "2026-01-02 13:04:05",
			want: time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC),
			ok:   true,
		},
		{
			name: "slash date day first",
			raw:  "02/03/2026 10:00",
			want: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "date only",
			raw:  "2026-07-04",
			want: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "embedded in free text",
			raw:  "logged 2026-07-04 09:30:15 by system",
			want: time.Date(2026, 7, 4, 9, 30, 15, 0, time.UTC),
			ok:   true,
		},
		{
			name: "two digit year gets century",
			raw:  "received 31/12/24",
			want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "impossible day rejected",
			raw:  "30/02/2026",
			ok:   false,
		},
		{
			name: "empty",
			raw:  "",
			ok:   false,
		},
		{
			name: "no date at all",
			raw:  "call from office",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalPhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"us formatted", "(555) 123-4567", "+15551234567"},
		{"bare ten digits", "5551234567", "+15551234567"},
		{"international run kept", "441234567890", "+441234567890"},
		{"plus prefix kept", "+1-555-123-4567", "+15551234567"},
		{"spaced groups", "123 456 7890", "+11234567890"},
		{"digit runs concatenated", "acct 12345 pin 67890", "+11234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(1, testNow)
			if got := n.CanonicalPhone(tt.raw); got != tt.want {
				t.Errorf("CanonicalPhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalPhoneSynthetic(t *testing.T) {
	n := New(7, testNow)
	got := n.CanonicalPhone("no digits here")
	if len(got) != 9 || got[:2] != "+1" {
		t.Errorf("synthetic phone = %q, want +1 prefix and 7 digits", got)
	}

	// Same seed, same synthetic output.
	again := New(7, testNow).CanonicalPhone("no digits here")
	if got != again {
		t.Errorf("synthetic phone not deterministic: %q vs %q", got, again)
	}
}

func TestInferDirection(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Direction
	}{
		{"Incoming", model.DirectionIncoming},
		{"Received", model.DirectionIncoming},
		{"sent", model.DirectionOutgoing},
		{"out", model.DirectionOutgoing},
		// "outgoing" contains the substring "in" and the incoming hints
		// are checked first, so it resolves INCOMING.
		{"outgoing", model.DirectionIncoming},
	}

	for _, tt := range tests {
		n := New(1, testNow)
		if got := n.inferDirection(tt.raw); got != tt.want {
			t.Errorf("inferDirection(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSMSNormalization(t *testing.T) {
	n := New(1, testNow)
	rec := n.SMS(row(
		"Phone Number", "(555) 123-4567",
		"Direction", "Incoming",
		"Message", "wire the payment now",
		"Date/Time", "2026-05-01 14:30:00",
	))

	if rec.ID != "SMS_000001" {
		t.Errorf("ID = %q, want SMS_000001", rec.ID)
	}
	if rec.Contact != "+15551234567" {
		t.Errorf("Contact = %q", rec.Contact)
	}
	if rec.Direction != model.DirectionIncoming {
		t.Errorf("Direction = %v", rec.Direction)
	}
	if rec.Message != "wire the payment now" {
		t.Errorf("Message = %q", rec.Message)
	}
	if want := time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC); !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
}

func TestSMSSyntheticFallbacks(t *testing.T) {
	rec := New(42, testNow).SMS(row("Category", "misc"))

	if rec.Contact == "" || rec.Contact[0] != '+' {
		t.Errorf("expected synthetic contact, got %q", rec.Contact)
	}
	if rec.Message != "SMS message 1" {
		t.Errorf("Message = %q, want placeholder", rec.Message)
	}
	if rec.Timestamp.After(testNow) {
		t.Errorf("synthetic timestamp %v after reference time", rec.Timestamp)
	}
	if testNow.Sub(rec.Timestamp) > 180*24*time.Hour {
		t.Errorf("synthetic timestamp %v outside 180-day window", rec.Timestamp)
	}

	// Identical seed and reference time reproduce the record exactly.
	again := New(42, testNow).SMS(row("Category", "misc"))
	if diff := cmp.Diff(rec, again); diff != "" {
		t.Errorf("same seed produced different records (-first +second):\n%s", diff)
	}
}

func TestCallNormalization(t *testing.T) {
	rec := New(1, testNow).Call(row(
		"Phone Number", "5551234567",
		"Day Mins", "2.0",
		"Eve Mins", "1.0",
		"Night Mins", "0.5",
		"Intl Mins", "0",
		"CustServ Calls", "1",
		"Churn", "FALSE",
	))

	if rec.ID != "CALL_000001" {
		t.Errorf("ID = %q", rec.ID)
	}
	if want := int((2.0 + 1.0 + 0.5) * 60); rec.Duration != want {
		t.Errorf("Duration = %d, want %d", rec.Duration, want)
	}
	if rec.Type != model.CallAnswered {
		t.Errorf("Type = %v, want ANSWERED", rec.Type)
	}
}

func TestDeriveCallType(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		metrics  model.CallMetrics
		want     model.CallType
	}{
		{"missed", 3, model.CallMetrics{}, model.CallMissed},
		{"short", 12, model.CallMetrics{}, model.CallShort},
		{"complaint", 120, model.CallMetrics{Churn: true, CustServCalls: 3}, model.CallComplaint},
		{"long", 700, model.CallMetrics{}, model.CallLong},
		{"international", 120, model.CallMetrics{IntlMins: 11}, model.CallInternational},
		{"answered", 120, model.CallMetrics{}, model.CallAnswered},
		// Short thresholds win over everything else.
		{"missed beats complaint", 4, model.CallMetrics{Churn: true, CustServCalls: 5}, model.CallMissed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveCallType(tt.duration, tt.metrics); got != tt.want {
				t.Errorf("deriveCallType(%d, %+v) = %v, want %v", tt.duration, tt.metrics, got, tt.want)
			}
		})
	}
}

func TestCallUnparsableMinutes(t *testing.T) {
	rec := New(9, testNow).Call(row(
		"Phone Number", "5551234567",
		"Day Mins", "not-a-number",
	))

	if rec.Metrics.DayMins != 0 {
		t.Errorf("DayMins = %v, want 0 after parse failure", rec.Metrics.DayMins)
	}
	if rec.Duration < 30 || rec.Duration > 1800 {
		t.Errorf("synthetic duration %d outside 30..1800", rec.Duration)
	}
}

func TestEmailNormalization(t *testing.T) {
	rec := New(1, testNow).Email(row(
		"From", "alice@company.com",
		"To", "bob@company.com",
		"Date", "2026-06-10 08:00:00",
		"Subject", "Quarterly report",
		"Body", "Attached as discussed.",
	))

	if rec.ID != "EMAIL_000001" {
		t.Errorf("ID = %q", rec.ID)
	}
	if rec.Sender != "alice@company.com" || rec.Recipient != "bob@company.com" {
		t.Errorf("addresses = %q -> %q", rec.Sender, rec.Recipient)
	}
	if rec.Subject != "Quarterly report" {
		t.Errorf("Subject = %q", rec.Subject)
	}
}

func TestEmailSyntheticFields(t *testing.T) {
	rec := New(3, testNow).Email(row("X-Header", "noise"))

	if rec.Sender == "" || rec.Recipient == "" || rec.Subject == "" || rec.Body == "" {
		t.Errorf("expected synthesized fields, got %+v", rec)
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	n := New(1, testNow)
	if _, err := n.Normalize(row("a", "b"), model.SourceKind("FAX")); err == nil {
		t.Fatal("expected error for unknown source kind")
	}
}

func TestResolveFieldOrder(t *testing.T) {
	// First matching column wins, in column order.
	r := row("Contact Name", "Alice", "Phone Number", "5551234567")
	got, ok := resolveField(r, contactKeywords)
	if !ok || got != "Alice" {
		t.Errorf("resolveField = %q, %v; want first matching column value", got, ok)
	}
}
