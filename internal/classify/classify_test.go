package classify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/commtrace/commtrace/internal/model"
)

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestSMSFinancialCascade(t *testing.T) {
	c := New(nil)
	rec := model.SMSRecord{Message: "Please wire the payment via bitcoin now"}

	tag, reasons := c.SMS(rec)
	if tag != model.TagFinancial {
		t.Errorf("tag = %v, want FINANCIAL", tag)
	}
	if !containsString(reasons, "Financial: Contains 'payment'") {
		t.Errorf("missing financial reason, got %v", reasons)
	}
	if !containsString(reasons, "Urgent: Contains 'now'") {
		t.Errorf("missing urgent reason, got %v", reasons)
	}

	// Classification is deterministic.
	tag2, reasons2 := c.SMS(rec)
	if tag2 != tag || len(reasons2) != len(reasons) {
		t.Error("same input produced different classification")
	}
}

func TestSMSOneReasonPerCategory(t *testing.T) {
	c := New(nil)
	_, reasons := c.SMS(model.SMSRecord{Message: "payment cash deposit arranged"})

	financial := 0
	for _, r := range reasons {
		if len(r) >= 9 && r[:9] == "Financial" {
			financial++
		}
	}
	if financial != 1 {
		t.Errorf("got %d Financial reasons, want exactly 1: %v", financial, reasons)
	}
	if !containsString(reasons, "Financial: Contains 'payment'") {
		t.Errorf("expected first keyword in table order, got %v", reasons)
	}
}

func TestSMSShortMessage(t *testing.T) {
	c := New(nil)
	tag, reasons := c.SMS(model.SMSRecord{Message: "ok done"})

	if !containsString(reasons, "Short message: Message length < 10 characters") {
		t.Errorf("missing short-message reason: %v", reasons)
	}
	if tag != model.TagSuspicious {
		t.Errorf("tag = %v, want SUSPICIOUS fallback", tag)
	}
}

func TestSMSDigitPattern(t *testing.T) {
	c := New(nil)
	tag, reasons := c.SMS(model.SMSRecord{Message: "use code 45217 at the door"})

	if !containsString(reasons, `Unusual pattern: Contains '\d{4,}'`) {
		t.Errorf("missing digit-run reason: %v", reasons)
	}
	if tag != model.TagSuspicious {
		t.Errorf("tag = %v, want SUSPICIOUS", tag)
	}
}

func TestSMSRoutineSecondPass(t *testing.T) {
	c := New(nil)

	tag, reasons := c.SMS(model.SMSRecord{Message: "happy birthday dear friend"})
	if tag != model.ForensicTag("PERSONAL") {
		t.Errorf("tag = %v, want PERSONAL", tag)
	}
	if !containsString(reasons, "Routine communication") {
		t.Errorf("reasons = %v", reasons)
	}

	tag, reasons = c.SMS(model.SMSRecord{Message: "client project deadline moved"})
	if tag != model.ForensicTag("BUSINESS") {
		t.Errorf("tag = %v, want BUSINESS", tag)
	}

	tag, reasons = c.SMS(model.SMSRecord{Message: "xyzzy qwerty plugh"})
	if tag != model.TagRoutine {
		t.Errorf("tag = %v, want ROUTINE", tag)
	}
	if !containsString(reasons, "Normal communication") {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestEmailSuspiciousSender(t *testing.T) {
	c := New(nil)
	rec := model.EmailRecord{
		Sender:  "noreply@offers.ru",
		Subject: "You are a winner",
		Body:    "limited time offer inside",
	}

	tag, reasons := c.Email(rec)
	if !containsString(reasons, "Anonymous sender") {
		t.Errorf("missing anonymous-sender reason: %v", reasons)
	}
	if !containsString(reasons, "Suspicious sender domain") {
		t.Errorf("missing domain reason: %v", reasons)
	}
	// Anonymous/Suspicious outranks Spam in the cascade.
	if tag != model.TagSuspicious {
		t.Errorf("tag = %v, want SUSPICIOUS", tag)
	}
}

func TestEmailRoutine(t *testing.T) {
	c := New(nil)
	rec := model.EmailRecord{
		Sender:  "alice@company.com",
		Subject: "Project meeting",
		Body:    "agenda for the client review",
	}

	tag, _ := c.Email(rec)
	if tag != model.ForensicTag("BUSINESS") {
		t.Errorf("tag = %v, want BUSINESS", tag)
	}
}

func TestCallClassification(t *testing.T) {
	c := New(nil)
	day := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)
	night := time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		rec        model.CallRecord
		wantTag    model.ForensicTag
		wantReason string
	}{
		{
			name:       "very short",
			rec:        model.CallRecord{Duration: 3, Type: model.CallMissed, Timestamp: day},
			wantTag:    model.TagSuspicious,
			wantReason: "Very short call (<5 seconds)",
		},
		{
			name:       "extended",
			rec:        model.CallRecord{Duration: 4000, Type: model.CallLong, Timestamp: day},
			wantTag:    model.TagExtendedComm,
			wantReason: "Extended communication (>1 hour)",
		},
		{
			name: "international minutes",
			rec: model.CallRecord{
				Duration: 300, Type: model.CallInternational, Timestamp: day,
				Metrics: model.CallMetrics{IntlMins: 7},
			},
			wantTag:    model.TagInternational,
			wantReason: "International call (>5 minutes)",
		},
		{
			name:       "late night",
			rec:        model.CallRecord{Duration: 120, Type: model.CallAnswered, Timestamp: night},
			wantTag:    model.TagSuspicious,
			wantReason: "Late night call (03:00)",
		},
		{
			name: "customer service complaints",
			rec: model.CallRecord{
				Duration: 200, Type: model.CallComplaint, Timestamp: day,
				Metrics: model.CallMetrics{Churn: true, CustServCalls: 4},
			},
			wantTag:    model.TagSuspicious,
			wantReason: "Multiple customer service calls (4)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, reasons := c.Call(tt.rec)
			if tag != tt.wantTag {
				t.Errorf("tag = %v, want %v", tag, tt.wantTag)
			}
			if !containsString(reasons, tt.wantReason) {
				t.Errorf("missing reason %q in %v", tt.wantReason, reasons)
			}
		})
	}
}

func TestCallRoutine(t *testing.T) {
	c := New(nil)
	rec := model.CallRecord{
		Duration:  120,
		Type:      model.CallAnswered,
		Timestamp: time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC),
	}

	tag, reasons := c.Call(rec)
	if tag != model.TagRoutine {
		t.Errorf("tag = %v, want ROUTINE", tag)
	}
	if !containsString(reasons, "Normal communication") {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestLoadRulesPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `sms:
  - category: Financial
    keywords: ["wire"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	if len(rules.SMS) != 1 || rules.SMS[0].Keywords[0] != "wire" {
		t.Errorf("SMS table not overridden: %+v", rules.SMS)
	}
	// Sections absent from the file keep the built-in tables.
	defaults := DefaultRules()
	if len(rules.Email) != len(defaults.Email) {
		t.Errorf("Email table should fall back to defaults")
	}
	if len(rules.SuspiciousDomains) != len(defaults.SuspiciousDomains) {
		t.Errorf("SuspiciousDomains should fall back to defaults")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}
