package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/commtrace/commtrace/internal/model"
)

// stubClassifier tags everything ROUTINE so ordering tests are not
// coupled to the rule tables.
type stubClassifier struct{}

func (stubClassifier) SMS(model.SMSRecord) (model.ForensicTag, []string) {
	return model.TagRoutine, []string{"Normal communication"}
}
func (stubClassifier) Call(model.CallRecord) (model.ForensicTag, []string) {
	return model.TagRoutine, []string{"Normal communication"}
}
func (stubClassifier) Email(model.EmailRecord) (model.ForensicTag, []string) {
	return model.TagRoutine, []string{"Normal communication"}
}

var (
	early = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mid   = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	late  = time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)
)

func TestFuseOrdering(t *testing.T) {
	sms := []model.SMSRecord{
		{ID: "SMS_000001", Contact: "+15551111111", Timestamp: late, Message: "later", Direction: model.DirectionIncoming},
	}
	calls := []model.CallRecord{
		{ID: "CALL_000001", Contact: "+15552222222", Timestamp: early, Duration: 60, Type: model.CallAnswered},
	}
	emails := []model.EmailRecord{
		{ID: "EMAIL_000001", Sender: "a@b.com", Recipient: "c@d.com", Timestamp: mid, Subject: "s", Body: "b"},
	}

	events := Fuse(sms, calls, emails, stubClassifier{})

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	wantIDs := []string{"CALL_000001", "EMAIL_000001", "SMS_000001"}
	for i, want := range wantIDs {
		if events[i].ID != want {
			t.Errorf("events[%d].ID = %s, want %s", i, events[i].ID, want)
		}
	}
}

func TestFuseTieStability(t *testing.T) {
	// Equal timestamps keep construction order: SMS, then CALL, then EMAIL,
	// input order within a source.
	sms := []model.SMSRecord{
		{ID: "SMS_000001", Timestamp: mid},
		{ID: "SMS_000002", Timestamp: mid},
	}
	calls := []model.CallRecord{
		{ID: "CALL_000001", Timestamp: mid},
	}
	emails := []model.EmailRecord{
		{ID: "EMAIL_000001", Timestamp: mid},
	}

	events := Fuse(sms, calls, emails, stubClassifier{})

	wantIDs := []string{"SMS_000001", "SMS_000002", "CALL_000001", "EMAIL_000001"}
	for i, want := range wantIDs {
		if events[i].ID != want {
			t.Errorf("events[%d].ID = %s, want %s", i, events[i].ID, want)
		}
	}
}

func TestFuseContent(t *testing.T) {
	longMessage := strings.Repeat("x", 250)
	sms := []model.SMSRecord{
		{ID: "SMS_000001", Timestamp: mid, Message: longMessage, Direction: model.DirectionOutgoing},
	}
	calls := []model.CallRecord{
		{ID: "CALL_000001", Timestamp: mid, Duration: 95, Type: model.CallShort},
	}
	emails := []model.EmailRecord{
		{ID: "EMAIL_000001", Timestamp: mid, Sender: "a@b.com", Recipient: "c@d.com", Subject: "Quarterly numbers", Body: "text"},
	}

	events := Fuse(sms, calls, emails, stubClassifier{})

	if got := events[0].Content; len([]rune(got)) != 200 {
		t.Errorf("SMS content length = %d runes, want 200", len([]rune(got)))
	}
	if events[0].Details.MessageLength != 250 {
		t.Errorf("MessageLength = %d, want original 250", events[0].Details.MessageLength)
	}
	if events[0].Type != "OUTGOING" {
		t.Errorf("SMS Type = %q", events[0].Type)
	}

	if got, want := events[1].Content, "Duration: 95s | Type: SHORT_CALL"; got != want {
		t.Errorf("call content = %q, want %q", got, want)
	}

	if got, want := events[2].Content, "To: c@d.com | Subject: Quarterly numbers"; got != want {
		t.Errorf("email content = %q, want %q", got, want)
	}
	if events[2].Contact != "a@b.com" {
		t.Errorf("email event contact = %q, want sender", events[2].Contact)
	}
}

func TestFuseEmpty(t *testing.T) {
	events := Fuse(nil, nil, nil, stubClassifier{})
	if len(events) != 0 {
		t.Errorf("got %d events for empty input", len(events))
	}
}
