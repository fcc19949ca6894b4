package risk

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/commtrace/commtrace/internal/model"
)

// monday is a weekday anchor; events built from it at 10:00 stay clear
// of the late-night, weekend, and business-hours checks.
var monday = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

// makeEvents builds n routine events one minute apart, rotating across
// four contacts so no concentration or rapid-fire check fires.
func makeEvents(n int) []model.TimelineEvent {
	events := make([]model.TimelineEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, model.TimelineEvent{
			ID:        fmt.Sprintf("SMS_%06d", i+1),
			Timestamp: monday.Add(time.Duration(i) * time.Minute),
			Contact:   fmt.Sprintf("+1555000%04d", i%4),
			Source:    model.SourceSMS,
			Tag:       model.TagRoutine,
		})
	}
	return events
}

func flagLabels(a model.Assessment) []string {
	labels := make([]string, 0, len(a.Flags))
	for _, f := range a.Flags {
		labels = append(labels, f.Label)
	}
	return labels
}

func hasFlagPrefix(a model.Assessment, prefix string) bool {
	for _, f := range a.Flags {
		if strings.HasPrefix(f.Label, prefix) {
			return true
		}
	}
	return false
}

func TestScoreMinimumEvents(t *testing.T) {
	// Nine suspicious events at 3 AM would trip several checks, but the
	// timeline is below the flag minimum.
	events := makeEvents(9)
	for i := range events {
		events[i].Timestamp = monday.Add(time.Duration(i)*time.Minute - 7*time.Hour)
		events[i].Tag = model.TagSuspicious
	}

	a := Score(events, "")
	if len(a.Flags) != 0 {
		t.Errorf("flags = %v, want none below minimum", flagLabels(a))
	}
	if a.SimpleScore != 0 {
		t.Errorf("SimpleScore = %d, want 0", a.SimpleScore)
	}
	// The weighted score is still computed.
	if len(a.Weighted.Factors) != 4 {
		t.Errorf("weighted factors = %d, want 4", len(a.Weighted.Factors))
	}
	if a.Weighted.Score == 0 {
		t.Error("weighted score should be non-zero for all-suspicious timeline")
	}
}

func TestScoreCleanTimeline(t *testing.T) {
	a := Score(makeEvents(100), "")

	if len(a.Flags) != 0 {
		t.Errorf("flags on clean timeline: %v", flagLabels(a))
	}
	if a.SimpleScore != 0 || a.SimpleLevel() != "LOW" {
		t.Errorf("SimpleScore = %d (%s), want 0 LOW", a.SimpleScore, a.SimpleLevel())
	}
	// No suspicious events, no weighted factors.
	if a.Weighted.Score != 0 || len(a.Weighted.Factors) != 0 {
		t.Errorf("weighted = %+v, want zero", a.Weighted)
	}
}

func TestLateNightBoundary(t *testing.T) {
	// Exactly 20% late-night events must not fire; the threshold is strict.
	events := makeEvents(100)
	for i := 0; i < 20; i++ {
		events[i].Timestamp = monday.Add(time.Duration(i)*time.Minute - 7*time.Hour) // 03:00
	}
	a := Score(events, "")
	if hasFlagPrefix(a, "High late-night activity") {
		t.Errorf("late-night flag fired at exactly 20%%: %v", flagLabels(a))
	}

	events = makeEvents(100)
	for i := 0; i < 21; i++ {
		events[i].Timestamp = monday.Add(time.Duration(i)*time.Minute - 7*time.Hour)
	}
	a = Score(events, "")
	if !hasFlagPrefix(a, "High late-night activity: 21 events (21.0%)") {
		t.Errorf("expected late-night flag at 21%%, got %v", flagLabels(a))
	}
	if a.SimpleScore != 10 {
		t.Errorf("SimpleScore = %d, want 10 for one flag", a.SimpleScore)
	}
}

func TestRapidFireUsesRealDuration(t *testing.T) {
	// Twelve events 20 seconds apart crossing midnight. Naive
	// seconds-of-day subtraction would miss the cross-midnight gap;
	// real durations catch all eleven.
	start := time.Date(2026, 6, 1, 23, 58, 0, 0, time.UTC)
	events := make([]model.TimelineEvent, 0, 12)
	for i := 0; i < 12; i++ {
		events = append(events, model.TimelineEvent{
			ID:        fmt.Sprintf("SMS_%06d", i+1),
			Timestamp: start.Add(time.Duration(i) * 20 * time.Second),
			Contact:   fmt.Sprintf("+1555000%04d", i%4),
			Tag:       model.TagRoutine,
		})
	}

	a := Score(events, "")
	if !hasFlagPrefix(a, "Rapid-fire communications: 11 sequences <30s apart") {
		t.Errorf("expected rapid-fire flag, got %v", flagLabels(a))
	}
}

func TestUnknownContacts(t *testing.T) {
	events := makeEvents(100)
	for i := 0; i < 11; i++ {
		events[i].Contact = "Unknown Caller"
	}

	a := Score(events, "")
	if !hasFlagPrefix(a, "High unknown contacts: 11 (11.0%)") {
		t.Errorf("expected unknown-contacts flag, got %v", flagLabels(a))
	}
}

func TestCategoryVolumeFlags(t *testing.T) {
	events := makeEvents(100)
	for i := 0; i < 11; i++ {
		events[i].Tag = model.TagFinancial
	}
	for i := 11; i < 17; i++ {
		events[i].Tag = model.TagSuspicious
	}
	for i := 17; i < 21; i++ {
		events[i].Tag = model.TagInternational
	}
	for i := 21; i < 24; i++ {
		events[i].Tag = model.TagExtendedComm
	}

	a := Score(events, "")
	for _, want := range []string{
		"Financial-related communications: 11",
		"Suspicious keyword communications: 6",
		"International communications: 4",
		"Extended communications (>1 hour): 3",
	} {
		if !hasFlagPrefix(a, want) {
			t.Errorf("missing flag %q in %v", want, flagLabels(a))
		}
	}
}

func TestContactConcentration(t *testing.T) {
	events := makeEvents(100)
	for i := 0; i < 31; i++ {
		events[i].Contact = "+15559990000"
	}

	a := Score(events, "")
	if !hasFlagPrefix(a, "High concentration with single contact: +15559990000 (31 events, 31.0%)") {
		t.Errorf("expected concentration flag, got %v", flagLabels(a))
	}
}

func TestBusinessHoursOnlyWithSubject(t *testing.T) {
	// All events at 07:00: outside business hours, outside late night.
	events := makeEvents(100)
	for i := range events {
		events[i].Timestamp = monday.Add(time.Duration(i)*time.Minute - 3*time.Hour)
	}

	a := Score(events, "")
	if hasFlagPrefix(a, "Low business hours activity") {
		t.Error("business-hours check must not run without a subject")
	}

	a = Score(events, "+15550001111")
	if !hasFlagPrefix(a, "Low business hours activity: 0.0%") {
		t.Errorf("expected business-hours flag, got %v", flagLabels(a))
	}
}

func TestWeightedScoreFactors(t *testing.T) {
	// 100 events, 40 suspicious across four contacts: volume 30/30,
	// high-risk 25/25, late-night 0/20, diverse contacts 5/25.
	events := makeEvents(100)
	for i := 0; i < 40; i++ {
		events[i].Tag = model.TagSuspicious
	}

	a := Score(events, "")
	if a.Weighted.Score != 60 {
		t.Errorf("weighted score = %v, want 60", a.Weighted.Score)
	}
	if a.Weighted.Level() != "HIGH" {
		t.Errorf("weighted level = %s, want HIGH", a.Weighted.Level())
	}

	wantPoints := []int{30, 25, 0, 5}
	if len(a.Weighted.Factors) != len(wantPoints) {
		t.Fatalf("factors = %d, want %d", len(a.Weighted.Factors), len(wantPoints))
	}
	for i, want := range wantPoints {
		if a.Weighted.Factors[i].Points != want {
			t.Errorf("factor %d = %d points (%s), want %d",
				i, a.Weighted.Factors[i].Points, a.Weighted.Factors[i].Label, want)
		}
	}

	// The simple score counts flags independently of the weighted score.
	if a.SimpleScore != 10 {
		t.Errorf("SimpleScore = %d, want 10", a.SimpleScore)
	}
}

func TestWeightedSubjectExcludedFromConcentration(t *testing.T) {
	subject := "+15550009999"
	events := makeEvents(100)
	for i := 0; i < 12; i++ {
		events[i].Tag = model.TagSuspicious
		events[i].Contact = subject
	}

	a := Score(events, subject)
	for _, f := range a.Weighted.Factors {
		if strings.HasPrefix(f.Label, "High concentration") {
			t.Errorf("subject address counted toward suspicious concentration: %s", f.Label)
		}
	}
}
