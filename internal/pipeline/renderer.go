package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// Renderer turns a finished case report into its output artifacts: the
// plain-text investigator report, the timeline and contact CSVs, the
// JSON summary, and the console digest.
type Renderer struct {
	topContacts int
}

// NewRenderer creates a renderer showing up to topContacts contacts in
// ranked listings.
func NewRenderer(topContacts int) *Renderer {
	if topContacts <= 0 {
		topContacts = 20
	}
	return &Renderer{topContacts: topContacts}
}

const timeFormat = "2006-01-02 15:04:05"

// RenderText produces the full plain-text investigation report.
func (r *Renderer) RenderText(report *model.CaseReport) []byte {
	var b strings.Builder
	line := strings.Repeat("=", 80)
	rule := strings.Repeat("-", 40)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "DIGITAL FORENSIC INVESTIGATION REPORT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Report Generated: %s\n", report.GeneratedAt.Format(timeFormat))
	fmt.Fprintf(&b, "Case Reference: DF-%s\n", report.GeneratedAt.Format("20060102-150405"))
	if report.SubjectAddress != "" {
		fmt.Fprintf(&b, "Subject Address: %s\n", report.SubjectAddress)
	}
	fmt.Fprintln(&b)

	// Executive summary.
	fmt.Fprintln(&b, "EXECUTIVE SUMMARY")
	fmt.Fprintln(&b, rule)
	total := report.Counts.Total()
	fmt.Fprintf(&b, "Total Events Analyzed: %d\n", total)
	if start, end, ok := report.TimeRange(); ok {
		days := int(end.Sub(start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		fmt.Fprintf(&b, "Analysis Period: %d days\n", days)
		fmt.Fprintf(&b, "Date Range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
		fmt.Fprintf(&b, "Average Daily Events: %.1f\n", float64(total)/float64(days))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "DATA SOURCES")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "SMS Messages: %d\n", report.Counts.SMS)
	fmt.Fprintf(&b, "Phone Calls: %d\n", report.Counts.Calls)
	fmt.Fprintf(&b, "Emails: %d\n", report.Counts.Emails)

	r.writeContactSection(&b, report)
	r.writeSuspiciousSection(&b, report)
	r.writeRiskSection(&b, report)
	r.writeRecommendations(&b, report)

	if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "NARRATIVE SUMMARY (LLM-GENERATED, NON-EVIDENTIARY)")
		fmt.Fprintln(&b, rule)
		fmt.Fprintln(&b, report.LLM.SummaryMD)
		for _, w := range report.LLM.Warnings {
			fmt.Fprintf(&b, "Warning: %s\n", w)
		}
	}

	return []byte(b.String())
}

func (r *Renderer) writeContactSection(b *strings.Builder, report *model.CaseReport) {
	rule := strings.Repeat("-", 40)
	fmt.Fprintln(b)
	fmt.Fprintln(b, "CONTACT ANALYSIS")
	fmt.Fprintln(b, rule)
	fmt.Fprintf(b, "Unique Contacts Identified: %d\n", len(report.Contacts))

	if len(report.TopContacts) == 0 {
		return
	}

	fmt.Fprintln(b)
	fmt.Fprintf(b, "TOP %d CONTACTS BY INTERACTION VOLUME:\n", r.topContacts)
	wide := strings.Repeat("-", 80)
	fmt.Fprintln(b, wide)
	fmt.Fprintf(b, "%-5s %-40s %-8s %-8s %-8s %-10s\n", "Rank", "Contact", "Total", "SMS", "Calls", "Emails")
	fmt.Fprintln(b, wide)

	for i, c := range report.TopContacts {
		if i >= r.topContacts {
			break
		}
		display := c.Address
		if report.SubjectAddress != "" && c.Address == report.SubjectAddress {
			display += " (SUBJECT)"
		}
		if len(display) > 38 {
			display = display[:38] + "..."
		}
		emails := c.SentEmailCount + c.ReceivedEmailCount
		fmt.Fprintf(b, "%-5d %-40s %-8d %-8d %-8d %-10d\n",
			i+1, display, c.TotalInteractions(), c.SMSCount, c.CallCount, emails)
	}
}

func (r *Renderer) writeSuspiciousSection(b *strings.Builder, report *model.CaseReport) {
	suspicious := report.SuspiciousEvents()
	if len(suspicious) == 0 {
		return
	}
	rule := strings.Repeat("-", 40)

	fmt.Fprintln(b)
	fmt.Fprintln(b, "SUSPICIOUS COMMUNICATIONS ANALYSIS")
	fmt.Fprintln(b, rule)
	fmt.Fprintf(b, "Total Suspicious Communications: %d\n", len(suspicious))
	fmt.Fprintf(b, "Suspicious Rate: %.1f%%\n", float64(len(suspicious))/float64(len(report.Timeline))*100)

	categories := make(map[model.ForensicTag]int)
	reasons := make(map[string]int)
	for _, ev := range suspicious {
		categories[ev.Tag]++
		for _, reason := range ev.Reasons {
			reasons[reason]++
		}
	}

	fmt.Fprintln(b)
	fmt.Fprintln(b, "SUSPICIOUS COMMUNICATIONS BY CATEGORY:")
	for _, entry := range sortedCounts(categories) {
		fmt.Fprintf(b, "  - %s: %d events\n", entry.key, entry.count)
	}

	if len(reasons) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "TOP REASONS FOR SUSPICIOUS CLASSIFICATION:")
		entries := sortedStringCounts(reasons)
		for i, entry := range entries {
			if i >= 10 {
				break
			}
			fmt.Fprintf(b, "  - %s: %d occurrences\n", entry.key, entry.count)
		}
	}
}

func (r *Renderer) writeRiskSection(b *strings.Builder, report *model.CaseReport) {
	rule := strings.Repeat("-", 40)
	a := report.Assessment

	fmt.Fprintln(b)
	fmt.Fprintln(b, "RISK ASSESSMENT")
	fmt.Fprintln(b, rule)
	fmt.Fprintf(b, "Overall Risk Score: %d/100\n", a.SimpleScore)
	fmt.Fprintf(b, "Risk Level: %s\n", a.SimpleLevel())

	if len(a.Flags) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "DETECTED RED FLAGS / ANOMALIES:")
		for _, flag := range a.Flags {
			fmt.Fprintf(b, "  ! %s\n", flag.Label)
			fmt.Fprintf(b, "    %s\n", flag.Explanation)
		}
	}

	if len(a.Weighted.Factors) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintf(b, "Weighted Risk Score: %.1f/100 (%s)\n", a.Weighted.Score, a.Weighted.Level())
		for _, factor := range a.Weighted.Factors {
			fmt.Fprintf(b, "  - %s: %d/%d\n", factor.Label, factor.Points, factor.Max)
		}
	}
}

func (r *Renderer) writeRecommendations(b *strings.Builder, report *model.CaseReport) {
	rule := strings.Repeat("-", 40)
	flags := report.Assessment.Flags

	fmt.Fprintln(b)
	fmt.Fprintln(b, "INVESTIGATIVE RECOMMENDATIONS")
	fmt.Fprintln(b, rule)

	if len(flags) == 0 {
		fmt.Fprintln(b, "No significant anomalies detected. Standard monitoring recommended.")
		return
	}

	recs := []string{
		"Further investigation recommended for identified anomalies",
		"Review communications with top suspicious contacts",
		"Analyze late-night and rapid-fire communications",
	}
	if flagsMention(flags, "financial") {
		recs = append(recs, "Scrutinize financial-related communications")
	}
	if flagsMention(flags, "international") {
		recs = append(recs, "Review international communications")
	}
	if len(report.SuspiciousEvents()) > 0 {
		recs = append(recs, "Examine suspicious communications for potential illegal activities")
	}
	for i, rec := range recs {
		fmt.Fprintf(b, "%d. %s\n", i+1, rec)
	}
}

// RenderTimelineCSV writes the full fused timeline, one event per row.
func (r *Renderer) RenderTimelineCSV(report *model.CaseReport) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"timestamp", "id", "source", "contact", "type", "content", "forensic_tag", "reasons"})
	for _, ev := range report.Timeline {
		_ = w.Write([]string{
			ev.Timestamp.Format(timeFormat),
			ev.ID,
			string(ev.Source),
			ev.Contact,
			ev.Type,
			ev.Content,
			string(ev.Tag),
			strings.Join(ev.Reasons, "; "),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// RenderContactsCSV writes every contact sorted by interaction volume.
func (r *Renderer) RenderContactsCSV(report *model.CaseReport) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"Contact", "Is_Subject", "Total_Interactions", "SMS_Count", "Call_Count",
		"Email_Sent_Count", "Email_Received_Count", "Last_Contact_Date"})

	for _, c := range rankContacts(report.Contacts, 0) {
		isSubject := "No"
		if report.SubjectAddress != "" && c.Address == report.SubjectAddress {
			isSubject = "Yes"
		}
		last := "Unknown"
		if t := c.LastSeen(); !t.IsZero() {
			last = t.Format(timeFormat)
		}
		_ = w.Write([]string{
			c.Address,
			isSubject,
			strconv.Itoa(c.TotalInteractions()),
			strconv.Itoa(c.SMSCount),
			strconv.Itoa(c.CallCount),
			strconv.Itoa(c.SentEmailCount),
			strconv.Itoa(c.ReceivedEmailCount),
			last,
		})
	}
	w.Flush()
	return buf.Bytes()
}

// jsonSummary is the machine-readable digest of one case.
type jsonSummary struct {
	ReportDate     string                 `json:"report_date"`
	SubjectAddress string                 `json:"subject_address,omitempty"`
	DataSummary    jsonDataSummary        `json:"data_summary"`
	Timeline       jsonTimelineSummary    `json:"timeline_summary"`
	Contacts       jsonContactSummary     `json:"contact_summary"`
	Suspicious     jsonSuspiciousAnalysis `json:"suspicious_analysis"`
	Risk           jsonRiskAssessment     `json:"risk_assessment"`
}

type jsonDataSummary struct {
	TotalEvents int `json:"total_events"`
	SMSCount    int `json:"sms_count"`
	CallCount   int `json:"call_count"`
	EmailCount  int `json:"email_count"`
}

type jsonTimelineSummary struct {
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	TotalEvents int    `json:"total_events"`
}

type jsonContactSummary struct {
	UniqueContacts int            `json:"unique_contacts"`
	TopContacts    map[string]int `json:"top_contacts"`
}

type jsonSuspiciousAnalysis struct {
	TotalSuspicious int            `json:"total_suspicious"`
	SuspiciousRate  float64        `json:"suspicious_rate"`
	Categories      map[string]int `json:"categories"`
}

type jsonRiskAssessment struct {
	Flags         []string            `json:"flags"`
	RiskScore     int                 `json:"risk_score"`
	WeightedScore model.WeightedScore `json:"weighted_score"`
}

// RenderJSON produces the summary JSON document.
func (r *Renderer) RenderJSON(report *model.CaseReport) ([]byte, error) {
	suspicious := report.SuspiciousEvents()

	summary := jsonSummary{
		ReportDate:     report.GeneratedAt.Format(timeFormat),
		SubjectAddress: report.SubjectAddress,
		DataSummary: jsonDataSummary{
			TotalEvents: report.Counts.Total(),
			SMSCount:    report.Counts.SMS,
			CallCount:   report.Counts.Calls,
			EmailCount:  report.Counts.Emails,
		},
		Timeline: jsonTimelineSummary{TotalEvents: len(report.Timeline)},
		Contacts: jsonContactSummary{
			UniqueContacts: len(report.Contacts),
			TopContacts:    make(map[string]int),
		},
		Suspicious: jsonSuspiciousAnalysis{
			TotalSuspicious: len(suspicious),
			Categories:      make(map[string]int),
		},
		Risk: jsonRiskAssessment{
			Flags:         make([]string, 0, len(report.Assessment.Flags)),
			RiskScore:     report.Assessment.SimpleScore,
			WeightedScore: report.Assessment.Weighted,
		},
	}

	if start, end, ok := report.TimeRange(); ok {
		summary.Timeline.StartDate = start.Format(timeFormat)
		summary.Timeline.EndDate = end.Format(timeFormat)
	}
	for i, c := range report.TopContacts {
		if i >= 10 {
			break
		}
		summary.Contacts.TopContacts[c.Address] = c.TotalInteractions()
	}
	if len(report.Timeline) > 0 {
		summary.Suspicious.SuspiciousRate = float64(len(suspicious)) / float64(len(report.Timeline))
	}
	for _, ev := range suspicious {
		summary.Suspicious.Categories[string(ev.Tag)]++
	}
	for _, flag := range report.Assessment.Flags {
		summary.Risk.Flags = append(summary.Risk.Flags, flag.Label)
	}

	return json.MarshalIndent(summary, "", "  ")
}

// RenderSummary prints the short console digest.
func (r *Renderer) RenderSummary(w io.Writer, report *model.CaseReport) {
	fmt.Fprintf(w, "\nAnalyzed %d events (%d SMS, %d calls, %d emails)\n",
		report.Counts.Total(), report.Counts.SMS, report.Counts.Calls, report.Counts.Emails)
	if report.SubjectAddress != "" {
		fmt.Fprintf(w, "Inferred subject address: %s\n", report.SubjectAddress)
	}
	fmt.Fprintf(w, "Suspicious events: %d of %d\n", len(report.SuspiciousEvents()), len(report.Timeline))
	fmt.Fprintf(w, "Risk score: %d/100 (%s)  Weighted: %.1f/100 (%s)\n",
		report.Assessment.SimpleScore, report.Assessment.SimpleLevel(),
		report.Assessment.Weighted.Score, report.Assessment.Weighted.Level())
	for _, flag := range report.Assessment.Flags {
		fmt.Fprintf(w, "  ! %s\n", flag.Label)
	}
}

type countEntry struct {
	key   string
	count int
}

func sortedCounts(m map[model.ForensicTag]int) []countEntry {
	converted := make(map[string]int, len(m))
	for k, v := range m {
		converted[string(k)] = v
	}
	return sortedStringCounts(converted)
}

// sortedStringCounts orders by count descending, ties by key, so report
// sections are stable across runs.
func sortedStringCounts(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, countEntry{key: k, count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

func flagsMention(flags []model.RiskFlag, substr string) bool {
	for _, f := range flags {
		if strings.Contains(strings.ToLower(f.Label), substr) {
			return true
		}
	}
	return false
}
