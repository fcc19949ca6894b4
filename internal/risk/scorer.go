// Package risk runs a fixed battery of statistical checks over the fused
// timeline and produces ranked anomaly flags plus two composite scores.
//
// The two scores are separate on purpose: the simple score summarizes the
// flag count, the weighted score grades four capped factors over the
// suspicious subset. Different report views show different ones; they are
// never reconciled into a single number.
package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/commtrace/commtrace/internal/model"
)

// minEvents is the floor below which no anomaly flag fires; tiny
// timelines make every ratio meaningless.
const minEvents = 10

// maxFlags caps the flag list.
const maxFlags = 10

// Score evaluates the already-fused, timestamp-sorted timeline.
// subjectAddr may be empty; the business-hours check only runs when the
// subject is known.
func Score(events []model.TimelineEvent, subjectAddr string) model.Assessment {
	flags := detectFlags(events, subjectAddr)
	simple := len(flags) * 10
	if simple > 100 {
		simple = 100
	}
	return model.Assessment{
		Flags:       flags,
		SimpleScore: simple,
		Weighted:    weightedScore(events, subjectAddr),
	}
}

// detectFlags runs the ten checks in their fixed order. Each satisfied
// condition appends one flag; the list is truncated to maxFlags.
func detectFlags(events []model.TimelineEvent, subjectAddr string) []model.RiskFlag {
	if len(events) < minEvents {
		return nil
	}

	var flags []model.RiskFlag
	total := float64(len(events))

	// 1. Late-night concentration (midnight to 5 AM).
	lateNight := 0
	for _, ev := range events {
		if h := ev.Timestamp.Hour(); h >= 0 && h <= 5 {
			lateNight++
		}
	}
	if pct := float64(lateNight) / total * 100; pct > 20 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("High late-night activity: %d events (%.1f%%)", lateNight, pct),
			Explanation: fmt.Sprintf("Normal business/personal communications typically occur during daytime. High nighttime activity (%.1f%%) may indicate covert communications.", pct),
		})
	}

	// 2. Rapid-fire sequences: adjacent sorted events under 30 seconds apart.
	rapid := 0
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Sub(events[i-1].Timestamp) < 30*time.Second {
			rapid++
		}
	}
	if float64(rapid) > total*0.05 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("Rapid-fire communications: %d sequences <30s apart", rapid),
			Explanation: "Multiple communications within seconds may indicate coordination, panic, or automated communications.",
		})
	}

	// 3. Unknown contacts.
	unknown := 0
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Contact), "unknown") {
			unknown++
		}
	}
	if float64(unknown) > total*0.1 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("High unknown contacts: %d (%.1f%%)", unknown, float64(unknown)/total*100),
			Explanation: "High percentage of communications with unknown/unidentified contacts may indicate attempts to hide identities.",
		})
	}

	// 4-7. Category volume checks.
	tagCounts := make(map[model.ForensicTag]int)
	for _, ev := range events {
		tagCounts[ev.Tag]++
	}
	if n := tagCounts[model.TagFinancial]; n > 10 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("Financial-related communications: %d", n),
			Explanation: "Multiple financial-related communications may indicate money transfers, scams, or financial crimes.",
		})
	}
	if n := tagCounts[model.TagSuspicious]; n > 5 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("Suspicious keyword communications: %d", n),
			Explanation: "Communications contain suspicious keywords like 'delete', 'secret', 'encrypt', etc.",
		})
	}
	if n := tagCounts[model.TagInternational]; n > 3 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("International communications: %d", n),
			Explanation: "International communications may indicate foreign contacts or cross-border activities.",
		})
	}
	if n := tagCounts[model.TagExtendedComm]; n > 2 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("Extended communications (>1 hour): %d", n),
			Explanation: "Exceptionally long communications may indicate detailed planning or negotiations.",
		})
	}

	// 8. Weekend concentration.
	weekend := 0
	for _, ev := range events {
		if wd := ev.Timestamp.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}
	if pct := float64(weekend) / total * 100; pct > 40 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("High weekend activity: %.1f%%", pct),
			Explanation: "Unusually high weekend activity may indicate non-business related communications or shift work.",
		})
	}

	// 9. Single-contact concentration.
	if contact, count := topContact(events); count > 0 && float64(count) > total*0.3 {
		flags = append(flags, model.RiskFlag{
			Label:       fmt.Sprintf("High concentration with single contact: %s (%d events, %.1f%%)", shorten(contact, 20), count, float64(count)/total*100),
			Explanation: "Over 30% of all communications are with a single contact, which may indicate a primary relationship or dependency.",
		})
	}

	// 10. Business-hours absence, only when the subject is known.
	if subjectAddr != "" {
		business := 0
		for _, ev := range events {
			if h := ev.Timestamp.Hour(); h >= 9 && h <= 17 {
				business++
			}
		}
		if pct := float64(business) / total * 100; pct < 20 {
			flags = append(flags, model.RiskFlag{
				Label:       fmt.Sprintf("Low business hours activity: %.1f%%", pct),
				Explanation: "Most communications occur outside normal business hours (9AM-5PM), which may indicate non-work related activities.",
			})
		}
	}

	if len(flags) > maxFlags {
		flags = flags[:maxFlags]
	}
	return flags
}

// weightedScore grades four capped factors over the suspicious-event
// subset: volume (30), high-risk categories (25), late-night
// concentration (20), single-contact concentration (25).
func weightedScore(events []model.TimelineEvent, subjectAddr string) model.WeightedScore {
	var suspicious []model.TimelineEvent
	for _, ev := range events {
		if ev.Tag.IsSuspicious() {
			suspicious = append(suspicious, ev)
		}
	}
	if len(suspicious) == 0 || len(events) == 0 {
		return model.WeightedScore{}
	}

	susCount := float64(len(suspicious))
	var factors []model.RiskFactor
	totalPoints := 0
	maxPoints := 0
	add := func(label string, points, max int) {
		factors = append(factors, model.RiskFactor{Label: label, Points: points, Max: max})
		totalPoints += points
		maxPoints += max
	}

	// Factor 1: suspicious-event volume.
	ratio := susCount / float64(len(events))
	switch {
	case ratio > 0.3:
		add(fmt.Sprintf("High volume of suspicious communications (>%.1f%%)", ratio*100), 30, 30)
	case ratio > 0.1:
		add(fmt.Sprintf("Moderate volume of suspicious communications (>%.1f%%)", ratio*100), 20, 30)
	case ratio > 0.05:
		add(fmt.Sprintf("Some suspicious communications (>%.1f%%)", ratio*100), 10, 30)
	default:
		add("Low volume of suspicious communications", 5, 30)
	}

	// Factor 2: high-risk category volume.
	highRisk := 0
	for _, ev := range suspicious {
		if ev.Tag == model.TagSuspicious || ev.Tag == model.TagFinancial {
			highRisk++
		}
	}
	switch {
	case highRisk > 10:
		add(fmt.Sprintf("Multiple high-risk communications (%d)", highRisk), 25, 25)
	case highRisk > 5:
		add(fmt.Sprintf("Several high-risk communications (%d)", highRisk), 15, 25)
	case highRisk > 0:
		add(fmt.Sprintf("Some high-risk communications (%d)", highRisk), 5, 25)
	default:
		add("No high-risk communications detected", 0, 25)
	}

	// Factor 3: late-night concentration among suspicious events.
	lateNight := 0
	for _, ev := range suspicious {
		if h := ev.Timestamp.Hour(); h >= 0 && h <= 5 {
			lateNight++
		}
	}
	lateRatio := float64(lateNight) / susCount
	switch {
	case lateRatio > 0.3:
		add(fmt.Sprintf("High late-night suspicious activity (%.1f%%)", lateRatio*100), 20, 20)
	case lateRatio > 0.1:
		add(fmt.Sprintf("Moderate late-night suspicious activity (%.1f%%)", lateRatio*100), 10, 20)
	default:
		add("Normal time distribution for suspicious communications", 0, 20)
	}

	// Factor 4: single-contact concentration among suspicious events.
	// The subject's own address does not count as a suspicious contact.
	counts := make(map[string]int)
	top := 0
	for _, ev := range suspicious {
		if ev.Contact == "" || ev.Contact == subjectAddr {
			continue
		}
		counts[ev.Contact]++
		if counts[ev.Contact] > top {
			top = counts[ev.Contact]
		}
	}
	if top > 0 {
		conc := float64(top) / susCount
		switch {
		case conc > 0.5:
			add(fmt.Sprintf("High concentration with single contact (%.1f%%)", conc*100), 25, 25)
		case conc > 0.3:
			add(fmt.Sprintf("Moderate concentration with contacts (%.1f%%)", conc*100), 15, 25)
		default:
			add("Diverse suspicious contacts", 5, 25)
		}
	} else {
		add("No suspicious contacts identified", 0, 25)
	}

	score := float64(totalPoints) / float64(maxPoints) * 100
	if score > 100 {
		score = 100
	}
	return model.WeightedScore{Score: score, Factors: factors}
}

// topContact returns the most frequent event contact and its count, ties
// by first encounter.
func topContact(events []model.TimelineEvent) (string, int) {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, ev := range events {
		counts[ev.Contact]++
		if counts[ev.Contact] > bestCount {
			best = ev.Contact
			bestCount = counts[ev.Contact]
		}
	}
	return best, bestCount
}

func shorten(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
