// Package classify assigns each communication a forensic category tag and
// an ordered list of matched-rule reasons. The rules are deterministic
// string and metadata checks; tags are heuristics for triage, not
// verified findings.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// digitRunPatterns spot code-word-like sequences in SMS text: a run of
// four or more digits, or letters butted against three or more digits.
// Only the first matching pattern yields a reason.
var digitRunPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4,}`),
	regexp.MustCompile(`[a-z]\d{3,}`),
	regexp.MustCompile(`\d{3,}[a-z]`),
}

// Classifier evaluates records against a rule set. The zero value is not
// usable; construct with New.
type Classifier struct {
	rules *RuleSet
}

// New creates a Classifier. A nil rules argument selects the built-in
// tables.
func New(rules *RuleSet) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// SMS classifies a short message from its text content.
func (c *Classifier) SMS(rec model.SMSRecord) (model.ForensicTag, []string) {
	text := strings.ToLower(rec.Message)
	reasons := keywordReasons(c.rules.SMS, text)

	if len(rec.Message) < 10 {
		reasons = append(reasons, "Short message: Message length < 10 characters")
	}

	for _, re := range digitRunPatterns {
		if re.MatchString(text) {
			reasons = append(reasons, fmt.Sprintf("Unusual pattern: Contains '%s'", re.String()))
			break
		}
	}

	return c.decide(reasons, text)
}

// Email classifies an email from its subject plus body, with structural
// checks on the sender address.
func (c *Classifier) Email(rec model.EmailRecord) (model.ForensicTag, []string) {
	text := strings.ToLower(rec.Subject) + " " + strings.ToLower(rec.Body)
	reasons := keywordReasons(c.rules.Email, text)

	sender := strings.ToLower(rec.Sender)
	if sender != "" && (strings.Contains(sender, "anonymous") || strings.Contains(sender, "noreply")) {
		reasons = append(reasons, "Anonymous sender")
	}
	for _, domain := range c.rules.SuspiciousDomains {
		if strings.Contains(sender, domain) {
			reasons = append(reasons, "Suspicious sender domain")
			break
		}
	}

	return c.decide(reasons, text)
}

// Call classifies a call from its duration, CDR metrics, and hour of day.
// The searchable text for the routine fallback is the call-type string.
func (c *Classifier) Call(rec model.CallRecord) (model.ForensicTag, []string) {
	var reasons []string

	if rec.Duration <= 5 {
		reasons = append(reasons, "Very short call (<5 seconds)")
	} else if rec.Duration > 3600 {
		reasons = append(reasons, "Extended communication (>1 hour)")
	}

	if rec.Metrics.IntlMins > 5 {
		reasons = append(reasons, "International call (>5 minutes)")
	}
	if rec.Metrics.Churn {
		reasons = append(reasons, "Churn risk customer")
	}
	if rec.Metrics.CustServCalls > 3 {
		reasons = append(reasons, fmt.Sprintf("Multiple customer service calls (%d)", rec.Metrics.CustServCalls))
	}
	if hour := rec.Timestamp.Hour(); hour >= 0 && hour <= 5 {
		reasons = append(reasons, fmt.Sprintf("Late night call (%02d:00)", hour))
	}

	return c.decide(reasons, strings.ToLower(string(rec.Type)))
}

// keywordReasons scans the text against an ordered rule table. The first
// keyword found in a category yields exactly one reason for that category
// and stops the category's keyword scan.
func keywordReasons(rules []Rule, text string) []string {
	var reasons []string
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				reasons = append(reasons, fmt.Sprintf("%s: Contains '%s'", rule.Category, kw))
				break
			}
		}
	}
	return reasons
}

// decide runs the two-stage tag decision. With collected reasons, a fixed
// priority cascade over the reason text picks the tag. With none, a
// second, independent keyword pass over the routine tables applies.
// Both stages match strings, never semantics; the asymmetry is intended.
func (c *Classifier) decide(reasons []string, text string) (model.ForensicTag, []string) {
	if len(reasons) > 0 {
		switch {
		case anyContains(reasons, "Financial"):
			return model.TagFinancial, reasons
		case anyContains(reasons, "Suspicious") || anyContains(reasons, "Anonymous"):
			return model.TagSuspicious, reasons
		case anyContains(reasons, "Urgent"):
			return model.TagUrgent, reasons
		case anyContains(reasons, "International"):
			return model.TagInternational, reasons
		case anyContains(reasons, "Extended") || anyContainsFold(reasons, "long"):
			return model.TagExtendedComm, reasons
		case anyContains(reasons, "Spam") || anyContains(reasons, "Phishing"):
			return model.TagSpam, reasons
		default:
			return model.TagSuspicious, reasons
		}
	}

	for _, rule := range c.rules.Routine {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return model.ForensicTag(rule.Category), []string{"Routine communication"}
			}
		}
	}
	return model.TagRoutine, []string{"Normal communication"}
}

func anyContains(reasons []string, substr string) bool {
	for _, r := range reasons {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func anyContainsFold(reasons []string, substr string) bool {
	for _, r := range reasons {
		if strings.Contains(strings.ToLower(r), substr) {
			return true
		}
	}
	return false
}
