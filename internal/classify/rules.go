package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule pairs a category with its ordered keyword list. Within a category
// only the first matching keyword produces a reason.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet holds the per-source rule tables. The tables are intentionally
// asymmetric between SMS, email, and calls; they were tuned per source
// and must not be unified. Order is significant everywhere.
type RuleSet struct {
	SMS   []Rule `yaml:"sms"`
	Email []Rule `yaml:"email"`

	// Routine is the second-pass table applied only when no reasons were
	// collected; its categories are returned directly as tags.
	Routine []Rule `yaml:"routine"`

	// SuspiciousDomains are sender-domain fragments that flag an email
	// regardless of keyword matches.
	SuspiciousDomains []string `yaml:"suspicious_domains"`
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() *RuleSet {
	return &RuleSet{
		SMS: []Rule{
			{Category: "Financial", Keywords: []string{
				"payment", "bank", "transfer", "money", "bitcoin", "crypto",
				"pay", "fund", "transaction", "cash", "deposit", "withdrawal",
			}},
			{Category: "Suspicious", Keywords: []string{
				"delete", "burner", "encrypt", "vpn", "tor", "secret",
				"confidential", "hide", "cover", "erase", "destroy",
			}},
			{Category: "Urgent", Keywords: []string{
				"urgent", "emergency", "asap", "immediately", "quick", "rush", "now", "stat",
			}},
			{Category: "Coordination", Keywords: []string{
				"meet", "location", "address", "time", "place", "venue",
				"coordinates", "where", "when", "parking",
			}},
			{Category: "Spam", Keywords: []string{
				"win", "free", "prize", "offer", "discount", "click", "link",
				"http", "www.", "congratulations", "selected",
			}},
			{Category: "Threatening", Keywords: []string{
				"threat", "danger", "warning", "alert", "risk", "dangerous", "careful",
			}},
		},
		Email: []Rule{
			{Category: "Phishing", Keywords: []string{
				"password", "login", "account", "verify", "security", "update", "confirm",
			}},
			{Category: "Financial", Keywords: []string{
				"invoice", "payment", "billing", "overdue", "refund", "charge", "fee",
			}},
			{Category: "Suspicious", Keywords: []string{
				"urgent", "action required", "immediately", "important", "attention",
			}},
			{Category: "Spam", Keywords: []string{
				"winner", "selected", "free", "offer", "discount", "limited time",
			}},
			{Category: "Malicious", Keywords: []string{
				"attachment", "download", "click here", "link", "update now",
			}},
		},
		Routine: []Rule{
			{Category: "BUSINESS", Keywords: []string{
				"meeting", "project", "report", "deadline", "client", "customer", "business", "work",
			}},
			{Category: "PERSONAL", Keywords: []string{
				"love", "dear", "family", "friend", "happy", "birthday", "miss", "home", "dinner",
			}},
			{Category: "ROUTINE", Keywords: []string{
				"hello", "hi", "ok", "yes", "no", "thanks", "thank you", "please",
			}},
		},
		SuspiciousDomains: []string{".ru", ".cn", ".tk", ".ml", ".ga", ".cf", ".xyz"},
	}
}

// LoadRules reads a rule set from a YAML file. Sections left empty fall
// back to the built-in tables, so a file can override only one table.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var loaded RuleSet
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	defaults := DefaultRules()
	if loaded.SMS == nil {
		loaded.SMS = defaults.SMS
	}
	if loaded.Email == nil {
		loaded.Email = defaults.Email
	}
	if loaded.Routine == nil {
		loaded.Routine = defaults.Routine
	}
	if loaded.SuspiciousDomains == nil {
		loaded.SuspiciousDomains = defaults.SuspiciousDomains
	}
	return &loaded, nil
}

// Marshal renders the rule set as YAML, for `rules show`.
func (r *RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
