package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// phonePatterns are tried in order; the first match wins. The cascade is
// international format, US format, bare digit run, dashed US digits.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{10,15}`),
	regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
}

var (
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
	digitRuns     = regexp.MustCompile(`\d+`)
)

// CanonicalPhone extracts and canonicalizes a phone number from free-form
// text. An empty or number-free input yields a synthetic address, so the
// contact field is never absent downstream.
func (n *Normalizer) CanonicalPhone(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return n.syntheticPhone()
	}

	for _, re := range phonePatterns {
		m := re.FindString(text)
		if m == "" {
			continue
		}
		number := nonPhoneChars.ReplaceAllString(m, "")
		switch {
		case len(number) == 10:
			return "+1" + number
		case len(number) == 11 && strings.HasPrefix(number, "1"):
			return "+" + number
		case strings.HasPrefix(number, "+"):
			return number
		default:
			return "+" + number
		}
	}

	// No pattern matched: concatenate every digit run and take the
	// leading ten digits when the total is plausible for a number.
	combined := strings.Join(digitRuns.FindAllString(text, -1), "")
	if len(combined) >= 10 && len(combined) <= 15 {
		return "+1" + combined[:10]
	}

	return n.syntheticPhone()
}

// syntheticPhone fabricates a plausible +1 number from the injected
// random source.
func (n *Normalizer) syntheticPhone() string {
	return fmt.Sprintf("+1%03d%04d", 200+n.rng.Intn(800), 1000+n.rng.Intn(9000))
}
