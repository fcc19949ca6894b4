package contacts

import (
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// InferSubject guesses which address belongs to the investigation subject
// purely from frequency over the combined SMS and call contacts. Ties go
// to the first-encountered address. ok is false when no usable addresses
// exist.
//
// This is a heuristic: nothing here verifies the guess, and consumers
// must present it as an inference, not a fact.
func InferSubject(sms []model.SMSRecord, calls []model.CallRecord) (addr string, ok bool) {
	counts := make(map[string]int)
	var order []string

	bump := func(address string) {
		// Only canonicalized phone-style addresses participate.
		if address == "" || !strings.HasPrefix(address, "+") {
			return
		}
		if _, seen := counts[address]; !seen {
			order = append(order, address)
		}
		counts[address]++
	}

	for _, rec := range sms {
		bump(rec.Contact)
	}
	for _, rec := range calls {
		bump(rec.Contact)
	}

	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, address := range order[1:] {
		if counts[address] > counts[best] {
			best = address
		}
	}
	return best, true
}
