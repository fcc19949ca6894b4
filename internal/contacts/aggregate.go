// Package contacts builds per-contact aggregate statistics and infers the
// likely address of the investigation subject from traffic frequency.
package contacts

import (
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// addressBlacklist lists values that never count as a contact identity,
// compared case-insensitively after trimming.
var addressBlacklist = map[string]struct{}{
	"":        {},
	"unknown": {},
	"null":    {},
	"none":    {},
}

// usableAddress trims an address and rejects blacklisted values.
func usableAddress(raw string) (string, bool) {
	addr := strings.TrimSpace(raw)
	if _, banned := addressBlacklist[strings.ToLower(addr)]; banned {
		return "", false
	}
	return addr, true
}

// Aggregate walks all three normalized record sets once and returns a
// fresh map of per-address statistics. Addresses match by exact string
// equality after normalization; there is no fuzzy alias resolution.
func Aggregate(sms []model.SMSRecord, calls []model.CallRecord, emails []model.EmailRecord) map[string]*model.Contact {
	out := make(map[string]*model.Contact)

	get := func(addr string) *model.Contact {
		c, ok := out[addr]
		if !ok {
			c = &model.Contact{Address: addr}
			out[addr] = c
		}
		return c
	}

	for _, rec := range sms {
		addr, ok := usableAddress(rec.Contact)
		if !ok {
			continue
		}
		c := get(addr)
		c.SMSCount++
		if rec.Timestamp.After(c.LastSMS) {
			c.LastSMS = rec.Timestamp
		}
	}

	for _, rec := range calls {
		addr, ok := usableAddress(rec.Contact)
		if !ok {
			continue
		}
		c := get(addr)
		c.CallCount++
		c.TotalCallDuration += rec.Duration
		if rec.Timestamp.After(c.LastCall) {
			c.LastCall = rec.Timestamp
		}
	}

	for _, rec := range emails {
		if addr, ok := usableAddress(rec.Sender); ok {
			c := get(addr)
			c.SentEmailCount++
			if rec.Timestamp.After(c.LastEmailSent) {
				c.LastEmailSent = rec.Timestamp
			}
		}
		if addr, ok := usableAddress(rec.Recipient); ok {
			c := get(addr)
			c.ReceivedEmailCount++
			if rec.Timestamp.After(c.LastEmailReceived) {
				c.LastEmailReceived = rec.Timestamp
			}
		}
	}

	return out
}
