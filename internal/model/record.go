package model

import "time"

// SourceKind identifies which evidence stream a record came from.
type SourceKind string

const (
	SourceSMS   SourceKind = "SMS"
	SourceCall  SourceKind = "CALL"
	SourceEmail SourceKind = "EMAIL"
)

// RawRow is one tokenized input row: the column names in their original
// order plus the column-name -> value mapping. Supplied by the ingestion
// layer; the core never opens files itself.
type RawRow struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value for a column, or "" when absent.
func (r RawRow) Get(column string) string {
	return r.Values[column]
}

// Direction of an SMS message relative to the device under examination.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// CallType is derived from CDR metrics during normalization.
type CallType string

const (
	CallAnswered      CallType = "ANSWERED"
	CallMissed        CallType = "MISSED"
	CallShort         CallType = "SHORT_CALL"
	CallLong          CallType = "LONG_CALL"
	CallComplaint     CallType = "COMPLAINT"
	CallInternational CallType = "INTERNATIONAL"
)

// Record is the common surface of the three normalized record variants.
type Record interface {
	RecordID() string
	RecordTime() time.Time
	Kind() SourceKind
}

// SMSRecord is a normalized short message.
// Timestamp is always resolved; when the source value was missing or
// unparsable a synthetic one inside the SMS historical window was
// substituted.
type SMSRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Contact   string    `json:"contact"`
	Direction Direction `json:"direction"`
	Message   string    `json:"message"`
}

func (r SMSRecord) RecordID() string      { return r.ID }
func (r SMSRecord) RecordTime() time.Time { return r.Timestamp }
func (r SMSRecord) Kind() SourceKind      { return SourceSMS }

// CallMetrics carries the per-band CDR side data used by the classifier
// and the risk scorer.
type CallMetrics struct {
	DayMins       float64 `json:"day_mins"`
	EveMins       float64 `json:"eve_mins"`
	NightMins     float64 `json:"night_mins"`
	IntlMins      float64 `json:"intl_mins"`
	DayCalls      int     `json:"day_calls"`
	EveCalls      int     `json:"eve_calls"`
	NightCalls    int     `json:"night_calls"`
	IntlCalls     int     `json:"intl_calls"`
	DayCharge     float64 `json:"day_charge"`
	EveCharge     float64 `json:"eve_charge"`
	NightCharge   float64 `json:"night_charge"`
	IntlCharge    float64 `json:"intl_charge"`
	VMailMessages int     `json:"vmail_messages"`
	AccountLength int     `json:"account_length"`
	Churn         bool    `json:"churn"`
	CustServCalls int     `json:"custserv_calls"`
}

// CallRecord is a normalized call detail record.
// Duration is in whole seconds and never negative.
type CallRecord struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Contact   string      `json:"contact"`
	Duration  int         `json:"duration"`
	Type      CallType    `json:"type"`
	Metrics   CallMetrics `json:"call_details"`
}

func (r CallRecord) RecordID() string      { return r.ID }
func (r CallRecord) RecordTime() time.Time { return r.Timestamp }
func (r CallRecord) Kind() SourceKind      { return SourceCall }

// EmailRecord is a normalized email message. Addresses are trimmed but
// otherwise kept as found.
type EmailRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

func (r EmailRecord) RecordID() string      { return r.ID }
func (r EmailRecord) RecordTime() time.Time { return r.Timestamp }
func (r EmailRecord) Kind() SourceKind      { return SourceEmail }
