package storage

import "time"

// Exchange status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Exchange is the ledger record of one relay attempt. It holds sizes and timings
// only; message and reply text are never stored.
type Exchange struct {
	ID           string // UUID
	RequestID    string // X-Request-ID of the inbound request, may be empty
	Model        string
	HistoryLen   int // number of history entries supplied by the caller
	MessageChars int
	ReplyChars   int
	Status       string // StatusOK or StatusError
	Error        string
	Duration     time.Duration
	CreatedAt    time.Time
}

// ExchangeSummary aggregates the ledger.
type ExchangeSummary struct {
	Total        int
	OK           int
	Failed       int
	MeanDuration time.Duration
	LastAt       time.Time // zero when the ledger is empty
}
