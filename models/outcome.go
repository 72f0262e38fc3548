package models

import "time"

// AttemptMetadata is recorded for every attempt, success or failure.
type AttemptMetadata struct {
	JurisdictionID  string         `json:"jurisdiction_id"`
	IdentifierValue string         `json:"identifier_value"`
	IdentifierKind  IdentifierKind `json:"identifier_kind"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	DurationMs      int64          `json:"duration_ms"`
}

// ScrapeOutcome is the tagged result of one attempt: exactly one of Record
// or Err is set. The engine always produces an outcome; no error from inside
// an attempt escapes past the lifecycle boundary.
type ScrapeOutcome struct {
	Record   *PropertyRecord  `json:"record,omitempty"`
	Err      *ClassifiedError `json:"-"`
	Metadata AttemptMetadata  `json:"metadata"`
}

// Success reports whether the outcome carries a record.
func (o *ScrapeOutcome) Success() bool {
	return o.Record != nil
}

// SuccessOutcome builds the success variant.
func SuccessOutcome(record *PropertyRecord, meta AttemptMetadata) *ScrapeOutcome {
	return &ScrapeOutcome{Record: record, Metadata: meta}
}

// FailureOutcome builds the failure variant.
func FailureOutcome(err *ClassifiedError, meta AttemptMetadata) *ScrapeOutcome {
	return &ScrapeOutcome{Err: err, Metadata: meta}
}
