package models

// TestCase is a saved regression case: a known-good request with the owner
// and address values the site returned when the case was recorded.
type TestCase struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	JurisdictionID  string         `json:"jurisdiction_id"`
	IdentifierKind  IdentifierKind `json:"identifier_kind"`
	IdentifierValue string         `json:"identifier_value"`
	ExpectedOwner   string         `json:"expected_owner_name"`
	ExpectedAddress string         `json:"expected_address"`
	Description     string         `json:"description,omitempty"`
}

// Assertion is one fuzzy field comparison within a test result.
type Assertion struct {
	Field      string  `json:"field"`
	Expected   string  `json:"expected"`
	Actual     string  `json:"actual"`
	Passed     bool    `json:"passed"`
	Similarity float64 `json:"similarity"`
}

// TestResult is the outcome of running one TestCase. Passed is true iff the
// scrape succeeded and every assertion passed.
type TestResult struct {
	TestCaseID string         `json:"test_case_id"`
	Passed     bool           `json:"passed"`
	Outcome    *ScrapeOutcome `json:"outcome,omitempty"`
	Error      *ErrorDetail   `json:"error,omitempty"`
	Assertions []Assertion    `json:"assertions"`
	DurationMs int64          `json:"duration_ms"`
}

// BatchResult aggregates a sequential run over a set of TestCases. Results
// preserve input order.
type BatchResult struct {
	Total           int          `json:"total"`
	Passed          int          `json:"passed"`
	Failed          int          `json:"failed"`
	Results         []TestResult `json:"results"`
	TotalDurationMs int64        `json:"total_duration_ms"`
}
