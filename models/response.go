package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether a property record was produced.
	Success bool `json:"success"`

	// Record is the extracted property record. Nil on failure.
	Record *PropertyRecord `json:"record,omitempty"`

	// Metadata carries attempt timing regardless of outcome.
	Metadata *AttemptMetadata `json:"metadata,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// JurisdictionInfo is the public listing shape for one configured
// jurisdiction.
type JurisdictionInfo struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"display_name"`
	Region          string   `json:"region"`
	IdentifierKinds []string `json:"identifier_kinds"`
	Enabled         bool     `json:"enabled"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string               `json:"status"` // "healthy" or "degraded"
	Uptime        string               `json:"uptime"`
	Version       string               `json:"version"`
	Jurisdictions []JurisdictionHealth `json:"jurisdictions,omitempty"`
}

// JurisdictionHealth is a snapshot of the rolling success/failure memory
// for one jurisdiction.
type JurisdictionHealth struct {
	JurisdictionID string `json:"jurisdiction_id"`
	Successes      int    `json:"successes"`
	Failures       int    `json:"failures"`
	LastErrorKind  string `json:"last_error_kind,omitempty"`
}

// BatchRunResponse acknowledges an accepted regression run.
type BatchRunResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchRunStatusResponse is the polling response for a regression run.
type BatchRunStatusResponse struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"` // "processing", "completed"
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Result    *BatchResult `json:"result,omitempty"`
}
