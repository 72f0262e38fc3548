package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classifications. Every error that
// crosses the engine boundary carries exactly one of these.
type ErrorKind string

const (
	ErrCountyNotFound        ErrorKind = "COUNTY_NOT_FOUND"
	ErrCountyDisabled        ErrorKind = "COUNTY_DISABLED"
	ErrInvalidIdentifierType ErrorKind = "INVALID_IDENTIFIER_TYPE"
	ErrNavigationFailed      ErrorKind = "NAVIGATION_FAILED"
	ErrPageLoadTimeout       ErrorKind = "PAGE_LOAD_TIMEOUT"
	ErrSearchFailed          ErrorKind = "SEARCH_FAILED"
	ErrNoResultsFound        ErrorKind = "NO_RESULTS_FOUND"
	ErrMultipleResultsFound  ErrorKind = "MULTIPLE_RESULTS_FOUND"
	ErrExtractionFailed      ErrorKind = "EXTRACTION_FAILED"
	ErrMissingRequiredField  ErrorKind = "MISSING_REQUIRED_FIELD"
	ErrInvalidDataFormat     ErrorKind = "INVALID_DATA_FORMAT"
	ErrBrowserLaunchFailed   ErrorKind = "BROWSER_LAUNCH_FAILED"
	ErrBrowserCrash          ErrorKind = "BROWSER_CRASH"
	ErrTimeout               ErrorKind = "TIMEOUT"
	ErrValidation            ErrorKind = "VALIDATION_ERROR"
	ErrUnknown               ErrorKind = "UNKNOWN_ERROR"
)

// ClassifiedError is the internal error type carrying a kind from the closed
// taxonomy. It implements the error interface and supports wrapping via Unwrap.
type ClassifiedError struct {
	Kind           ErrorKind
	Message        string
	Detail         error // wrapped original error, may be nil
	JurisdictionID string
	Identifier     string
}

func (e *ClassifiedError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Detail
}

// WithContext attaches jurisdiction and identifier context, returning the
// same error for chaining.
func (e *ClassifiedError) WithContext(jurisdictionID, identifier string) *ClassifiedError {
	e.JurisdictionID = jurisdictionID
	e.Identifier = identifier
	return e
}

// NewClassified creates a ClassifiedError of an arbitrary kind.
func NewClassified(kind ErrorKind, message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message, Detail: detail}
}

// Per-kind constructors. Each requires a message; detail is optional context
// from the underlying failure.

func NewCountyNotFound(jurisdictionID string) *ClassifiedError {
	return &ClassifiedError{
		Kind:           ErrCountyNotFound,
		Message:        fmt.Sprintf("no strategy registered for jurisdiction %q", jurisdictionID),
		JurisdictionID: jurisdictionID,
	}
}

func NewCountyDisabled(jurisdictionID string) *ClassifiedError {
	return &ClassifiedError{
		Kind:           ErrCountyDisabled,
		Message:        fmt.Sprintf("jurisdiction %q is disabled", jurisdictionID),
		JurisdictionID: jurisdictionID,
	}
}

func NewInvalidIdentifierType(message string) *ClassifiedError {
	return &ClassifiedError{Kind: ErrInvalidIdentifierType, Message: message}
}

func NewNavigationFailed(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrNavigationFailed, Message: message, Detail: detail}
}

func NewPageLoadTimeout(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrPageLoadTimeout, Message: message, Detail: detail}
}

func NewSearchFailed(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrSearchFailed, Message: message, Detail: detail}
}

func NewNoResultsFound(message string) *ClassifiedError {
	return &ClassifiedError{Kind: ErrNoResultsFound, Message: message}
}

func NewMultipleResultsFound(message string) *ClassifiedError {
	return &ClassifiedError{Kind: ErrMultipleResultsFound, Message: message}
}

func NewExtractionFailed(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrExtractionFailed, Message: message, Detail: detail}
}

func NewMissingRequiredField(field string) *ClassifiedError {
	return &ClassifiedError{
		Kind:    ErrMissingRequiredField,
		Message: fmt.Sprintf("required field %q is missing", field),
	}
}

func NewInvalidDataFormat(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrInvalidDataFormat, Message: message, Detail: detail}
}

func NewBrowserLaunchFailed(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrBrowserLaunchFailed, Message: message, Detail: detail}
}

func NewBrowserCrash(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrBrowserCrash, Message: message, Detail: detail}
}

func NewTimeout(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrTimeout, Message: message, Detail: detail}
}

func NewValidationError(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrValidation, Message: message, Detail: detail}
}

func NewUnknownError(message string, detail error) *ClassifiedError {
	return &ClassifiedError{Kind: ErrUnknown, Message: message, Detail: detail}
}

// Classify converts an arbitrary error into a ClassifiedError. Already
// classified errors pass through unchanged; context deadline/cancellation
// surface as TIMEOUT; anything else is wrapped as the given default kind.
func Classify(err error, defaultKind ErrorKind, message string) *ClassifiedError {
	var ce *ClassifiedError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeout(message, err)
	case errors.Is(err, context.Canceled):
		return NewTimeout("attempt canceled", err)
	default:
		return NewClassified(defaultKind, message, err)
	}
}

// ErrorDetail is the structured error returned in API responses.
type ErrorDetail struct {
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	Detail         string `json:"detail,omitempty"`
	JurisdictionID string `json:"jurisdiction_id,omitempty"`
	Identifier     string `json:"identifier,omitempty"`
}

// ToDetail converts a ClassifiedError to its API-facing shape.
func (e *ClassifiedError) ToDetail() *ErrorDetail {
	d := &ErrorDetail{
		Kind:           string(e.Kind),
		Message:        e.Message,
		JurisdictionID: e.JurisdictionID,
		Identifier:     e.Identifier,
	}
	if e.Detail != nil {
		d.Detail = e.Detail.Error()
	}
	return d
}
