package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a stable code that the
// HTTP layer maps onto status codes.
type DomainError struct {
	Code      string
	Message   string
	Err       error
	Retryable bool
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes understood by the request handler.
const (
	CodeInvalidURL       = "INVALID_URL"
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeOutputMissing    = "OUTPUT_MISSING"
	CodeUploadFailed     = "UPLOAD_FAILED"
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error, retryable bool) *DomainError {
	return &DomainError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

// Common domain errors
var (
	ErrInvalidURL = &DomainError{
		Code:      CodeInvalidURL,
		Message:   "The provided URL is invalid",
		Retryable: false,
	}

	ErrOutputMissing = &DomainError{
		Code:      CodeOutputMissing,
		Message:   "Download succeeded but file path was not found",
		Retryable: false,
	}
)

// NewAuthRequiredError wraps an extraction failure that looks like a site-side
// bot verification. The message carries remediation guidance instead of raw
// library output.
func NewAuthRequiredError(err error) *DomainError {
	return &DomainError{
		Code: CodeAuthRequired,
		Message: "The site is requiring cookies. Set COOKIES_FROM_BROWSER " +
			"or COOKIES_FILE and restart the server",
		Err:       err,
		Retryable: false,
	}
}

// NewExtractionFailedError wraps a failure raised by the download library.
func NewExtractionFailedError(err error) *DomainError {
	return &DomainError{
		Code:      CodeExtractionFailed,
		Message:   "Failed to extract and download media",
		Err:       err,
		Retryable: true,
	}
}

// NewUploadFailedError wraps a storage failure where no local fallback was
// possible.
func NewUploadFailedError(err error) *DomainError {
	return &DomainError{
		Code:      CodeUploadFailed,
		Message:   "Failed to upload file to object storage",
		Err:       err,
		Retryable: true,
	}
}

// CodeOf returns the domain error code carried by err, or an empty string when
// err is not a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
