package models

import (
	"errors"
	"fmt"
)

// Error codes attached to StageError for internal error handling and
// log correlation.
const (
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeLoginTimeout = "LOGIN_TIMEOUT"
	ErrCodeSearchFailed = "SEARCH_FAILED"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeExtraction   = "EXTRACTION_FAILED"
	ErrCodeExport       = "EXPORT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// End-of-results sentinels. These are normal loop-termination signals
// for the collector, not failures; match with errors.Is.
var (
	// ErrNoResults means the results container never appeared.
	ErrNoResults = errors.New("no results container on page")

	// ErrNoNextPage means no next-page control could be located.
	ErrNoNextPage = errors.New("no next page control")
)

// StageError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type StageError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(code, message string, err error) *StageError {
	return &StageError{Code: code, Message: message, Err: err}
}
