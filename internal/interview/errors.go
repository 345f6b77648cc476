package interview

import "fmt"

// ErrSessionNotFound indicates the session id is unknown, finished, or expired
type ErrSessionNotFound struct {
	SessionID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("interview session not found: %s", e.SessionID)
}

// ErrReportNotFound indicates no stored report exists for the session
type ErrReportNotFound struct {
	SessionID string
}

func (e *ErrReportNotFound) Error() string {
	return fmt.Sprintf("interview report not found: %s", e.SessionID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
