package usecase

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrorInvalidSessionID   ErrorCode = "INVALID_SESSION_IDENTIFIER"
	ErrorStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrorStorageCorrupt     ErrorCode = "STORAGE_CORRUPT"
	ErrorGenerationFailed   ErrorCode = "GENERATION_FAILED"
	ErrorPersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	ErrorInternal           ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf extracts the error code from err, or ErrorInternal when err
// is not a usecase error.
func CodeOf(err error) ErrorCode {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ErrorInternal
}

// UserMessage returns the client-facing description for a code. Reasons
// and wrapped errors stay in logs.
func UserMessage(code ErrorCode) string {
	switch code {
	case ErrorInvalidInput:
		return "The request was malformed."
	case ErrorInvalidSessionID:
		return "The supplied session identifier is not valid."
	case ErrorStorageUnavailable:
		return "Conversation storage is temporarily unavailable."
	case ErrorStorageCorrupt:
		return "The stored conversation record could not be read."
	case ErrorGenerationFailed:
		return "The reply could not be generated."
	case ErrorPersistenceFailed:
		return "The reply was generated but could not be saved."
	default:
		return "An internal error occurred."
	}
}
