package services

import (
	"errors"
)

type ErrorCode string

const (
	ErrorValidation      ErrorCode = "validation"
	ErrorTransport       ErrorCode = "transport"
	ErrorInProgress      ErrorCode = "in_progress"
	ErrorMissingResult   ErrorCode = "missing_result"
	ErrorMalformedResult ErrorCode = "malformed_result"
	ErrorStorage         ErrorCode = "storage"
	ErrorInvalid         ErrorCode = "invalid"
	ErrorNotFound        ErrorCode = "not_found"
)

// ServiceError is the error surface the HTTP layer maps to a status. Fields
// lists offending input keys for validation failures; Err keeps the cause.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Fields  []string
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

// NotificationKey is the i18n key of the notification shown for e.
func (e *ServiceError) NotificationKey() string {
	return "error." + string(e.Code)
}

func NewValidationError(msg string, fields []string, cause error) error {
	return &ServiceError{Code: ErrorValidation, Message: msg, Fields: fields, Err: cause}
}

func NewTransportError(cause error) error {
	return &ServiceError{Code: ErrorTransport, Message: "classifier unavailable: " + cause.Error(), Err: cause}
}

func NewInProgressError() error {
	return &ServiceError{Code: ErrorInProgress, Message: "a submission is already in progress"}
}

func NewMissingResultError() error {
	return &ServiceError{Code: ErrorMissingResult, Message: "no assessment result"}
}

func NewMalformedResultError(cause error) error {
	return &ServiceError{Code: ErrorMalformedResult, Message: cause.Error(), Err: cause}
}

func NewStorageError(cause error) error {
	return &ServiceError{Code: ErrorStorage, Message: "could not save result: " + cause.Error(), Err: cause}
}

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
