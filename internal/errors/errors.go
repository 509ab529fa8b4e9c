package errors

import (
	"errors"
	"net/http"
)

// ErrorWithStatusCode is the error type every service operation returns for
// caller-correctable failures. Handlers map it onto the HTTP response with
// utils.WriteErrorAndStatusCode; anything else is treated as a 500.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Constructors for the failure kinds the chat core distinguishes. Clients
// retry differently per kind, so each keeps its own status code.

// NewValidation covers malformed, empty or oversized input.
func NewValidation(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest}
}

// NewAuthorUnknown means the sender does not exist in the accounts table.
func NewAuthorUnknown(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnprocessableEntity}
}

// NewForbidden means the caller's role does not permit the action.
func NewForbidden(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusForbidden}
}

func NewNotFound(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusNotFound}
}

func NewPayloadTooLarge(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusRequestEntityTooLarge}
}

func NewUnauthorized(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnauthorized}
}

func NewConflict(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusConflict}
}

func statusOf(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

func IsValidation(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}
