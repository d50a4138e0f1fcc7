// Package apperr defines the error taxonomy shared by the API handlers, the
// submission services and the outbound HTTP client.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Category classifies where an error came from.
type Category string

const (
	CategoryValidation     Category = "VALIDATION"
	CategoryNetwork        Category = "NETWORK"
	CategoryAuthentication Category = "AUTHENTICATION"
	CategoryAuthorization  Category = "AUTHORIZATION"
	CategoryNotFound       Category = "NOT_FOUND"
	CategoryServer         Category = "SERVER"
	CategoryUnknown        Category = "UNKNOWN"
)

// Severity tells the caller how loudly to report an error.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Error codes carried on the wire.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNetwork        = "NETWORK_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeServer         = "SERVER_ERROR"
	CodeParse          = "PARSE_ERROR"
	CodeUnknown        = "unknown_error"
)

// Error is a classified application error.
type Error struct {
	Category Category
	Severity Severity
	Code     string
	Message  string
	Details  map[string]any
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind returns the lower-case category, used in logs.
func (e *Error) Kind() string {
	switch e.Category {
	case CategoryValidation:
		return "validation"
	case CategoryNetwork:
		return "network"
	case CategoryAuthentication:
		return "authentication"
	case CategoryAuthorization:
		return "authorization"
	case CategoryNotFound:
		return "not_found"
	case CategoryServer:
		return "server"
	default:
		return "unknown"
	}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func newErr(cat Category, sev Severity, code, msg string, err error) *Error {
	return &Error{Category: cat, Severity: sev, Code: code, Message: msg, Err: err}
}

func Validation(msg string, fields map[string]string) *Error {
	e := newErr(CategoryValidation, SeverityInfo, CodeValidation, msg, nil)
	if len(fields) > 0 {
		e.Details = map[string]any{"validationErrors": fields}
	}
	return e
}

func Network(msg string, err error) *Error {
	return newErr(CategoryNetwork, SeverityWarning, CodeNetwork, msg, err)
}

func Authentication(msg string, err error) *Error {
	return newErr(CategoryAuthentication, SeverityWarning, CodeAuthentication, msg, err)
}

func Authorization(msg string, err error) *Error {
	return newErr(CategoryAuthorization, SeverityWarning, CodeAuthorization, msg, err)
}

func NotFound(msg string) *Error {
	return newErr(CategoryNotFound, SeverityInfo, CodeNotFound, msg, nil)
}

func Server(msg string, err error) *Error {
	return newErr(CategoryServer, SeverityError, CodeServer, msg, err)
}

func Unknown(msg string, err error) *Error {
	return newErr(CategoryUnknown, SeverityError, CodeUnknown, msg, err)
}

// FromStatus classifies an HTTP status returned by a remote endpoint.
func FromStatus(status int, msg string) *Error {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return newErr(CategoryValidation, SeverityInfo, CodeValidation, msg, nil)
	case status == http.StatusUnauthorized:
		return Authentication(msg, nil)
	case status == http.StatusForbidden:
		return Authorization(msg, nil)
	case status == http.StatusNotFound:
		return NotFound(msg)
	case status >= 500:
		return Server(msg, nil)
	default:
		return Unknown(msg, nil)
	}
}

// As extracts the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CategoryOf classifies any error.
func CategoryOf(err error) Category {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CategoryNetwork
	}
	if e, ok := As(err); ok {
		return e.Category
	}
	return CategoryUnknown
}

// SeverityOf returns the severity of err, ERROR for unclassified errors.
func SeverityOf(err error) Severity {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok && e.Severity != "" {
		return e.Severity
	}
	return SeverityError
}

// HTTPStatus maps err to the status an API handler should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	switch CategoryOf(err) {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryAuthentication:
		return http.StatusUnauthorized
	case CategoryAuthorization:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
