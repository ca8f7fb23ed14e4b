package setto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrInvalidConfig is returned by Resolve and NewClient for unusable configuration
	ErrInvalidConfig = errors.New("setto: invalid configuration")
	// ErrInvalidArgument marks a request rejected before any network call
	ErrInvalidArgument = errors.New("setto: invalid argument")
)

// Kind classifies an error returned by the Client.
type Kind int

const (
	KindUnknown Kind = iota
	KindSystem
	KindPayment
	KindValidation
	KindHTTP
	KindNetwork
	// KindPrecondition is a caller mistake detected locally (bad config or argument).
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindPayment:
		return "payment"
	case KindValidation:
		return "validation"
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindPrecondition:
		return "precondition"
	}
	return "unknown"
}

// SystemError is a platform-internal failure.
type SystemError struct {
	Code       SystemCode
	HTTPStatus int
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("setto: system error: %s (HTTP %d)", e.Code, e.HTTPStatus)
}

// PaymentError is a payment-domain failure such as an unknown merchant or a
// rejected one-time token.
type PaymentError struct {
	Code       PaymentCode
	HTTPStatus int
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("setto: payment error: %s (HTTP %d)", e.Code, e.HTTPStatus)
}

// ValidationError means the platform rejected the request schema or content.
// Message is the human readable text sent by the platform.
type ValidationError struct {
	Code       ValidationCode
	Message    string
	HTTPStatus int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("setto: validation error: %s (HTTP %d)", e.Message, e.HTTPStatus)
}

// HTTPError is a non-2xx response that did not carry a recognizable error body.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("setto: HTTP %d", e.Status)
}

// NetworkError is a transport failure before a complete response was read,
// including per-call timeouts.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("setto: network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call ran out of time.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// ArgumentError reports a request field that failed a local precondition.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("setto: invalid argument %s: %s", e.Field, e.Reason)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(field, reason string) error {
	return &ArgumentError{Field: field, Reason: reason}
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// KindOf returns the classification of err, looking through wrapping.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		sysErr  *SystemError
		payErr  *PaymentError
		valErr  *ValidationError
		httpErr *HTTPError
		netErr  *NetworkError
	)
	switch {
	case errors.As(err, &sysErr):
		return KindSystem
	case errors.As(err, &payErr):
		return KindPayment
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidConfig):
		return KindPrecondition
	}
	return KindUnknown
}

// IsRetryable reports whether repeating the same call unchanged may succeed.
// The Client never retries on its own.
func IsRetryable(err error) bool {
	var sysErr *SystemError
	if errors.As(err, &sysErr) {
		return sysErr.Code == SystemRPCFailed || sysErr.Code == SystemRateLimited
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// CodeOf returns the platform error code carried by err, or "" if none.
func CodeOf(err error) string {
	var (
		sysErr *SystemError
		payErr *PaymentError
		valErr *ValidationError
	)
	switch {
	case errors.As(err, &sysErr):
		return string(sysErr.Code)
	case errors.As(err, &payErr):
		return string(payErr.Code)
	case errors.As(err, &valErr):
		return string(valErr.Code)
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0 if no response was read.
func StatusOf(err error) int {
	var (
		sysErr  *SystemError
		payErr  *PaymentError
		valErr  *ValidationError
		httpErr *HTTPError
	)
	switch {
	case errors.As(err, &sysErr):
		return sysErr.HTTPStatus
	case errors.As(err, &payErr):
		return payErr.HTTPStatus
	case errors.As(err, &valErr):
		return valErr.HTTPStatus
	case errors.As(err, &httpErr):
		return httpErr.Status
	}
	return 0
}

// errorBody is the union of the error shapes the platform emits. Gateway
// responses use the three *_error fields; plain handlers use code + message.
type errorBody struct {
	SystemError     string          `json:"system_error,omitempty"`
	PaymentError    string          `json:"payment_error,omitempty"`
	ValidationError string          `json:"validation_error,omitempty"`
	Code            json.RawMessage `json:"code,omitempty"`
	Message         string          `json:"message,omitempty"`
}

// structuredError extracts a classified error from body. It returns nil when the
// body carries no error code other than the *_OK values.
func structuredError(status int, body []byte) error {
	if len(body) == 0 {
		return nil
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil
	}

	if eb.SystemError != "" && SystemCode(eb.SystemError) != SystemOK {
		return &SystemError{Code: SystemCode(eb.SystemError), HTTPStatus: status}
	}
	if eb.PaymentError != "" && PaymentCode(eb.PaymentError) != PaymentOK {
		return &PaymentError{Code: PaymentCode(eb.PaymentError), HTTPStatus: status}
	}
	if eb.ValidationError != "" && ValidationCode(eb.ValidationError) != ValidationOK {
		return newValidationError(ValidationCode(eb.ValidationError), eb.Message, status)
	}

	// Numeric gRPC status codes fail to decode here and fall through.
	var code string
	if len(eb.Code) == 0 || json.Unmarshal(eb.Code, &code) != nil {
		return nil
	}

	switch {
	case strings.HasPrefix(code, systemPrefix) && SystemCode(code) != SystemOK:
		return &SystemError{Code: SystemCode(code), HTTPStatus: status}
	case strings.HasPrefix(code, paymentPrefix) && PaymentCode(code) != PaymentOK:
		return &PaymentError{Code: PaymentCode(code), HTTPStatus: status}
	case strings.HasPrefix(code, validationPrefix) && ValidationCode(code) != ValidationOK:
		return newValidationError(ValidationCode(code), eb.Message, status)
	}
	return nil
}

func newValidationError(code ValidationCode, message string, status int) *ValidationError {
	if message == "" {
		message = string(code)
	}
	return &ValidationError{Code: code, Message: message, HTTPStatus: status}
}

// classifyResponse maps a non-2xx response to exactly one error variant.
func classifyResponse(status int, body []byte) error {
	if err := structuredError(status, body); err != nil {
		return err
	}
	return &HTTPError{Status: status, Body: string(body)}
}
