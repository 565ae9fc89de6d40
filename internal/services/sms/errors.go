package sms

import (
	"fmt"
	"strings"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeIntegrity  ErrorType = "INTEGRITY"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type SMSError struct {
	Type    ErrorType
	Code    int
	Message string
	Cause   error
}

func (e *SMSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("SMS %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("SMS %s error: %s", e.Type, e.Message)
}

func (e *SMSError) Unwrap() error {
	return e.Cause
}

// transportMessage is the generic text recorded for non-200 responses and
// connection failures.
func transportMessage(detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = "no response"
	}
	return "API request failed: " + detail
}

// errorTypeForCode classifies a table code.
func errorTypeForCode(code int) ErrorType {
	switch code {
	case CodeIntegrity:
		return ErrTypeIntegrity
	case CodeTextCountMismatch, CodeTemplateCountMismatch:
		return ErrTypeValidation
	default:
		return ErrTypeProvider
	}
}
