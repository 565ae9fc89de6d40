package sms

import "strings"

// Result is the uniform outcome of one gateway call. It is returned by value
// and never shared between calls.
type Result[T any] struct {
	Error         bool     `json:"error"`
	ErrorMessages []string `json:"error_messages"`
	Codes         []int    `json:"codes,omitempty"`
	Result        T        `json:"result"`
	Type          string   `json:"type,omitempty"`

	errType ErrorType
	cause   error
}

func newResult[T any](wire string) Result[T] {
	return Result[T]{ErrorMessages: []string{}, Type: wire}
}

// failCode records a table code.
func (r *Result[T]) failCode(code int) {
	r.Error = true
	r.Codes = append(r.Codes, code)
	r.ErrorMessages = append(r.ErrorMessages, ErrorText(code))
	if r.errType == "" {
		r.errType = errorTypeForCode(code)
	}
}

// failTransport records a transport level failure.
func (r *Result[T]) failTransport(detail string, cause error) {
	r.Error = true
	r.ErrorMessages = append(r.ErrorMessages, transportMessage(detail))
	r.errType = ErrTypeNetwork
	r.cause = cause
}

// Err converts a failed result into an *SMSError; it is nil on success.
func (r Result[T]) Err() error {
	if !r.Error {
		return nil
	}
	e := &SMSError{
		Type:    r.errType,
		Message: strings.Join(r.ErrorMessages, "; "),
		Cause:   r.cause,
	}
	if e.Type == "" {
		e.Type = ErrTypeProvider
	}
	if len(r.Codes) > 0 {
		e.Code = r.Codes[0]
	}
	return e
}

// SendRecord describes the gateway answer for one recipient of a send.
type SendRecord struct {
	SMSCode      int    `json:"sms_code"`
	SMSCount     int    `json:"sms_count"`
	SMSError     bool   `json:"sms_error"`
	SMSErrorCode int    `json:"sms_error_code"`
	SMSErrorMsg  string `json:"sms_error_msg"`
	OperatorCode int    `json:"operator_code"`
	Phone        string `json:"sms_tel"`
}

// StatusRecord is the delivery status of one message.
type StatusRecord struct {
	SMSCode      int    `json:"sms_code"`
	SMSCount     int    `json:"sms_count"`
	Status       string `json:"sms_status"`
	OperatorCode int    `json:"operator_code"`
	Phone        string `json:"sms_tel"`
}

// HLRRecord is the gateway answer for one HLR lookup request.
type HLRRecord struct {
	HLRCode      int    `json:"hlr_code"`
	SMSError     bool   `json:"sms_error"`
	SMSErrorCode int    `json:"sms_error_code"`
	SMSErrorMsg  string `json:"sms_error_msg"`
	Phone        string `json:"sms_tel"`
}

// HLRStatusRecord carries the result of a finished HLR lookup.
type HLRStatusRecord struct {
	Error               int    `json:"error"`
	HLRID               int    `json:"hlr_id"`
	HLRStatus           string `json:"hlr_status"`
	Recipient           string `json:"recipient"`
	HLRErrorCode        string `json:"hlr_error_code"`
	HLRErrorName        string `json:"hlr_error_name"`
	HLRErrorDesc        string `json:"hlr_error_desc"`
	HLRErrorPermanent   string `json:"hlr_error_permanent"`
	OriginalTPName      string `json:"hlr_original_tp_name"`
	OriginalTPPrefix    string `json:"hlr_original_tp_prefix"`
	OriginalCountryName string `json:"hlr_original_c_name"`
	OriginalCountryCode string `json:"hlr_original_c_prefix"`
	Ported              string `json:"hlr_ported"`
	PortedTPName        string `json:"hlr_ported_tp_name"`
	PortedTPPrefix      string `json:"hlr_ported_tp_prefix"`
	PortedCountryName   string `json:"hlr_ported_c_name"`
	PortedCountryCode   string `json:"hlr_ported_c_prefix"`
}
