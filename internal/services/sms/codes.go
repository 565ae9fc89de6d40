package sms

import (
	"fmt"
	"strconv"
	"strings"
)

// Gateway error codes. Negative values come from the gateway, -100 and -101
// are produced locally before a request is issued.
const (
	CodeInsufficientFunds     = -1
	CodeBadCredentials        = -2
	CodeNoText                = -3
	CodeBadRecipient          = -4
	CodeBadSender             = -5
	CodeNoLogin               = -6
	CodeNoPassword            = -7
	CodeIntegrity             = -10
	CodeBadMessageID          = -11
	CodeAPIDisabled           = -12
	CodeBlocked               = -13
	CodeTimeWindow            = -14
	CodeBadSendDate           = -15
	CodeNoTemplates           = -16
	CodeNoSenders             = -17
	CodeTemplateNotFound      = -18
	CodeNoCheckHash           = -19
	CodeNoCheckCode           = -20
	CodeTooManyChecks         = -21
	CodeCheckTextTooLong      = -22
	CodeWrongCheckCode        = -23
	CodeBadWebhookURL         = -24
	CodeBadHLRList            = -25
	CodeBadHLRStatusList      = -26
	CodeAccountBlocked        = -27
	CodeTextCountMismatch     = -100
	CodeTemplateCountMismatch = -101
)

var errorTexts = map[int]string{
	CodeInsufficientFunds:     "Insufficient funds",
	CodeBadCredentials:        "Invalid login or password, or another authentication error",
	CodeNoText:                "Message text is missing",
	CodeBadRecipient:          "Invalid recipient number",
	CodeBadSender:             "Invalid message sender",
	CodeNoLogin:               "Login is missing",
	CodeNoPassword:            "Password is missing",
	CodeIntegrity:             "Packet integrity or validity error",
	CodeBadMessageID:          "Invalid message ID",
	CodeAPIDisabled:           "API access is not enabled in the account (SMS campaigns > API campaigns)",
	CodeBlocked:               "Blocked",
	CodeTimeWindow:            "Request is outside the allowed SMS sending time window (see personal settings)",
	CodeBadSendDate:           "Invalid campaign send date",
	CodeNoTemplates:           "No templates",
	CodeNoSenders:             "No senders available for sending SMS",
	CodeTemplateNotFound:      "Template not found by code",
	CodeNoCheckHash:           "Phone verification: check hash was not passed",
	CodeNoCheckCode:           "Phone verification: check code was not passed",
	CodeTooManyChecks:         "Allowed number of checks for this phone number exceeded",
	CodeCheckTextTooLong:      "Phone verification: SMS text does not fit into a single SMS",
	CodeWrongCheckCode:        "The entered code is wrong. Enter the correct code or request another SMS",
	CodeBadWebhookURL:         "Webhook URL failed validation",
	CodeBadHLRList:            "Phone list for HLR lookup is malformed",
	CodeBadHLRStatusList:      "Phone list for HLR status check is malformed",
	CodeAccountBlocked:        "Your account is blocked. Please contact technical support",
	CodeTextCountMismatch:     "Number of recipients does not match the number of SMS texts. Pass either one text or as many texts as recipients",
	CodeTemplateCountMismatch: "Number of recipients does not match the number of SMS templates. Pass either one template or as many templates as recipients",
}

// ErrorText returns the diagnostic text for a gateway error code.
func ErrorText(code int) string {
	if text, ok := errorTexts[code]; ok {
		return text
	}
	return fmt.Sprintf("unknown gateway error %d", code)
}

// ErrorTextString resolves codes the gateway sends as strings ("-2", " -10\n").
func ErrorTextString(code string) string {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return fmt.Sprintf("unknown gateway error %q", code)
	}
	return ErrorText(n)
}

// IsKnownCode reports whether the code belongs to the error table.
func IsKnownCode(code int) bool {
	_, ok := errorTexts[code]
	return ok
}
