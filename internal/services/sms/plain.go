package sms

import (
	"net/url"
	"strconv"
	"strings"
)

// sendDateLayout is the gateway's date_send format (YYYYMMDDHHMM).
const sendDateLayout = "200601021504"

const formContentType = "application/x-www-form-urlencoded"

// plainEncoding posts URL-encoded fields to the /plain endpoints. It can
// only address a single recipient or a single message id.
type plainEncoding struct{}

func (plainEncoding) wire() string { return "plain" }

func (plainEncoding) form(a auth) url.Values {
	form := url.Values{}
	form.Set("user", a.login)
	if !a.usesToken() {
		form.Set("password", a.password)
	}
	return form
}

func (e plainEncoding) encodeSend(a auth, msg *Message) (*request, error) {
	form := e.form(a)
	form.Set("sender", msg.Sender)
	form.Set("recipient", msg.Recipients[0])
	form.Set("message", msg.textFor(0))
	form.Set("validity_period", strconv.Itoa(msg.validity()))
	if a.webhookURL != "" {
		form.Set("webhook_url", a.webhookURL)
	}
	if a.subscribeName != "" {
		form.Set("name", a.subscribeName)
	}
	if msg.SendAt != nil {
		form.Set("date_send", msg.SendAt.Format(sendDateLayout))
	}
	return formRequest("api/v1.2/send_sms/plain", form), nil
}

func (plainEncoding) decodeSend(body []byte, msg *Message) ([]SendRecord, int) {
	n, ok := gatewayCode(body)
	if !ok {
		return nil, CodeIntegrity
	}
	if n < 0 {
		return nil, n
	}
	return []SendRecord{{SMSCode: n, Phone: msg.Recipients[0]}}, 0
}

func (e plainEncoding) encodeStatus(a auth, ids []int) (*request, error) {
	form := e.form(a)
	form.Set("id", strconv.Itoa(ids[0]))
	return formRequest("api/v1.2/statuses/plain", form), nil
}

// decodeStatus: the body is a status word; any numeric non-zero body is a
// gateway error code.
func (plainEncoding) decodeStatus(body []byte, ids []int) ([]StatusRecord, int) {
	if n, ok := gatewayCode(body); ok && n != 0 {
		return nil, n
	}
	return []StatusRecord{{SMSCode: ids[0], Status: cleanBody(body)}}, 0
}

func (e plainEncoding) encodeBalance(a auth) *request {
	return formRequest("api/v1.2/credits/plain", e.form(a))
}

func (plainEncoding) decodeBalance(body []byte) (string, int) {
	if n := looseInt(cleanBody(body)); n < 0 {
		return "", n
	}
	return cleanBody(body), 0
}

func (e plainEncoding) encodeCheckPhone(a auth, command, sender, phone, text string) *request {
	form := e.form(a)
	form.Set("sender", sender)
	form.Set("recipient", phone)
	form.Set("message", text)
	return formRequest("api/v1.2/"+command+"/plain", form)
}

func (e plainEncoding) encodeCheckCode(a auth, checkHash, checkCode string) *request {
	form := e.form(a)
	form.Set("check_hash", checkHash)
	form.Set("check_code", checkCode)
	return formRequest("api/v1.2/sms_code_check/plain", form)
}

// decodeValue is shared by the verification calls: a body starting with a
// negative number is an error, anything else is the value itself.
func (plainEncoding) decodeValue(body []byte) (string, int) {
	if n := looseInt(cleanBody(body)); n < 0 {
		return "", n
	}
	return cleanBody(body), 0
}

func formRequest(path string, form url.Values) *request {
	return &request{
		path:        path,
		contentType: formContentType,
		body:        []byte(form.Encode()),
	}
}

// cleanBody trims whitespace and a pair of surrounding quotes.
func cleanBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// gatewayCode reports whether the body is a bare integer.
func gatewayCode(body []byte) (int, bool) {
	n, err := strconv.Atoi(cleanBody(body))
	if err != nil {
		return 0, false
	}
	return n, true
}

// looseInt reads the leading integer of s and yields 0 when there is none.
func looseInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
