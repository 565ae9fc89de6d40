package sms

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const jsonContentType = "text/json"

type jsonEncoding struct{}

func (jsonEncoding) wire() string { return "json" }

type jsonRequest struct {
	Login      string `json:"login"`
	Password   string `json:"password,omitempty"`
	Command    string `json:"command"`
	DateSend   string `json:"date_send,omitempty"`
	Name       string `json:"name,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty"`
	Message    any    `json:"message,omitempty"`
	Status     any    `json:"status,omitempty"`
}

type jsonMsgList[T any] struct {
	Msg []T `json:"msg"`
}

// jsonSendMsg keeps the gateway's "recepient" spelling.
type jsonSendMsg struct {
	Recipient      string            `json:"recepient"`
	ValidityPeriod int               `json:"validity_period"`
	SMSText        string            `json:"sms_text"`
	Sender         string            `json:"sender"`
	TemplateID     *int              `json:"template_id,omitempty"`
	TagsReplace    map[string]string `json:"tags_replace,omitempty"`
}

type jsonStatusMsg struct {
	SMSID int `json:"sms_id"`
}

type jsonHLRStatusMsg struct {
	HLRCode int `json:"hlr_code"`
}

// flexInt accepts numbers, numeric strings and null.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int(v))
		return nil
	}
	*f = flexInt(looseInt(s))
	return nil
}

// flexString accepts strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(b)
	return nil
}

// errorCode maps a present "error" key to a gateway code. A zero or
// non-numeric value still marks the reply as failed.
func errorCode(e flexInt) int {
	if n := int(e); n < 0 {
		return n
	}
	return CodeIntegrity
}

type jsonEnvelope[T any] struct {
	Error   *flexInt        `json:"error"`
	Message *jsonMsgList[T] `json:"message"`
	Status  *jsonMsgList[T] `json:"status"`
}

type jsonSendResult struct {
	SMSID     flexInt    `json:"sms_id"`
	SMSCount  flexInt    `json:"sms_count"`
	ErrorCode flexInt    `json:"error_code"`
	Operator  flexInt    `json:"operator"`
	Recipient flexString `json:"recipient"`
}

type jsonStatusResult struct {
	SMSID     flexInt    `json:"sms_id"`
	SMSCount  flexInt    `json:"sms_count"`
	SMSStatus flexString `json:"sms_status"`
	Operator  flexInt    `json:"operator"`
	Recipient flexString `json:"recipient"`
}

type jsonHLRResult struct {
	HLRCode   flexInt    `json:"hlr_code"`
	ErrorCode flexInt    `json:"error_code"`
	Recipient flexString `json:"recipient"`
}

type jsonHLRStatusResult struct {
	Error               flexInt    `json:"error"`
	HLRID               flexInt    `json:"hlr_id"`
	HLRStatus           flexString `json:"hlr_status"`
	Recipient           flexString `json:"recipient"`
	HLRErrorCode        flexString `json:"hlr_error_code"`
	HLRErrorName        flexString `json:"hlr_error_name"`
	HLRErrorDesc        flexString `json:"hlr_error_desc"`
	HLRErrorPermanent   flexString `json:"hlr_error_permanent"`
	OriginalTPName      flexString `json:"hlr_original_tp_name"`
	OriginalTPPrefix    flexString `json:"hlr_original_tp_prefix"`
	OriginalCountryName flexString `json:"hlr_original_c_name"`
	OriginalCountryCode flexString `json:"hlr_original_c_prefix"`
	Ported              flexString `json:"hlr_ported"`
	PortedTPName        flexString `json:"hlr_ported_tp_name"`
	PortedTPPrefix      flexString `json:"hlr_ported_tp_prefix"`
	PortedCountryName   flexString `json:"hlr_ported_c_name"`
	PortedCountryCode   flexString `json:"hlr_ported_c_prefix"`
}

func (jsonEncoding) envelope(a auth, command string) jsonRequest {
	req := jsonRequest{Login: a.login, Command: command}
	if !a.usesToken() {
		req.Password = a.password
	}
	return req
}

func (e jsonEncoding) encodeSend(a auth, msg *Message) (*request, error) {
	req := e.envelope(a, "sms_send")
	req.Name = a.subscribeName
	req.WebhookURL = a.webhookURL
	if msg.SendAt != nil {
		req.DateSend = msg.SendAt.Format(sendDateLayout)
	}
	req.Message = jsonMsgList[jsonSendMsg]{
		Msg: lo.Map(msg.Recipients, func(recipient string, i int) jsonSendMsg {
			return jsonSendMsg{
				Recipient:      recipient,
				ValidityPeriod: msg.validity(),
				SMSText:        msg.textFor(i),
				Sender:         msg.Sender,
				TemplateID:     msg.templateFor(i),
				TagsReplace:    msg.TagsReplace,
			}
		}),
	}
	return e.request(req)
}

func (jsonEncoding) decodeSend(body []byte, _ *Message) ([]SendRecord, int) {
	var env jsonEnvelope[jsonSendResult]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, CodeIntegrity
	}
	if env.Error != nil {
		return nil, errorCode(*env.Error)
	}
	if env.Message == nil {
		return nil, CodeIntegrity
	}
	return lo.Map(env.Message.Msg, func(m jsonSendResult, _ int) SendRecord {
		rec := SendRecord{
			SMSCode:      int(m.SMSID),
			SMSCount:     int(m.SMSCount),
			OperatorCode: int(m.Operator),
			Phone:        string(m.Recipient),
		}
		if rec.SMSCode == 0 {
			rec.SMSError = true
			rec.SMSErrorCode = int(m.ErrorCode)
			rec.SMSErrorMsg = ErrorText(rec.SMSErrorCode)
		}
		return rec
	}), 0
}

func (e jsonEncoding) encodeStatus(a auth, ids []int) (*request, error) {
	req := e.envelope(a, "statuses")
	req.Status = jsonMsgList[jsonStatusMsg]{
		Msg: lo.Map(ids, func(id int, _ int) jsonStatusMsg { return jsonStatusMsg{SMSID: id} }),
	}
	return e.request(req)
}

func (jsonEncoding) decodeStatus(body []byte, _ []int) ([]StatusRecord, int) {
	var env jsonEnvelope[jsonStatusResult]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, CodeIntegrity
	}
	if env.Error != nil {
		return nil, errorCode(*env.Error)
	}
	if env.Status == nil {
		return nil, CodeIntegrity
	}
	return lo.Map(env.Status.Msg, func(m jsonStatusResult, _ int) StatusRecord {
		return StatusRecord{
			SMSCode:      int(m.SMSID),
			SMSCount:     int(m.SMSCount),
			Status:       string(m.SMSStatus),
			OperatorCode: int(m.Operator),
			Phone:        string(m.Recipient),
		}
	}), 0
}

func (e jsonEncoding) encodeHLR(a auth, phones []string) (*request, error) {
	req := e.envelope(a, "hlr_send")
	req.WebhookURL = a.webhookURL
	req.Message = jsonMsgList[string]{Msg: phones}
	return e.request(req)
}

func (jsonEncoding) decodeHLR(body []byte) ([]HLRRecord, int) {
	var env jsonEnvelope[jsonHLRResult]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, CodeIntegrity
	}
	if env.Error != nil {
		return nil, errorCode(*env.Error)
	}
	if env.Message == nil {
		return nil, CodeIntegrity
	}
	return lo.Map(env.Message.Msg, func(m jsonHLRResult, _ int) HLRRecord {
		rec := HLRRecord{HLRCode: int(m.HLRCode), Phone: string(m.Recipient)}
		if rec.HLRCode == 0 {
			rec.SMSError = true
			rec.SMSErrorCode = int(m.ErrorCode)
			rec.SMSErrorMsg = ErrorText(rec.SMSErrorCode)
		}
		return rec
	}), 0
}

func (e jsonEncoding) encodeHLRStatus(a auth, codes []int) (*request, error) {
	req := e.envelope(a, "hlr_status")
	req.Status = jsonMsgList[jsonHLRStatusMsg]{
		Msg: lo.Map(codes, func(code int, _ int) jsonHLRStatusMsg { return jsonHLRStatusMsg{HLRCode: code} }),
	}
	return e.request(req)
}

func (jsonEncoding) decodeHLRStatus(body []byte) ([]HLRStatusRecord, int) {
	var env jsonEnvelope[jsonHLRStatusResult]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, CodeIntegrity
	}
	if env.Error != nil {
		return nil, errorCode(*env.Error)
	}
	if env.Status == nil {
		return nil, CodeIntegrity
	}
	return lo.Map(env.Status.Msg, func(m jsonHLRStatusResult, _ int) HLRStatusRecord {
		return HLRStatusRecord{
			Error:               int(m.Error),
			HLRID:               int(m.HLRID),
			HLRStatus:           string(m.HLRStatus),
			Recipient:           string(m.Recipient),
			HLRErrorCode:        string(m.HLRErrorCode),
			HLRErrorName:        string(m.HLRErrorName),
			HLRErrorDesc:        string(m.HLRErrorDesc),
			HLRErrorPermanent:   string(m.HLRErrorPermanent),
			OriginalTPName:      string(m.OriginalTPName),
			OriginalTPPrefix:    string(m.OriginalTPPrefix),
			OriginalCountryName: string(m.OriginalCountryName),
			OriginalCountryCode: string(m.OriginalCountryCode),
			Ported:              string(m.Ported),
			PortedTPName:        string(m.PortedTPName),
			PortedTPPrefix:      string(m.PortedTPPrefix),
			PortedCountryName:   string(m.PortedCountryName),
			PortedCountryCode:   string(m.PortedCountryCode),
		}
	}), 0
}

func (e jsonEncoding) encodeCommand(a auth, command string) (*request, error) {
	return e.request(e.envelope(a, command))
}

// decodeRaw is used by the sender and template listings, which are passed
// through untouched unless the gateway reports an error.
func (jsonEncoding) decodeRaw(body []byte) (json.RawMessage, int) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, CodeIntegrity
	}
	if trimmed[0] == '{' {
		var probe struct {
			Error *flexInt `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &probe); err == nil && probe.Error != nil {
			return nil, errorCode(*probe.Error)
		}
	}
	if string(trimmed) == "null" {
		return nil, CodeIntegrity
	}
	return json.RawMessage(trimmed), 0
}

func (jsonEncoding) request(payload jsonRequest) (*request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return &request{
		path:        "api/v1.2/json",
		contentType: jsonContentType,
		body:        bytes.TrimRight(buf.Bytes(), "\n"),
	}, nil
}
