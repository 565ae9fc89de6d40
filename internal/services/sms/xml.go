package sms

import (
	"bytes"
	"encoding/xml"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const xmlContentType = "text/xml"

type xmlEncoding struct{}

func (xmlEncoding) wire() string { return "xml" }

type xmlPackage struct {
	XMLName    xml.Name        `xml:"package"`
	Login      string          `xml:"login,attr"`
	Password   string          `xml:"password,attr,omitempty"`
	DateSend   string          `xml:"date_send,attr,omitempty"`
	Name       string          `xml:"name,attr,omitempty"`
	WebhookURL string          `xml:"webhook_url,attr,omitempty"`
	Message    *xmlMessageList `xml:"message,omitempty"`
	Status     *xmlStatusList  `xml:"status,omitempty"`
}

type xmlMessageList struct {
	Msgs []xmlMsg `xml:"msg"`
}

type xmlMsg struct {
	Recipient      string `xml:"recipient,attr"`
	Sender         string `xml:"sender,attr"`
	ValidityPeriod int    `xml:"validity_period,attr"`
	TemplateID     string `xml:"template_id,attr,omitempty"`
	TagsReplace    string `xml:"tags_replace,attr,omitempty"`
	Text           string `xml:",chardata"`
}

type xmlStatusList struct {
	Msgs []xmlStatusMsg `xml:"msg"`
}

type xmlStatusMsg struct {
	SMSID int `xml:"sms_id,attr"`
}

// xmlResponse accepts both the send and the status answers.
type xmlResponse struct {
	Error   *string        `xml:"error"`
	Message *xmlResultList `xml:"message"`
	Status  *xmlResultList `xml:"status"`
}

type xmlResultList struct {
	Msgs []xmlResultMsg `xml:"msg"`
}

type xmlResultMsg struct {
	SMSID     string `xml:"sms_id,attr"`
	SMSCount  string `xml:"sms_count,attr"`
	Operator  string `xml:"operator,attr"`
	Recipient string `xml:"recipient,attr"`
	Value     string `xml:",chardata"`
}

func (xmlEncoding) envelope(a auth) xmlPackage {
	pkg := xmlPackage{Login: a.login}
	if !a.usesToken() {
		pkg.Password = a.password
	}
	return pkg
}

func (e xmlEncoding) encodeSend(a auth, msg *Message) (*request, error) {
	pkg := e.envelope(a)
	pkg.Name = a.subscribeName
	pkg.WebhookURL = a.webhookURL
	if msg.SendAt != nil {
		pkg.DateSend = msg.SendAt.Format(sendDateLayout)
	}

	tags := encodeTagsReplace(msg.TagsReplace)
	list := &xmlMessageList{Msgs: make([]xmlMsg, 0, len(msg.Recipients))}
	for i, recipient := range msg.Recipients {
		m := xmlMsg{
			Recipient:      recipient,
			Sender:         msg.Sender,
			ValidityPeriod: msg.validity(),
			TagsReplace:    tags,
			Text:           msg.textFor(i),
		}
		if id := msg.templateFor(i); id != nil {
			m.TemplateID = strconv.Itoa(*id)
		}
		list.Msgs = append(list.Msgs, m)
	}
	pkg.Message = list

	return e.request(pkg)
}

func (xmlEncoding) decodeSend(body []byte, _ *Message) ([]SendRecord, int) {
	resp, ok := decodeXML(body)
	if !ok {
		return nil, CodeIntegrity
	}
	if resp.Error != nil {
		return nil, looseInt(*resp.Error)
	}
	if resp.Message == nil {
		return nil, CodeIntegrity
	}
	records := lo.Map(resp.Message.Msgs, func(m xmlResultMsg, _ int) SendRecord {
		rec := SendRecord{
			SMSCode:      looseInt(m.SMSID),
			SMSCount:     looseInt(m.SMSCount),
			OperatorCode: looseInt(m.Operator),
			Phone:        m.Recipient,
		}
		if rec.SMSCode == 0 {
			rec.SMSError = true
			rec.SMSErrorCode = looseInt(m.Value)
			rec.SMSErrorMsg = ErrorText(rec.SMSErrorCode)
		}
		return rec
	})
	return records, 0
}

func (e xmlEncoding) encodeStatus(a auth, ids []int) (*request, error) {
	pkg := e.envelope(a)
	pkg.Status = &xmlStatusList{
		Msgs: lo.Map(ids, func(id int, _ int) xmlStatusMsg { return xmlStatusMsg{SMSID: id} }),
	}
	return e.request(pkg)
}

func (xmlEncoding) decodeStatus(body []byte, _ []int) ([]StatusRecord, int) {
	resp, ok := decodeXML(body)
	if !ok {
		return nil, CodeIntegrity
	}
	if resp.Error != nil {
		return nil, looseInt(*resp.Error)
	}
	if resp.Status == nil {
		return nil, CodeIntegrity
	}
	records := lo.Map(resp.Status.Msgs, func(m xmlResultMsg, _ int) StatusRecord {
		return StatusRecord{
			SMSCode:      looseInt(m.SMSID),
			SMSCount:     looseInt(m.SMSCount),
			Status:       strings.TrimSpace(m.Value),
			OperatorCode: looseInt(m.Operator),
			Phone:        m.Recipient,
		}
	})
	return records, 0
}

func (xmlEncoding) request(pkg xmlPackage) (*request, error) {
	out, err := xml.Marshal(pkg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(out)
	return &request{path: "api/v1.2/xml", contentType: xmlContentType, body: buf.Bytes()}, nil
}

func decodeXML(body []byte) (*xmlResponse, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, false
	}
	var resp xmlResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// encodeTagsReplace renders tags as "key::value;;key::value" with keys sorted
// so the envelope is deterministic.
func encodeTagsReplace(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := lo.Keys(tags)
	slices.Sort(keys)
	return strings.Join(lo.Map(keys, func(k string, _ int) string {
		return k + "::" + tags[k]
	}), ";;")
}
