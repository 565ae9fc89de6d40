package sms

import (
	"context"
	"encoding/json"
	"time"
)

// Message describes one outbound send. Texts and TemplateIDs, when set,
// carry one value per recipient and override Text/TemplateID.
type Message struct {
	Sender         string
	Recipients     []string
	Text           string
	Texts          []string
	ValidityPeriod int
	SendAt         *time.Time
	TemplateID     *int
	TemplateIDs    []int
	TagsReplace    map[string]string
}

func (m *Message) textFor(i int) string {
	if len(m.Texts) > 0 {
		return m.Texts[i]
	}
	return m.Text
}

func (m *Message) templateFor(i int) *int {
	if len(m.TemplateIDs) > 0 {
		id := m.TemplateIDs[i]
		return &id
	}
	return m.TemplateID
}

func (m *Message) hasTemplate() bool {
	return m.TemplateID != nil || len(m.TemplateIDs) > 0
}

func (m *Message) validity() int {
	if m.ValidityPeriod <= 0 {
		return DefaultValidityPeriod
	}
	return m.ValidityPeriod
}

// Provider is the part of the client the notification workflows depend on.
type Provider interface {
	SendSMS(ctx context.Context, msg Message) Result[[]SendRecord]
	GetSMSStatus(ctx context.Context, ids []int) Result[[]StatusRecord]
}

// Gateway is the full operation set of the SMS-assistent API.
type Gateway interface {
	Provider
	SendHLR(ctx context.Context, phones []string) Result[[]HLRRecord]
	GetHLRStatus(ctx context.Context, codes []int) Result[[]HLRStatusRecord]
	GetBalance(ctx context.Context) Result[string]
	GetSenders(ctx context.Context) Result[json.RawMessage]
	GetTemplates(ctx context.Context) Result[json.RawMessage]
	CheckPhone(ctx context.Context, sender, phone, text string) Result[string]
	CheckCode(ctx context.Context, checkHash, checkCode string) Result[string]
}

// Logger interface for gateway operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// request is an encoded call ready to be posted.
type request struct {
	path        string
	contentType string
	body        []byte
}

// encoding is one of the three wire formats. Send and status are the only
// operations whose format follows the configured mode.
type encoding interface {
	wire() string
	encodeSend(a auth, msg *Message) (*request, error)
	decodeSend(body []byte, msg *Message) ([]SendRecord, int)
	encodeStatus(a auth, ids []int) (*request, error)
	decodeStatus(body []byte, ids []int) ([]StatusRecord, int)
}

// auth is the credential view handed to encoders. Password is empty when a
// token is in use.
type auth struct {
	login         string
	password      string
	token         string
	webhookURL    string
	subscribeName string
}

func (a auth) usesToken() bool {
	return a.token != ""
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}
