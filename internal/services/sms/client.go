package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Client talks to the SMS-assistent API. Every operation issues at most one
// HTTP POST and reports its outcome through a Result; nothing is retried.
type Client struct {
	config *Config
	client *http.Client
	logger Logger
	mode   encoding
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// NewClient builds a client from explicit configuration.
func NewClient(config *Config, logger Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, &SMSError{Type: ErrTypeConfig, Message: err.Error()}
	}
	return NewClientWithHTTP(config, &http.Client{Timeout: config.Timeout}, logger), nil
}

// NewClientWithHTTP lets callers supply the transport, e.g. a test server client.
// The configuration is not validated.
func NewClientWithHTTP(config *Config, httpClient *http.Client, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}
	var mode encoding = jsonEncoding{}
	if config.Mode == ModeXML {
		mode = xmlEncoding{}
	}
	return &Client{
		config: config,
		client: httpClient,
		logger: logger,
		mode:   mode,
	}
}

func (c *Client) auth() auth {
	return auth{
		login:         c.config.Login,
		password:      c.config.Password,
		token:         c.config.Token,
		webhookURL:    c.config.WebhookURL,
		subscribeName: strings.TrimSpace(tagPattern.ReplaceAllString(c.config.SubscribeName, "")),
	}
}

// post performs the single HTTP call of an operation. A nil error means a
// 200 response whose body is returned.
func (c *Client) post(ctx context.Context, req *request) ([]byte, *SMSError) {
	url := c.config.endpoint(req.path)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(req.body))
	if err != nil {
		return nil, &SMSError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", req.contentType)
	if c.config.Token != "" {
		httpReq.Header.Set("requestAuthToken", c.config.Token)
	}

	c.logger.Debug("posting to SMS gateway", "url", url, "content_type", req.contentType)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("SMS gateway request failed", "url", url, "error", err)
		return nil, &SMSError{Type: ErrTypeNetwork, Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SMSError{Type: ErrTypeNetwork, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("SMS gateway returned non-200 status", "url", url, "status", resp.StatusCode)
		return nil, &SMSError{Type: ErrTypeNetwork, Code: resp.StatusCode, Message: httpStatusText(resp)}
	}

	c.logger.Debug("SMS gateway response received", "url", url, "bytes", len(body))
	return body, nil
}

func httpStatusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

// call runs one encoded request and hands a 200 body to decode.
func call[T any](c *Client, ctx context.Context, res *Result[T], req *request, encErr error, decode func([]byte) (T, int)) {
	if encErr != nil {
		res.failCode(CodeIntegrity)
		res.cause = encErr
		return
	}
	body, err := c.post(ctx, req)
	if err != nil {
		res.failTransport(err.Message, err.Cause)
		return
	}
	value, code := decode(body)
	if code != 0 {
		c.logger.Warn("SMS gateway reported an error", "code", code, "message", ErrorText(code))
		res.failCode(code)
		return
	}
	res.Result = value
}

// SendSMS sends msg. A single recipient with one text and no template goes
// through the plain endpoint; everything else uses the configured mode.
func (c *Client) SendSMS(ctx context.Context, msg Message) Result[[]SendRecord] {
	enc := c.mode
	if len(msg.Recipients) == 1 && len(msg.Texts) <= 1 && !msg.hasTemplate() {
		enc = plainEncoding{}
	}
	res := newResult[[]SendRecord](enc.wire())

	if len(msg.Recipients) == 0 {
		res.failCode(CodeBadRecipient)
		return res
	}
	if len(msg.Texts) > 0 && len(msg.Texts) != len(msg.Recipients) {
		res.failCode(CodeTextCountMismatch)
	}
	if len(msg.TemplateIDs) > 0 && len(msg.TemplateIDs) != len(msg.Recipients) {
		res.failCode(CodeTemplateCountMismatch)
	}
	if res.Error {
		c.logger.Warn("SMS request rejected locally", "recipients", len(msg.Recipients), "codes", res.Codes)
		return res
	}

	c.logger.Info("sending SMS", "recipients", len(msg.Recipients), "wire", enc.wire())
	req, err := enc.encodeSend(c.auth(), &msg)
	call(c, ctx, &res, req, err, func(body []byte) ([]SendRecord, int) {
		return enc.decodeSend(body, &msg)
	})
	return res
}

// GetSMSStatus queries delivery statuses for message ids.
func (c *Client) GetSMSStatus(ctx context.Context, ids []int) Result[[]StatusRecord] {
	enc := c.mode
	if len(ids) == 1 {
		enc = plainEncoding{}
	}
	res := newResult[[]StatusRecord](enc.wire())
	if len(ids) == 0 {
		res.failCode(CodeBadMessageID)
		return res
	}
	req, err := enc.encodeStatus(c.auth(), ids)
	call(c, ctx, &res, req, err, func(body []byte) ([]StatusRecord, int) {
		return enc.decodeStatus(body, ids)
	})
	return res
}

// SendHLR requests HLR lookups for phones. The gateway offers it over JSON only.
func (c *Client) SendHLR(ctx context.Context, phones []string) Result[[]HLRRecord] {
	enc := jsonEncoding{}
	res := newResult[[]HLRRecord](enc.wire())
	if len(phones) == 0 {
		res.failCode(CodeBadHLRList)
		return res
	}
	req, err := enc.encodeHLR(c.auth(), phones)
	call(c, ctx, &res, req, err, enc.decodeHLR)
	return res
}

// GetHLRStatus fetches results of earlier HLR lookups.
func (c *Client) GetHLRStatus(ctx context.Context, codes []int) Result[[]HLRStatusRecord] {
	enc := jsonEncoding{}
	res := newResult[[]HLRStatusRecord](enc.wire())
	if len(codes) == 0 {
		res.failCode(CodeBadHLRStatusList)
		return res
	}
	req, err := enc.encodeHLRStatus(c.auth(), codes)
	call(c, ctx, &res, req, err, enc.decodeHLRStatus)
	return res
}

// GetBalance returns the account balance exactly as the gateway prints it.
func (c *Client) GetBalance(ctx context.Context) Result[string] {
	enc := plainEncoding{}
	res := newResult[string](enc.wire())
	call(c, ctx, &res, enc.encodeBalance(c.auth()), nil, enc.decodeBalance)
	return res
}

func (c *Client) GetSenders(ctx context.Context) Result[json.RawMessage] {
	return c.listing(ctx, "get_senders")
}

func (c *Client) GetTemplates(ctx context.Context) Result[json.RawMessage] {
	return c.listing(ctx, "get_templates")
}

func (c *Client) listing(ctx context.Context, command string) Result[json.RawMessage] {
	enc := jsonEncoding{}
	res := newResult[json.RawMessage](enc.wire())
	req, err := enc.encodeCommand(c.auth(), command)
	call(c, ctx, &res, req, err, enc.decodeRaw)
	return res
}

// CheckPhone sends a verification code to phone. {KOD} in text is replaced
// by the generated code; without it the code is appended. The result is the
// check hash needed by CheckCode.
func (c *Client) CheckPhone(ctx context.Context, sender, phone, text string) Result[string] {
	enc := plainEncoding{}
	res := newResult[string](enc.wire())
	req := enc.encodeCheckPhone(c.auth(), "sms_code_generate", sender, phone, text)
	call(c, ctx, &res, req, nil, enc.decodeValue)
	return res
}

// CheckCode verifies the code a user typed in; the result is the verified phone.
func (c *Client) CheckCode(ctx context.Context, checkHash, checkCode string) Result[string] {
	enc := plainEncoding{}
	res := newResult[string](enc.wire())
	if strings.TrimSpace(checkHash) == "" {
		res.failCode(CodeNoCheckHash)
	}
	if strings.TrimSpace(checkCode) == "" {
		res.failCode(CodeNoCheckCode)
	}
	if res.Error {
		return res
	}
	call(c, ctx, &res, enc.encodeCheckCode(c.auth(), checkHash, checkCode), nil, enc.decodeValue)
	return res
}

var _ Gateway = (*Client)(nil)
