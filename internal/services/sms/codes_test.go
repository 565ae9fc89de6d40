package sms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{CodeInsufficientFunds, "Insufficient funds"},
		{CodeBadWebhookURL, "Webhook URL failed validation"},
		{CodeIntegrity, "Packet integrity or validity error"},
		{-999, "unknown gateway error -999"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorText(tt.code))
	}
}

func TestErrorTextString(t *testing.T) {
	assert.Equal(t, ErrorText(CodeBadCredentials), ErrorTextString(" -2\n"))
	assert.Equal(t, `unknown gateway error "oops"`, ErrorTextString("oops"))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeXML, ParseMode("XML"))
	assert.Equal(t, ModeJSON, ParseMode("json"))
	assert.Equal(t, ModeJSON, ParseMode("anything"))
}

func TestLooseInt(t *testing.T) {
	assert.Equal(t, 12, looseInt("12abc"))
	assert.Equal(t, -4, looseInt(" -4 "))
	assert.Equal(t, 0, looseInt("Delivered"))
}

func TestConfigEndpoint(t *testing.T) {
	cfg := &Config{BaseURL: "https://example.test"}
	assert.Equal(t, "https://example.test/api/v1.2/json", cfg.endpoint("api/v1.2/json"))
	cfg.BaseURL = ""
	assert.Equal(t, DefaultBaseURL+"api/v1.2/json", cfg.endpoint("/api/v1.2/json"))
}
