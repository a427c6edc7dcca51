package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendTrackingPixel(t *testing.T) {
	body := "<p>您好</p>"
	result := AppendTrackingPixel(body, "http://localhost:5001", "abc123")

	assert.True(t, strings.HasPrefix(result, body))
	assert.Contains(t, result, `src="http://localhost:5001/api/campaigns/abc123/open"`)
	assert.Contains(t, result, `width="1" height="1"`)
	assert.Contains(t, result, `style="display:none"`)
}

func TestLogMailerNeverFails(t *testing.T) {
	m := LogMailer{}
	assert.NoError(t, m.Send("a@b.com", "主题", "<p>正文</p>"))
}

func TestNewSMTPMailer(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", 587, "user", "pass", "crm@example.com")
	assert.NotNil(t, m)
	assert.Equal(t, "crm@example.com", m.from)
}
