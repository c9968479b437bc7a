package report

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeSubject(t *testing.T) {
	encoded := EncodeSubject("Relatório 📬")
	assert.True(t, strings.HasPrefix(encoded, "=?UTF-8?B?"))
	assert.True(t, strings.HasSuffix(encoded, "?="))

	payload := strings.TrimSuffix(strings.TrimPrefix(encoded, "=?UTF-8?B?"), "?=")
	decoded, err := base64.StdEncoding.DecodeString(payload)
	assert.NoError(t, err)
	assert.Equal(t, "Relatório 📬", string(decoded))
}

func TestBuildRawMessage(t *testing.T) {
	raw := string(BuildRawMessage("friend@example.com", "Hello", "<p>body</p>"))

	assert.Contains(t, raw, "To: friend@example.com\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	assert.Contains(t, raw, "Subject: =?UTF-8?B?")
	assert.True(t, strings.HasSuffix(raw, "\r\n<p>body</p>"))
}

func TestNotificationHTMLLinksReport(t *testing.T) {
	html := NotificationHTML("2026-08-30", "http://localhost:8080/reports/abc")
	assert.Contains(t, html, "http://localhost:8080/reports/abc")
	assert.Contains(t, html, "2026-08-30")
}
