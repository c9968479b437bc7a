package report

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// NotificationHTML is the body of the mail sent to a user when a fresh
// report is ready. The CTA points at the public artifact URL so the mail
// keeps working after the session that produced it expires.
func NotificationHTML(date, reportURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background: #f5f5f5; padding: 24px;">
    <div style="background: white; border-radius: 12px; padding: 32px; max-width: 560px; margin: 0 auto; box-shadow: 0 4px 24px #0002;">
      <h2 style="color: #1976d2; margin-top: 0;">Your Gmail report is ready</h2>
      <p>The summary of your inbox for <b>%s</b> has been generated.</p>
      <p style="margin: 28px 0;">
        <a href="%s" target="_blank"
           style="background: #1976d2; color: #fff; padding: 12px 28px; border-radius: 8px; text-decoration: none; font-weight: bold;">
          Open report
        </a>
      </p>
      <p style="color: #888; font-size: 0.9em;">If the button does not work, copy this link into your browser:<br>%s</p>
    </div>
  </body>
</html>`, date, reportURL, reportURL)
}

// EncodeSubject wraps a subject line in RFC 2047 encoded-word form so
// non-ASCII subjects survive the wire.
func EncodeSubject(subject string) string {
	return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
}

// BuildRawMessage assembles a minimal single-part MIME message. The Mail
// Source takes care of the base64url wire encoding.
func BuildRawMessage(to, subject, htmlBody string) []byte {
	var msg strings.Builder
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Subject: " + EncodeSubject(subject) + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return []byte(msg.String())
}
