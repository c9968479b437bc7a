package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gtl92/gmail-svelkit/internal/logger"
)

// Status is the three-way outcome of a token lookup.
type Status int

const (
	StatusMissing Status = iota
	StatusPending
	StatusReady
)

// pendingMarker tags placeholder documents so Read can tell "still
// generating" apart from a finalized report.
const pendingMarker = "<!-- report:pending -->"

var ErrBadToken = errors.New("malformed report token")

// Store persists one HTML document per report token under a directory.
// Documents start as placeholders and become immutable once finalized.
type Store struct {
	dir    string
	logger *logger.Logger
}

func NewStore(dir string, logger *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) path(token string) string {
	return filepath.Join(s.dir, "report-"+token+".html")
}

// Reserve writes a placeholder document for a fresh token. If anything
// already exists at that token the call is a no-op: a poll racing the
// reservation must never clobber content.
func (s *Store) Reserve(token string) error {
	if !ValidToken(token) {
		return ErrBadToken
	}
	p := s.path(token)
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	if err := os.WriteFile(p, []byte(placeholderHTML()), 0o644); err != nil {
		return fmt.Errorf("failed to write placeholder: %w", err)
	}
	return nil
}

// Finalize overwrites the token's document with the final report. Subsequent
// reads return StatusReady.
func (s *Store) Finalize(token, html string) error {
	if !ValidToken(token) {
		return ErrBadToken
	}
	if err := os.WriteFile(s.path(token), []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to persist report: %w", err)
	}
	s.logger.Info("Finalized report artifact:", token[:8]+"…")
	return nil
}

// Read returns the stored document and its status. Pending means the
// placeholder is still in place and the caller should retry later.
func (s *Store) Read(token string) (string, Status, error) {
	if !ValidToken(token) {
		return "", StatusMissing, ErrBadToken
	}
	data, err := os.ReadFile(s.path(token))
	if err != nil {
		if os.IsNotExist(err) {
			return "", StatusMissing, nil
		}
		return "", StatusMissing, fmt.Errorf("failed to read report: %w", err)
	}
	html := string(data)
	if strings.Contains(html, pendingMarker) {
		return html, StatusPending, nil
	}
	return html, StatusReady, nil
}

// placeholderHTML is served (with a retry-later status) until the pipeline
// finalizes the report. The meta refresh keeps a browser polling on its own.
func placeholderHTML() string {
	return pendingMarker + `
<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>Report in progress…</title>
    <meta http-equiv="refresh" content="2">
    <style>
      body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif; background:#f5f5f5; margin:0; }
      .container { background:#fff; margin:40px auto; padding:32px; max-width:800px; border-radius:12px; box-shadow:0 4px 24px #0002; }
      .muted { color:#666; font-size:14px; }
    </style>
  </head>
  <body>
    <div class="container">
      <h2>&#9203; Generating your report</h2>
      <p>Your report is being prepared. This page reloads automatically&hellip;</p>
      <p class="muted">If this lasts more than 30 seconds, start a new generation from the app.</p>
    </div>
  </body>
</html>`
}

// MissingHTML is the formatted body served for a token with no document.
func MissingHTML() string {
	return `<h3 style="font-family:Arial,sans-serif">No report available for this link</h3>`
}
