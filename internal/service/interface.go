package service

import (
	"context"
	"errors"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

// ErrNotAuthenticated marks a missing, expired or revoked credential bundle.
// Handlers surface it as a re-auth prompt instead of a generic failure.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrValidation marks a request rejected at the interface boundary, before
// any pipeline or storage access.
var ErrValidation = errors.New("validation failed")

// FilterOptions narrows which messages a report covers.
type FilterOptions struct {
	Date         string `json:"date"`
	OnlyUnread   bool   `json:"onlyUnread"`
	GroupByLabel bool   `json:"groupByLabel"`
}

// GenerationHandle is returned synchronously by StartGeneration while the
// pipeline keeps running in the background.
type GenerationHandle struct {
	JobID     string `json:"jobId"`
	Token     string `json:"token"`
	ReportURL string `json:"reportUrl"`
}

type AuthService interface {
	GetOrCreateUser(ctx context.Context, googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

type ReportService interface {
	// StartGeneration registers a job and a placeholder artifact and
	// returns immediately; it never calls the Mail Source synchronously.
	StartGeneration(ctx context.Context, ownerEmail string, creds *model.CredentialBundle, opts FilterOptions) (*GenerationHandle, error)
	// Generate runs the same pipeline synchronously (scheduler path) and
	// dispatches the notification mail on success.
	Generate(ctx context.Context, ownerEmail string, creds *model.CredentialBundle, opts FilterOptions) (*model.ReportResult, error)
	Progress(ctx context.Context, ownerEmail, jobID string) (int, *model.ReportResult)
	LastReport(ctx context.Context, ownerEmail string) (*model.ReportResult, error)
	SendReport(ctx context.Context, ownerEmail string, creds *model.CredentialBundle, to, subject string) (string, error)
	CountMessages(ctx context.Context, creds *model.CredentialBundle, date string, onlyUnread bool) (int64, error)
}

// SweepResult records the outcome for one registry entry during a scheduler
// pass.
type SweepResult struct {
	Email   string `json:"email"`
	Due     bool   `json:"due"`
	Skipped bool   `json:"skipped,omitempty"`
	Sent    bool   `json:"sent,omitempty"`
	Count   int    `json:"count,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

type AutomationStatus struct {
	Active    bool   `json:"active"`
	Frequency string `json:"frequency,omitempty"`
	XHours    int    `json:"xhours,omitempty"`
	XMinutes  int    `json:"xminutes,omitempty"`
}

type AutomationService interface {
	Enable(ctx context.Context, email string, creds *model.CredentialBundle, frequencyMinutes int) error
	Disable(ctx context.Context, email string) error
	Status(ctx context.Context, email string) (*AutomationStatus, error)
	// RunNow enrolls the user if needed (default cadence) and runs their
	// pipeline immediately.
	RunNow(ctx context.Context, email string, creds *model.CredentialBundle) (*SweepResult, error)
	// RunSweep prunes dormant entries, then runs every due user once.
	// Per-user failures are isolated and reported in the results.
	RunSweep(ctx context.Context, now time.Time) ([]*SweepResult, error)
}

// MailSource is the normalized Gmail boundary. Implementations must map
// credential problems to ErrNotAuthenticated.
type MailSource interface {
	ListMessages(ctx context.Context, query string, maxResults int64) ([]string, error)
	GetMessage(ctx context.Context, id string) (*model.MessageSummary, error)
	EstimateCount(ctx context.Context, query string) (int64, error)
	SendMessage(ctx context.Context, raw []byte) error
	Profile(ctx context.Context) (string, error)
}

// MailSourceFactory builds a MailSource bound to one user's credentials.
type MailSourceFactory interface {
	ForCredentials(ctx context.Context, creds *model.CredentialBundle) (MailSource, error)
}
