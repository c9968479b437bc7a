package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

// ErrEntryNotFound is returned by automation lookups for an email that is
// not enrolled, regardless of backend.
var ErrEntryNotFound = errors.New("automation entry not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// JobRepository is the per-owner table of report-generation jobs. Progress
// moves monotonically upward and ends at 100 or the failed sentinel.
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	// Progress returns 0 and no result for an unknown owner or job id;
	// polling an expired job is not an error.
	Progress(ctx context.Context, ownerEmail, jobID string) (int, *model.ReportResult)
	// SetProgress ignores values below the current progress and any update
	// to a terminal job.
	SetProgress(ctx context.Context, ownerEmail, jobID string, progress int) error
	Complete(ctx context.Context, ownerEmail, jobID string, result *model.ReportResult) error
	Fail(ctx context.Context, ownerEmail, jobID string, errMsg string) error
	// EvictFinishedBefore drops terminal jobs that finished before the
	// cutoff and returns how many were removed.
	EvictFinishedBefore(ctx context.Context, cutoff time.Time) int
}

// ReportRepository keeps the most recent finished report per owner.
type ReportRepository interface {
	SaveLast(ctx context.Context, ownerEmail string, result *model.ReportResult) error
	// FindLast returns nil without error when the owner has no report yet.
	FindLast(ctx context.Context, ownerEmail string) (*model.ReportResult, error)
}

// AutomationRepository is the durable registry of users enrolled into
// recurring generation. At most one entry exists per email.
type AutomationRepository interface {
	Upsert(ctx context.Context, entry *model.AutomationEntry) error
	// Remove is idempotent; removing a never-enrolled email succeeds.
	Remove(ctx context.Context, email string) error
	Find(ctx context.Context, email string) (*model.AutomationEntry, error)
	FindAll(ctx context.Context) ([]*model.AutomationEntry, error)
	SetLastRun(ctx context.Context, email string, t time.Time) error
	// PruneInactive removes entries whose lastRun is older than the
	// threshold and returns them. Entries that never ran are kept.
	PruneInactive(ctx context.Context, threshold time.Duration, now time.Time) ([]*model.AutomationEntry, error)
}
