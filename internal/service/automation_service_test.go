package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gtl92/gmail-svelkit/internal/artifact"
	"github.com/gtl92/gmail-svelkit/internal/gmail"
	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/report"
	"github.com/gtl92/gmail-svelkit/internal/repository"
	"github.com/gtl92/gmail-svelkit/internal/repository/file"
	"github.com/gtl92/gmail-svelkit/internal/repository/memory"
	"github.com/gtl92/gmail-svelkit/internal/service"
)

type automationFixture struct {
	svc      service.AutomationService
	registry repository.AutomationRepository
	src      *gmail.MockMailSource
	auditLog string
}

func newAutomationFixture(t *testing.T) *automationFixture {
	appLogger := logger.New()
	dir := t.TempDir()

	store, err := artifact.NewStore(filepath.Join(dir, "reports"), appLogger)
	assert.NoError(t, err)

	src := gmail.NewMockMailSource()
	reportSvc := service.NewReportService(
		&gmail.MockMailSourceFactory{Source: src},
		memory.NewInMemoryJobRepository(),
		memory.NewInMemoryReportRepository(),
		store,
		report.NewHTMLRenderer(),
		testBaseURL,
		appLogger,
	)

	registry := file.NewAutomationRepository(filepath.Join(dir, "automated-users.json"))
	auditLog := filepath.Join(dir, "logs", "archived-users.log")

	return &automationFixture{
		svc:      service.NewAutomationService(registry, reportSvc, auditLog, appLogger),
		registry: registry,
		src:      src,
		auditLog: auditLog,
	}
}

func TestAutomationServiceEnableDisable(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Enable(ctx, "test@example.com", nil, 60), service.ErrNotAuthenticated)
	assert.ErrorIs(t, f.svc.Enable(ctx, "test@example.com", testCreds(), 0), service.ErrValidation)
	assert.ErrorIs(t, f.svc.Enable(ctx, "test@example.com", testCreds(), -5), service.ErrValidation)

	assert.NoError(t, f.svc.Enable(ctx, "test@example.com", testCreds(), 90))
	entry, err := f.registry.Find(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 90, entry.FrequencyMinutes)

	assert.NoError(t, f.svc.Disable(ctx, "test@example.com"))
	_, err = f.registry.Find(ctx, "test@example.com")
	assert.ErrorIs(t, err, repository.ErrEntryNotFound)

	// Disabling twice is fine
	assert.NoError(t, f.svc.Disable(ctx, "test@example.com"))
}

func TestAutomationServiceStatus(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()

	status, err := f.svc.Status(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.False(t, status.Active)

	cases := []struct {
		minutes  int
		expected service.AutomationStatus
	}{
		{1440, service.AutomationStatus{Active: true, Frequency: "daily"}},
		{2880, service.AutomationStatus{Active: true, Frequency: "daily"}},
		{120, service.AutomationStatus{Active: true, Frequency: "xhours", XHours: 2}},
		{45, service.AutomationStatus{Active: true, Frequency: "xminutes", XMinutes: 45}},
	}
	for _, tc := range cases {
		assert.NoError(t, f.svc.Enable(ctx, "test@example.com", testCreds(), tc.minutes))
		status, err := f.svc.Status(ctx, "test@example.com")
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, *status)
	}
}

func TestAutomationServiceRunNowAutoEnrolls(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()

	result, err := f.svc.RunNow(ctx, "test@example.com", testCreds())
	assert.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Empty(t, result.Error)
	assert.True(t, artifact.ValidToken(result.Token))

	entry, err := f.registry.Find(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 60, entry.FrequencyMinutes)
	assert.NotNil(t, entry.LastRun)
}

func TestAutomationServiceRunSweep(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()
	now := time.Now()

	// Due: enrolled an hour ago at a 60-minute cadence
	due := &model.AutomationEntry{Email: "due@example.com", Tokens: testCreds(), FrequencyMinutes: 60}
	ranHourAgo := now.Add(-time.Hour)
	due.LastRun = &ranHourAgo

	// Not due: ran five minutes ago
	idle := &model.AutomationEntry{Email: "idle@example.com", Tokens: testCreds(), FrequencyMinutes: 60}
	ranRecently := now.Add(-5 * time.Minute)
	idle.LastRun = &ranRecently

	// Dormant: last success 31 days back, gets archived before the run
	dormant := &model.AutomationEntry{Email: "dormant@example.com", Tokens: testCreds(), FrequencyMinutes: 60}
	ranLongAgo := now.Add(-31 * 24 * time.Hour)
	dormant.LastRun = &ranLongAgo

	assert.NoError(t, f.registry.Upsert(ctx, due))
	assert.NoError(t, f.registry.Upsert(ctx, idle))
	assert.NoError(t, f.registry.Upsert(ctx, dormant))

	results, err := f.svc.RunSweep(ctx, now)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	byEmail := make(map[string]*service.SweepResult)
	for _, r := range results {
		byEmail[r.Email] = r
	}
	assert.True(t, byEmail["due@example.com"].Sent)
	assert.True(t, byEmail["idle@example.com"].Skipped)
	assert.NotContains(t, byEmail, "dormant@example.com")

	// The due user's lastRun advanced
	entry, err := f.registry.Find(ctx, "due@example.com")
	assert.NoError(t, err)
	assert.True(t, entry.LastRun.After(ranHourAgo))

	// The archived user landed in the audit log
	data, err := os.ReadFile(f.auditLog)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "dormant@example.com")
	assert.Contains(t, string(data), "lastRun:")
}

func TestAutomationServiceSweepIsolatesFailures(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()
	now := time.Now()

	// This entry has no usable credentials, its run must fail
	broken := &model.AutomationEntry{Email: "broken@example.com", FrequencyMinutes: 60}
	healthy := &model.AutomationEntry{Email: "healthy@example.com", Tokens: testCreds(), FrequencyMinutes: 60}
	assert.NoError(t, f.registry.Upsert(ctx, broken))
	assert.NoError(t, f.registry.Upsert(ctx, healthy))

	results, err := f.svc.RunSweep(ctx, now)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	byEmail := make(map[string]*service.SweepResult)
	for _, r := range results {
		byEmail[r.Email] = r
	}
	assert.NotEmpty(t, byEmail["broken@example.com"].Error)
	assert.False(t, byEmail["broken@example.com"].Sent)
	assert.True(t, byEmail["healthy@example.com"].Sent)

	// The failed entry keeps its lastRun untouched so it retries next tick
	entry, err := f.registry.Find(ctx, "broken@example.com")
	assert.NoError(t, err)
	assert.Nil(t, entry.LastRun)
}
