package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/repository"
)

func newTestRepo(t *testing.T) *AutomationRepository {
	return NewAutomationRepository(filepath.Join(t.TempDir(), "automated-users.json"))
}

func testEntry(email string, frequencyMinutes int) *model.AutomationEntry {
	return &model.AutomationEntry{
		Email:            email,
		Tokens:           &model.CredentialBundle{AccessToken: "access", RefreshToken: "refresh"},
		FrequencyMinutes: frequencyMinutes,
	}
}

func TestAutomationRepositoryUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Upsert(ctx, testEntry("test@example.com", 60)))

	entry, err := repo.Find(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 60, entry.FrequencyMinutes)
	assert.Nil(t, entry.LastRun)

	// Enabling again replaces the entry instead of duplicating it
	assert.NoError(t, repo.Upsert(ctx, testEntry("test@example.com", 120)))
	entries, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 120, entries[0].FrequencyMinutes)
}

func TestAutomationRepositoryRemoveIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Removing an email that was never enrolled succeeds
	assert.NoError(t, repo.Remove(ctx, "nobody@example.com"))

	assert.NoError(t, repo.Upsert(ctx, testEntry("test@example.com", 60)))
	assert.NoError(t, repo.Remove(ctx, "test@example.com"))
	assert.NoError(t, repo.Remove(ctx, "test@example.com"))

	_, err := repo.Find(ctx, "test@example.com")
	assert.ErrorIs(t, err, repository.ErrEntryNotFound)
}

func TestAutomationRepositorySetLastRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.SetLastRun(ctx, "nobody@example.com", time.Now()), repository.ErrEntryNotFound)

	assert.NoError(t, repo.Upsert(ctx, testEntry("test@example.com", 60)))
	ran := time.Now().Truncate(time.Second)
	assert.NoError(t, repo.SetLastRun(ctx, "test@example.com", ran))

	entry, err := repo.Find(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, entry.LastRun)
	assert.True(t, entry.LastRun.Equal(ran))
}

func TestAutomationRepositoryPruneInactive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	stale := testEntry("stale@example.com", 60)
	old := now.Add(-31 * 24 * time.Hour)
	stale.LastRun = &old

	fresh := testEntry("fresh@example.com", 60)
	recent := now.Add(-time.Hour)
	fresh.LastRun = &recent

	// Never ran, stays regardless of how long ago it was enrolled
	pending := testEntry("pending@example.com", 60)

	assert.NoError(t, repo.Upsert(ctx, stale))
	assert.NoError(t, repo.Upsert(ctx, fresh))
	assert.NoError(t, repo.Upsert(ctx, pending))

	removed, err := repo.PruneInactive(ctx, 30*24*time.Hour, now)
	assert.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.Equal(t, "stale@example.com", removed[0].Email)

	entries, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAutomationRepositoryPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automated-users.json")
	ctx := context.Background()

	first := NewAutomationRepository(path)
	assert.NoError(t, first.Upsert(ctx, testEntry("test@example.com", 60)))

	// A fresh instance sees what the previous one wrote
	second := NewAutomationRepository(path)
	entry, err := second.Find(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "access", entry.Tokens.AccessToken)

	// The file itself is valid JSON with the expected shape
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"frequencyMinutes": 60`)
	assert.Contains(t, string(data), `"lastRun": null`)
}
