package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

func TestJobRepositoryProgressLifecycle(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := model.NewJob("test@example.com")
	assert.NoError(t, repo.Create(ctx, job))

	progress, result := repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, 0, progress)
	assert.Nil(t, result)

	assert.NoError(t, repo.SetProgress(ctx, "test@example.com", job.ID, 30))
	progress, _ = repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, 30, progress)

	// Progress never moves backwards
	assert.NoError(t, repo.SetProgress(ctx, "test@example.com", job.ID, 10))
	progress, _ = repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, 30, progress)

	assert.NoError(t, repo.Complete(ctx, "test@example.com", job.ID, &model.ReportResult{Token: "abc", Count: 5}))
	progress, result = repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, 100, progress)
	assert.NotNil(t, result)
	assert.Equal(t, 5, result.Count)

	// Terminal jobs are frozen
	assert.NoError(t, repo.SetProgress(ctx, "test@example.com", job.ID, 50))
	progress, _ = repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, 100, progress)
}

func TestJobRepositoryUnknownJob(t *testing.T) {
	repo := NewInMemoryJobRepository()

	// Unknown owner and unknown job both degrade to zero progress
	progress, result := repo.Progress(context.Background(), "nobody@example.com", "missing")
	assert.Equal(t, 0, progress)
	assert.Nil(t, result)
}

func TestJobRepositoryFail(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := model.NewJob("test@example.com")
	assert.NoError(t, repo.Create(ctx, job))
	assert.NoError(t, repo.Fail(ctx, "test@example.com", job.ID, "gmail unreachable"))

	progress, result := repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, model.ProgressFailed, progress)
	assert.NotNil(t, result)
	assert.Equal(t, "gmail unreachable", result.Error)
}

func TestJobRepositoryOwnerIsolation(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := model.NewJob("alice@example.com")
	assert.NoError(t, repo.Create(ctx, job))
	assert.NoError(t, repo.SetProgress(ctx, "alice@example.com", job.ID, 50))

	// Bob polling Alice's job id sees nothing
	progress, result := repo.Progress(ctx, "bob@example.com", job.ID)
	assert.Equal(t, 0, progress)
	assert.Nil(t, result)
}

func TestJobRepositoryEviction(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	done := model.NewJob("test@example.com")
	running := model.NewJob("test@example.com")
	assert.NoError(t, repo.Create(ctx, done))
	assert.NoError(t, repo.Create(ctx, running))
	assert.NoError(t, repo.Complete(ctx, "test@example.com", done.ID, &model.ReportResult{}))
	assert.NoError(t, repo.SetProgress(ctx, "test@example.com", running.ID, 50))

	// Only the terminal job older than the cutoff goes away
	removed := repo.EvictFinishedBefore(ctx, time.Now().Add(time.Minute))
	assert.Equal(t, 1, removed)

	progress, _ := repo.Progress(ctx, "test@example.com", running.ID)
	assert.Equal(t, 50, progress)
	progress, result := repo.Progress(ctx, "test@example.com", done.ID)
	assert.Equal(t, 0, progress)
	assert.Nil(t, result)
}

func TestJobRepositoryConcurrentUpdates(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := model.NewJob("test@example.com")
	assert.NoError(t, repo.Create(ctx, job))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			_ = repo.SetProgress(ctx, "test@example.com", job.ID, p)
			repo.Progress(ctx, "test@example.com", job.ID)
		}(i)
	}
	wg.Wait()

	progress, _ := repo.Progress(ctx, "test@example.com", job.ID)
	assert.Equal(t, 50, progress)
}
