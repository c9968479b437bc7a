package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

// InMemoryJobRepository keeps every owner's job table in process memory.
// Jobs do not survive a restart; pollers of a vanished job see progress 0.
type InMemoryJobRepository struct {
	jobs  map[string]map[string]*model.Job // ownerEmail -> jobID -> job
	mutex sync.RWMutex
}

func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobs: make(map[string]map[string]*model.Job),
	}
}

func (r *InMemoryJobRepository) Create(ctx context.Context, job *model.Job) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.jobs[job.OwnerEmail] == nil {
		r.jobs[job.OwnerEmail] = make(map[string]*model.Job)
	}
	r.jobs[job.OwnerEmail][job.ID] = job
	return nil
}

func (r *InMemoryJobRepository) Progress(ctx context.Context, ownerEmail, jobID string) (int, *model.ReportResult) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	job, ok := r.jobs[ownerEmail][jobID]
	if !ok {
		return 0, nil
	}
	if job.Progress == 100 || job.Progress == model.ProgressFailed {
		return job.Progress, job.Result
	}
	return job.Progress, nil
}

func (r *InMemoryJobRepository) SetProgress(ctx context.Context, ownerEmail, jobID string, progress int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	job, ok := r.jobs[ownerEmail][jobID]
	if !ok {
		return errors.New("job not found")
	}
	if job.Terminal() {
		return nil
	}
	if progress <= job.Progress {
		return nil
	}
	if progress > 100 {
		progress = 100
	}
	job.Progress = progress
	return nil
}

func (r *InMemoryJobRepository) Complete(ctx context.Context, ownerEmail, jobID string, result *model.ReportResult) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	job, ok := r.jobs[ownerEmail][jobID]
	if !ok {
		return errors.New("job not found")
	}
	if job.Terminal() {
		return nil
	}
	job.Result = result
	job.Progress = 100
	job.FinishedAt = time.Now()
	return nil
}

func (r *InMemoryJobRepository) Fail(ctx context.Context, ownerEmail, jobID string, errMsg string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	job, ok := r.jobs[ownerEmail][jobID]
	if !ok {
		return errors.New("job not found")
	}
	if job.Terminal() {
		return nil
	}
	job.Result = &model.ReportResult{Error: errMsg}
	job.Progress = model.ProgressFailed
	job.FinishedAt = time.Now()
	return nil
}

func (r *InMemoryJobRepository) EvictFinishedBefore(ctx context.Context, cutoff time.Time) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for owner, table := range r.jobs {
		for id, job := range table {
			if job.Terminal() && job.FinishedAt.Before(cutoff) {
				delete(table, id)
				removed++
			}
		}
		if len(table) == 0 {
			delete(r.jobs, owner)
		}
	}
	return removed
}
