package memory

import (
	"context"
	"sync"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

// InMemoryReportRepository remembers the last finished report per owner.
type InMemoryReportRepository struct {
	reports map[string]*model.ReportResult
	mutex   sync.RWMutex
}

func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{
		reports: make(map[string]*model.ReportResult),
	}
}

func (r *InMemoryReportRepository) SaveLast(ctx context.Context, ownerEmail string, result *model.ReportResult) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.reports[ownerEmail] = result
	return nil
}

func (r *InMemoryReportRepository) FindLast(ctx context.Context, ownerEmail string) (*model.ReportResult, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	// A missing last report is a normal state, not an error.
	return r.reports[ownerEmail], nil
}
