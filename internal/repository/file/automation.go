package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/repository"
)

// AutomationRepository stores the full registry in one JSON file, rewritten
// wholesale on every mutation. Good enough for a single-process deployment;
// there is no locking against concurrent writers of the same file.
type AutomationRepository struct {
	path  string
	mutex sync.Mutex
}

func NewAutomationRepository(path string) *AutomationRepository {
	return &AutomationRepository{path: path}
}

func (r *AutomationRepository) load() ([]*model.AutomationEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read automation file: %w", err)
	}
	var entries []*model.AutomationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse automation file: %w", err)
	}
	return entries, nil
}

func (r *AutomationRepository) save(entries []*model.AutomationEntry) error {
	if entries == nil {
		entries = []*model.AutomationEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode automation file: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write automation file: %w", err)
	}
	return nil
}

func (r *AutomationRepository) Upsert(ctx context.Context, entry *model.AutomationEntry) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Email != entry.Email {
			kept = append(kept, e)
		}
	}
	kept = append(kept, entry)
	return r.save(kept)
}

func (r *AutomationRepository) Remove(ctx context.Context, email string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	if entries == nil {
		return nil
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Email != email {
			kept = append(kept, e)
		}
	}
	return r.save(kept)
}

func (r *AutomationRepository) Find(ctx context.Context, email string) (*model.AutomationEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (r *AutomationRepository) FindAll(ctx context.Context) ([]*model.AutomationEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.load()
}

func (r *AutomationRepository) SetLastRun(ctx context.Context, email string, t time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	found := false
	for _, e := range entries {
		if e.Email == email {
			ts := t
			e.LastRun = &ts
			found = true
		}
	}
	if !found {
		return repository.ErrEntryNotFound
	}
	return r.save(entries)
}

func (r *AutomationRepository) PruneInactive(ctx context.Context, threshold time.Duration, now time.Time) ([]*model.AutomationEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, nil
	}
	cutoff := now.Add(-threshold)
	var removed []*model.AutomationEntry
	kept := entries[:0]
	for _, e := range entries {
		// Entries that never ran are kept regardless of age.
		if e.LastRun != nil && e.LastRun.Before(cutoff) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := r.save(kept); err != nil {
		return nil, err
	}
	return removed, nil
}
