package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/repository"
)

const (
	// defaultFrequencyMinutes is used when a run-now request arrives for a
	// user who never configured a cadence.
	defaultFrequencyMinutes = 60
	// inactivityThreshold is how long an entry may go without a successful
	// run before a sweep archives it.
	inactivityThreshold = 30 * 24 * time.Hour
	minutesPerDay       = 24 * 60
)

type automationService struct {
	registry     repository.AutomationRepository
	reports      ReportService
	auditLogFile string
	logger       *logger.Logger
}

func NewAutomationService(registry repository.AutomationRepository, reports ReportService, auditLogFile string, logger *logger.Logger) AutomationService {
	return &automationService{
		registry:     registry,
		reports:      reports,
		auditLogFile: auditLogFile,
		logger:       logger,
	}
}

func (s *automationService) Enable(ctx context.Context, email string, creds *model.CredentialBundle, frequencyMinutes int) error {
	if creds == nil {
		return ErrNotAuthenticated
	}
	if frequencyMinutes <= 0 {
		return fmt.Errorf("%w: frequency must be positive", ErrValidation)
	}
	entry := &model.AutomationEntry{
		Email:            email,
		Tokens:           creds,
		FrequencyMinutes: frequencyMinutes,
	}
	if err := s.registry.Upsert(ctx, entry); err != nil {
		return err
	}
	s.logger.Infof("Automation enabled for %s every %d minutes", email, frequencyMinutes)
	return nil
}

func (s *automationService) Disable(ctx context.Context, email string) error {
	if err := s.registry.Remove(ctx, email); err != nil {
		return err
	}
	s.logger.Info("Automation disabled for", email)
	return nil
}

func (s *automationService) Status(ctx context.Context, email string) (*AutomationStatus, error) {
	entry, err := s.registry.Find(ctx, email)
	if err != nil {
		if err == repository.ErrEntryNotFound {
			return &AutomationStatus{Active: false}, nil
		}
		return nil, err
	}

	status := &AutomationStatus{Active: true}
	switch {
	case entry.FrequencyMinutes%minutesPerDay == 0:
		status.Frequency = "daily"
	case entry.FrequencyMinutes%60 == 0:
		status.Frequency = "xhours"
		status.XHours = entry.FrequencyMinutes / 60
	default:
		status.Frequency = "xminutes"
		status.XMinutes = entry.FrequencyMinutes
	}
	return status, nil
}

func (s *automationService) RunNow(ctx context.Context, email string, creds *model.CredentialBundle) (*SweepResult, error) {
	if creds == nil {
		return nil, ErrNotAuthenticated
	}

	entry, err := s.registry.Find(ctx, email)
	if err == repository.ErrEntryNotFound {
		entry = &model.AutomationEntry{
			Email:            email,
			Tokens:           creds,
			FrequencyMinutes: defaultFrequencyMinutes,
		}
		if err := s.registry.Upsert(ctx, entry); err != nil {
			return nil, err
		}
		s.logger.Infof("Auto-enrolled %s for manual automation run", email)
	} else if err != nil {
		return nil, err
	} else {
		// The interactive credentials are the freshest ones we have.
		entry.Tokens = creds
	}

	result := s.runEntry(ctx, entry, time.Now())
	return result, nil
}

// RunSweep archives dormant entries and then runs each due entry once.
// Failures are confined to the entry that raised them.
func (s *automationService) RunSweep(ctx context.Context, now time.Time) ([]*SweepResult, error) {
	pruned, err := s.registry.PruneInactive(ctx, inactivityThreshold, now)
	if err != nil {
		s.logger.Error("Failed to prune inactive automation entries:", err)
	}
	for _, entry := range pruned {
		s.auditArchived(entry, now)
	}

	entries, err := s.registry.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*SweepResult, 0, len(entries))
	for _, entry := range entries {
		if !entry.Due(now) {
			results = append(results, &SweepResult{Email: entry.Email, Due: false, Skipped: true})
			continue
		}
		results = append(results, s.runEntry(ctx, entry, now))
	}
	return results, nil
}

func (s *automationService) runEntry(ctx context.Context, entry *model.AutomationEntry, now time.Time) *SweepResult {
	result := &SweepResult{Email: entry.Email, Due: true}

	opts := FilterOptions{
		Date:         now.Format("2006-01-02"),
		GroupByLabel: true,
	}
	report, err := s.reports.Generate(ctx, entry.Email, entry.Tokens, opts)
	if err != nil {
		s.logger.Errorf("Automation run failed for %s: %v", entry.Email, err)
		result.Error = err.Error()
		return result
	}

	if err := s.registry.SetLastRun(ctx, entry.Email, now); err != nil {
		s.logger.Errorf("Failed to record lastRun for %s: %v", entry.Email, err)
	}

	result.Sent = true
	result.Count = report.Count
	result.Token = report.Token
	return result
}

// auditArchived appends one line per archived user so removals stay
// traceable after the registry forgot them.
func (s *automationService) auditArchived(entry *model.AutomationEntry, now time.Time) {
	lastRun := "never"
	if entry.LastRun != nil {
		lastRun = entry.LastRun.UTC().Format(time.RFC3339)
	}
	s.logger.Infof("Archiving inactive automation entry %s (lastRun: %s)", entry.Email, lastRun)

	if err := os.MkdirAll(filepath.Dir(s.auditLogFile), 0o755); err != nil {
		s.logger.Error("Failed to create audit log dir:", err)
		return
	}
	f, err := os.OpenFile(s.auditLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Error("Failed to open audit log:", err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s - %s (lastRun: %s)\n", now.UTC().Format(time.RFC3339), entry.Email, lastRun)
	if _, err := f.WriteString(line); err != nil {
		s.logger.Error("Failed to append audit log line:", err)
	}
}
