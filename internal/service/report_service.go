package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/artifact"
	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/report"
	"github.com/gtl92/gmail-svelkit/internal/repository"
)

// maxReportMessages caps how many messages one report covers.
const maxReportMessages = 50

type reportService struct {
	factory  MailSourceFactory
	jobs     repository.JobRepository
	reports  repository.ReportRepository
	store    *artifact.Store
	renderer report.Renderer
	baseURL  string
	logger   *logger.Logger
}

// NewReportService creates the report orchestrator. baseURL is the public
// origin used to build shareable report links.
func NewReportService(
	factory MailSourceFactory,
	jobs repository.JobRepository,
	reports repository.ReportRepository,
	store *artifact.Store,
	renderer report.Renderer,
	baseURL string,
	logger *logger.Logger,
) ReportService {
	return &reportService{
		factory:  factory,
		jobs:     jobs,
		reports:  reports,
		store:    store,
		renderer: renderer,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (s *reportService) reportURL(token string) string {
	return s.baseURL + "/reports/" + token
}

// parseDate validates the report date and returns the start of that day in
// UTC for the search window.
func parseDate(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}
	return t, nil
}

func buildQuery(start time.Time, onlyUnread bool) string {
	query := fmt.Sprintf("after:%d", start.Unix())
	if onlyUnread {
		query += " is:unread"
	}
	return query
}

func (s *reportService) StartGeneration(ctx context.Context, ownerEmail string, creds *model.CredentialBundle, opts FilterOptions) (*GenerationHandle, error) {
	if creds == nil {
		return nil, ErrNotAuthenticated
	}
	if _, err := parseDate(opts.Date); err != nil {
		return nil, err
	}

	token := artifact.MintToken(ownerEmail)
	if err := s.store.Reserve(token); err != nil {
		return nil, err
	}

	job := model.NewJob(ownerEmail)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Infof("Starting report generation for %s (job %s)", ownerEmail, job.ID)

	// The pipeline outlives the request; it must not inherit its deadline.
	go func() {
		bg := context.Background()
		if _, err := s.runPipeline(bg, job, creds, opts, token); err != nil {
			s.logger.Errorf("Report generation failed for %s: %v", ownerEmail, err)
		}
	}()

	return &GenerationHandle{
		JobID:     job.ID,
		Token:     token,
		ReportURL: s.reportURL(token),
	}, nil
}

func (s *reportService) Generate(ctx context.Context, ownerEmail string, creds *model.CredentialBundle, opts FilterOptions) (*model.ReportResult, error) {
	if creds == nil {
		return nil, ErrNotAuthenticated
	}
	if _, err := parseDate(opts.Date); err != nil {
		return nil, err
	}

	token := artifact.MintToken(ownerEmail)
	if err := s.store.Reserve(token); err != nil {
		return nil, err
	}

	job := model.NewJob(ownerEmail)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return s.runPipeline(ctx, job, creds, opts, token)
}

// runPipeline executes the full generation: list, fetch, aggregate, render,
// persist, notify. Progress checkpoints land at 10/30/50/70/90 and the job
// ends at 100 or the failed sentinel.
func (s *reportService) runPipeline(ctx context.Context, job *model.Job, creds *model.CredentialBundle, opts FilterOptions, token string) (*model.ReportResult, error) {
	owner := job.OwnerEmail

	fail := func(err error) (*model.ReportResult, error) {
		if ferr := s.jobs.Fail(ctx, owner, job.ID, err.Error()); ferr != nil {
			s.logger.Error("Failed to mark job as failed:", ferr)
		}
		return nil, err
	}

	src, err := s.factory.ForCredentials(ctx, creds)
	if err != nil {
		return fail(err)
	}
	s.setProgress(ctx, owner, job.ID, 10)

	start, err := parseDate(opts.Date)
	if err != nil {
		return fail(err)
	}
	ids, err := src.ListMessages(ctx, buildQuery(start, opts.OnlyUnread), maxReportMessages)
	if err != nil {
		return fail(err)
	}
	s.setProgress(ctx, owner, job.ID, 30)

	messages := make([]*model.MessageSummary, 0, len(ids))
	for _, id := range ids {
		msg, err := src.GetMessage(ctx, id)
		if err != nil {
			// One unreadable message must not sink the report.
			s.logger.Warnf("Skipping message %s for %s: %v", id, owner, err)
			continue
		}
		messages = append(messages, msg)
	}
	s.setProgress(ctx, owner, job.ID, 50)

	stats := model.ComputeStats(messages)
	s.setProgress(ctx, owner, job.ID, 70)

	html, err := s.renderer.Render(report.Data{
		Date:         opts.Date,
		OwnerEmail:   owner,
		Messages:     messages,
		GeneratedAt:  time.Now().Format("02/01/2006 15:04"),
		OnlyUnread:   opts.OnlyUnread,
		GroupByLabel: opts.GroupByLabel,
		Stats:        stats,
	})
	if err != nil {
		return fail(err)
	}
	s.setProgress(ctx, owner, job.ID, 90)

	if err := s.store.Finalize(token, html); err != nil {
		return fail(err)
	}

	result := &model.ReportResult{
		HTML:      html,
		Count:     len(messages),
		Token:     token,
		ReportURL: s.reportURL(token),
	}
	if err := s.jobs.Complete(ctx, owner, job.ID, result); err != nil {
		s.logger.Error("Failed to complete job:", err)
	}
	if err := s.reports.SaveLast(ctx, owner, result); err != nil {
		s.logger.Error("Failed to save last report:", err)
	}

	// Notification delivery is best effort; the report itself is already
	// available at its link.
	s.notify(ctx, src, owner, opts.Date, result.ReportURL)

	s.logger.Infof("Report ready for %s: %d messages (job %s)", owner, len(messages), job.ID)
	return result, nil
}

func (s *reportService) setProgress(ctx context.Context, owner, jobID string, progress int) {
	if err := s.jobs.SetProgress(ctx, owner, jobID, progress); err != nil {
		s.logger.Error("Failed to update job progress:", err)
	}
}

func (s *reportService) notify(ctx context.Context, src MailSource, owner, date, reportURL string) {
	subject := "Your Gmail report for " + date + " is ready 📬"
	raw := report.BuildRawMessage(owner, subject, report.NotificationHTML(date, reportURL))
	if err := src.SendMessage(ctx, raw); err != nil {
		s.logger.Warnf("Failed to send report notification to %s: %v", owner, err)
	}
}

func (s *reportService) Progress(ctx context.Context, ownerEmail, jobID string) (int, *model.ReportResult) {
	return s.jobs.Progress(ctx, ownerEmail, jobID)
}

func (s *reportService) LastReport(ctx context.Context, ownerEmail string) (*model.ReportResult, error) {
	return s.reports.FindLast(ctx, ownerEmail)
}

// SendReport mails the owner's most recent report to an arbitrary address
// under a fresh token, so the recipient's link is independent of the
// owner's own.
func (s *reportService) SendReport(ctx context.Context, ownerEmail string, creds *model.CredentialBundle, to, subject string) (string, error) {
	if creds == nil {
		return "", ErrNotAuthenticated
	}
	if to == "" {
		return "", fmt.Errorf("%w: recipient is required", ErrValidation)
	}

	last, err := s.reports.FindLast(ctx, ownerEmail)
	if err != nil {
		return "", err
	}
	if last == nil {
		return "", fmt.Errorf("%w: no report available to send", ErrValidation)
	}

	token := artifact.MintToken(ownerEmail)
	if err := s.store.Finalize(token, last.HTML); err != nil {
		return "", err
	}
	reportURL := s.reportURL(token)

	src, err := s.factory.ForCredentials(ctx, creds)
	if err != nil {
		return "", err
	}
	if subject == "" {
		subject = "Gmail report shared by " + ownerEmail
	}
	raw := report.BuildRawMessage(to, subject, report.NotificationHTML(time.Now().Format("2006-01-02"), reportURL))
	if err := src.SendMessage(ctx, raw); err != nil {
		return "", err
	}

	s.logger.Infof("Report %s… sent to %s on behalf of %s", token[:8], to, ownerEmail)
	return reportURL, nil
}

func (s *reportService) CountMessages(ctx context.Context, creds *model.CredentialBundle, date string, onlyUnread bool) (int64, error) {
	if creds == nil {
		return 0, ErrNotAuthenticated
	}
	start, err := parseDate(date)
	if err != nil {
		return 0, err
	}
	src, err := s.factory.ForCredentials(ctx, creds)
	if err != nil {
		return 0, err
	}
	return src.EstimateCount(ctx, buildQuery(start, onlyUnread))
}
