package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressFailed is the terminal sentinel for a generation job that died
// before producing a report. All other progress values are in [0,100].
const ProgressFailed = -1

// ReportResult is the payload of a finished generation job.
type ReportResult struct {
	HTML      string `json:"html"`
	Count     int    `json:"count"`
	Token     string `json:"token"`
	ReportURL string `json:"reportUrl"`
	Error     string `json:"error,omitempty"`
}

// Job tracks one report-generation run. Jobs live in memory only and are
// owned by exactly one user's job table.
type Job struct {
	ID         string        `json:"jobId"`
	OwnerEmail string        `json:"ownerEmail"`
	Progress   int           `json:"progress"`
	Result     *ReportResult `json:"result,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
}

func NewJob(ownerEmail string) *Job {
	return &Job{
		ID:         uuid.New().String(),
		OwnerEmail: ownerEmail,
		Progress:   0,
		CreatedAt:  time.Now(),
	}
}

// Terminal reports whether the job reached one of its two end states.
func (j *Job) Terminal() bool {
	return j.Progress == 100 || j.Progress == ProgressFailed
}
