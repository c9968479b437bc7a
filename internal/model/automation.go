package model

import "time"

// AutomationEntry enrolls one user into recurring report generation. At most
// one entry exists per email; enabling again replaces the previous entry.
type AutomationEntry struct {
	Email            string            `json:"email"`
	Tokens           *CredentialBundle `json:"tokens"`
	FrequencyMinutes int               `json:"frequencyMinutes"`
	// LastRun is nil until the first successful run.
	LastRun *time.Time `json:"lastRun"`
}

// Due reports whether the entry should run at the given instant. An entry
// that has never run is always due.
func (e *AutomationEntry) Due(now time.Time) bool {
	var last time.Time
	if e.LastRun != nil {
		last = *e.LastRun
	}
	return now.Sub(last) >= time.Duration(e.FrequencyMinutes)*time.Minute
}
