package model

// MessageSummary is the normalized view of one Gmail message used by the
// report pipeline. It is built once at the Mail Source boundary and never
// mutated afterwards; downstream code must not depend on raw API shapes.
type MessageSummary struct {
	ID       string   `json:"id"`
	Subject  string   `json:"subject"`
	LabelIDs []string `json:"labelIds"`
	Snippet  string   `json:"snippet"`
	// DateStr is the RFC3339 form of the Date header, or empty when the
	// header is missing or unparsable.
	DateStr  string `json:"dateStr"`
	IsUnread bool   `json:"isUnread"`
	From     string `json:"from"`
}

// HasLabel reports whether the message carries the given Gmail label id.
func (m *MessageSummary) HasLabel(label string) bool {
	for _, l := range m.LabelIDs {
		if l == label {
			return true
		}
	}
	return false
}
