package model

// Gmail category label ids mapped to the display names used in reports.
// Messages without any of these labels still count in the global totals but
// are excluded from the per-category breakdown.
var CategoryNames = map[string]string{
	"CATEGORY_PERSONAL":   "Primary",
	"CATEGORY_PROMOTIONS": "Promotions",
	"CATEGORY_UPDATES":    "Notifications",
	"CATEGORY_SOCIAL":     "Social",
	"CATEGORY_FORUMS":     "Forums",
}

// CategoryOrder fixes the rendering order of the taxonomy.
var CategoryOrder = []string{
	"CATEGORY_PERSONAL",
	"CATEGORY_PROMOTIONS",
	"CATEGORY_UPDATES",
	"CATEGORY_SOCIAL",
	"CATEGORY_FORUMS",
}

type CategoryStats struct {
	Total  int `json:"total"`
	Read   int `json:"read"`
	Unread int `json:"unread"`
}

// ReportStats aggregates one message collection. Total = Read + Unread holds
// by construction; per-category totals are each <= Total.
type ReportStats struct {
	Total       int                      `json:"total"`
	Read        int                      `json:"read"`
	Unread      int                      `json:"unread"`
	PerCategory map[string]CategoryStats `json:"perCategory"`
}

// ComputeStats derives the aggregate statistics for a message collection,
// keyed by category display name. Recomputed per generation, never mutated.
func ComputeStats(messages []*MessageSummary) ReportStats {
	stats := ReportStats{PerCategory: make(map[string]CategoryStats)}
	for _, m := range messages {
		stats.Total++
		if m.IsUnread {
			stats.Unread++
		} else {
			stats.Read++
		}
	}
	for _, label := range CategoryOrder {
		name := CategoryNames[label]
		var cs CategoryStats
		for _, m := range messages {
			if !m.HasLabel(label) {
				continue
			}
			cs.Total++
			if m.IsUnread {
				cs.Unread++
			} else {
				cs.Read++
			}
		}
		stats.PerCategory[name] = cs
	}
	return stats
}
