package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

func sampleData() Data {
	messages := []*model.MessageSummary{
		{ID: "m1", Subject: "Big sale", From: "shop@example.com", LabelIDs: []string{"CATEGORY_PROMOTIONS", "UNREAD"}, IsUnread: true, DateStr: "2026-08-30T09:15:00Z"},
		{ID: "m2", Subject: "Build passed", From: "ci@example.com", LabelIDs: []string{"CATEGORY_UPDATES"}, DateStr: "2026-08-30T11:40:00Z"},
	}
	return Data{
		Date:        "2026-08-30",
		OwnerEmail:  "test@example.com",
		Messages:    messages,
		GeneratedAt: "30/08/2026 12:00",
		Stats:       model.ComputeStats(messages),
	}
}

func TestRenderReport(t *testing.T) {
	html, err := NewHTMLRenderer().Render(sampleData())
	assert.NoError(t, err)

	assert.Contains(t, html, "test@example.com")
	assert.Contains(t, html, "2026-08-30")
	assert.Contains(t, html, "Big sale")
	assert.Contains(t, html, "Build passed")
	// Category sections only appear for populated categories
	assert.Contains(t, html, "Promotions (1)")
	assert.Contains(t, html, "Notifications (1)")
	assert.NotContains(t, html, "Forums (")
	// Message timestamps use the hour (day/month) form
	assert.Contains(t, html, "09:15 (30/08)")
}

func TestRenderReportEscapesSubjects(t *testing.T) {
	data := sampleData()
	data.Messages[0].Subject = `<script>alert("x")</script>`
	html, err := NewHTMLRenderer().Render(data)
	assert.NoError(t, err)
	assert.NotContains(t, html, `<script>alert`)
}

func TestRenderEmptyReport(t *testing.T) {
	data := Data{
		Date:       "2026-08-30",
		OwnerEmail: "test@example.com",
		Stats:      model.ComputeStats(nil),
	}
	html, err := NewHTMLRenderer().Render(data)
	assert.NoError(t, err)
	assert.Contains(t, html, "Total: <b>0</b>")
}

func TestOptionsLine(t *testing.T) {
	assert.Equal(t, "All messages – Ungrouped", optionsLine(false, false))
	assert.Equal(t, "Unread only – Grouped by category", optionsLine(true, true))
}
