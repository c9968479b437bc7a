package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/model"
)

// Data is everything the renderer needs for one report. Rendering is pure:
// data in, markup out, no I/O.
type Data struct {
	Date         string
	OwnerEmail   string
	Messages     []*model.MessageSummary
	GeneratedAt  string
	OnlyUnread   bool
	GroupByLabel bool
	Stats        model.ReportStats
}

// Renderer converts a report dataset into a standalone HTML document.
type Renderer interface {
	Render(data Data) (string, error)
}

type htmlRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() Renderer {
	return &htmlRenderer{tmpl: template.Must(template.New("report").Parse(reportTemplate))}
}

type categoryView struct {
	Name     string
	Messages []messageView
}

type statView struct {
	Name string
	model.CategoryStats
}

type messageView struct {
	ID       string
	Subject  string
	From     string
	When     string
	IsUnread bool
}

type reportView struct {
	Date        string
	OwnerEmail  string
	GeneratedAt string
	OptionsLine string
	Stats       model.ReportStats
	PerCategory []statView
	Categories  []categoryView
}

func (r *htmlRenderer) Render(data Data) (string, error) {
	view := reportView{
		Date:        data.Date,
		OwnerEmail:  data.OwnerEmail,
		GeneratedAt: data.GeneratedAt,
		OptionsLine: optionsLine(data.OnlyUnread, data.GroupByLabel),
		Stats:       data.Stats,
	}

	for _, label := range model.CategoryOrder {
		name := model.CategoryNames[label]
		view.PerCategory = append(view.PerCategory, statView{
			Name:          name,
			CategoryStats: data.Stats.PerCategory[name],
		})

		cat := categoryView{Name: name}
		for _, m := range data.Messages {
			if !m.HasLabel(label) {
				continue
			}
			cat.Messages = append(cat.Messages, messageView{
				ID:       m.ID,
				Subject:  subjectOrDefault(m.Subject),
				From:     m.From,
				When:     formatWhen(m.DateStr),
				IsUnread: m.IsUnread,
			})
		}
		if len(cat.Messages) > 0 {
			view.Categories = append(view.Categories, cat)
		}
	}

	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func optionsLine(onlyUnread, groupByLabel bool) string {
	parts := []string{"All messages", "Ungrouped"}
	if onlyUnread {
		parts[0] = "Unread only"
	}
	if groupByLabel {
		parts[1] = "Grouped by category"
	}
	return strings.Join(parts, " – ")
}

func subjectOrDefault(subject string) string {
	if subject == "" {
		return "(No subject)"
	}
	return subject
}

// formatWhen renders "15:04 (02/01)" from the stored RFC3339 date, or an
// empty string when the message date was unparsable.
func formatWhen(dateStr string) string {
	if dateStr == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return ""
	}
	return t.Format("15:04 (02/01)")
}

const reportTemplate = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Gmail Report</title>
    <style>
      html, body { margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f5f5f5; }
      .container { background: white; padding: 40px 48px; border-radius: 12px; box-shadow: 0 4px 24px #0002; margin: 32px auto; max-width: 1200px; box-sizing: border-box; }
      table { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
      th, td { border: 1px solid #ccc; padding: 6px; }
      th { background-color: #34495e; color: #fff; font-weight: bold; text-align: left; }
      .summary { background: #ecf0f1; border-radius: 10px; margin-bottom: 24px; padding: 24px 24px 18px 24px; }
      .summary-title { font-size: 2em; font-weight: 700; color: #1976d2; margin-bottom: 10px; text-align: center; }
      .summary-subtitle { font-size: 1.13em; font-weight: 600; margin-bottom: 10px; color: #2c3e50; }
      .stat-cards { display: flex; flex-wrap: wrap; gap: 10px; margin-top: 2px; }
      .stat-card { background: #fff; border-radius: 8px; box-shadow: 0 1px 8px #1976d208; padding: 8px 12px 5px 12px; min-width: 110px; text-align: center; font-size: 0.98em; }
      .stat-card .name { font-size: 1.04em; font-weight: 600; color: #1976d2; margin-bottom: 3px; }
      .stat-card .breakdown { font-size: 0.91em; color: #888; }
      .unread { color: #c0392b; }
      .read { color: #27ae60; }
      .category-title { margin: 28px 0 12px 0; font-size: 17px; font-weight: bold; color: #1976d2; }
      .category-chip { background: #dffdfd; padding: 4px 14px; display: block; }
      .from { font-size: 0.92em; color: #888; }
      .footer { color: #888; font-size: 0.98em; }
      .page-break { page-break-before: always; break-before: page; }
    </style>
  </head>
  <body>
    <div class="container">
      <div style="font-size:1.15em;margin-bottom:12px;">
        <b>Gmail Summary</b> — {{.Date}} <span style="color:#157fe3;">{{.OwnerEmail}}</span>
      </div>
      <div class="summary">
        <div class="summary-title">&#128202; Report summary</div>
        <div class="summary-subtitle">Active options:</div>
        <div style="margin-bottom:16px;">{{.OptionsLine}}</div>
        <div class="summary-subtitle">Global statistics:</div>
        <div style="margin-bottom:12px;">
          Total: <b>{{.Stats.Total}}</b> &middot;
          <span class="read">Read: <b>{{.Stats.Read}}</b></span> &middot;
          <span class="unread">Unread: <b>{{.Stats.Unread}}</b></span>
        </div>
        <div class="summary-subtitle">Statistics per category:</div>
        <div class="stat-cards">
          {{range .PerCategory}}
          <div class="stat-card">
            <div class="name">{{.Name}}</div>
            <div><b>{{.Total}}</b> messages</div>
            <div class="breakdown"><span class="unread">unread <b>{{.Unread}}</b></span> | <span class="read">read <b>{{.Read}}</b></span></div>
          </div>
          {{end}}
        </div>
      </div>
      {{range .Categories}}
      <div class="page-break">
        <div class="category-title"><span class="category-chip">{{.Name}} ({{len .Messages}})</span></div>
        <table>
          <thead>
            <tr>
              <th style="width:120px;">Time (DD/MM)</th>
              <th>Subject</th>
              <th style="width:60px;">Read?</th>
            </tr>
          </thead>
          <tbody>
            {{range .Messages}}
            <tr>
              <td>{{.When}}</td>
              <td>
                <a href="https://mail.google.com/mail/u/0/#inbox/{{.ID}}" target="_blank" style="color:#1a73e8;">{{.Subject}}</a>
                {{if .From}}<div class="from">{{.From}}</div>{{end}}
              </td>
              <td style="text-align:center;">
                {{if .IsUnread}}<span title="Unread" class="unread">&#9679;</span>{{else}}<span title="Read" class="read">&#9679;</span>{{end}}
              </td>
            </tr>
            {{end}}
          </tbody>
        </table>
      </div>
      {{end}}
      <div class="footer">Report generated on {{.GeneratedAt}} with <b>Gmail Summary</b></div>
    </div>
  </body>
</html>`
