package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/stgabriel/parishhub/internal/model"
)

// DigestData is everything a daily digest email shows for one user.
type DigestData struct {
	Date         string
	TodayTasks   []model.Task
	OverdueTasks []model.Task
	PendingCount int
}

var priorityColors = map[model.Priority]string{
	model.PriorityHigh:   "#DC2626",
	model.PriorityNormal: "#2563EB",
	model.PriorityLow:    "#6B7280",
}

// SendDigest sends the daily task summary. Callers are expected to skip
// users with nothing due and nothing overdue; this method sends whatever it
// is given.
func (c *Client) SendDigest(to string, d DigestData) error {
	subject := fmt.Sprintf("Your tasks for %s", d.Date)
	return c.send(to, subject, renderDigestHTML(d), renderDigestText(d))
}

func renderDigestText(d DigestData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily task digest for %s\n\n", d.Date)

	if len(d.TodayTasks) > 0 {
		b.WriteString("Due today:\n")
		for _, t := range d.TodayTasks {
			line := fmt.Sprintf("  [%s] %s", t.Priority, t.Title)
			if t.DueTime != "" {
				line += " at " + t.DueTime
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(d.OverdueTasks) > 0 {
		b.WriteString("Overdue:\n")
		for _, t := range d.OverdueTasks {
			fmt.Fprintf(&b, "  %s (due %s)\n", t.Title, t.DueDate)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "You have %d open tasks in total.\n", d.PendingCount)
	return b.String()
}

func renderDigestHTML(d DigestData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Daily task digest for %s</h2>", d.Date)

	if len(d.TodayTasks) > 0 {
		b.WriteString("<h3>Due today</h3><ul>")
		for _, t := range d.TodayTasks {
			color, ok := priorityColors[t.Priority]
			if !ok {
				color = priorityColors[model.PriorityNormal]
			}
			item := html.EscapeString(t.Title)
			if t.DueTime != "" {
				item += " at " + html.EscapeString(t.DueTime)
			}
			fmt.Fprintf(&b, `<li style="color:%s">%s</li>`, color, item)
		}
		b.WriteString("</ul>")
	}

	if len(d.OverdueTasks) > 0 {
		b.WriteString(`<h3 style="color:#DC2626">Overdue</h3><ul>`)
		for _, t := range d.OverdueTasks {
			fmt.Fprintf(&b, "<li>%s (due %s)</li>", html.EscapeString(t.Title), html.EscapeString(t.DueDate))
		}
		b.WriteString("</ul>")
	}

	fmt.Fprintf(&b, "<p>You have %d open tasks in total.</p>", d.PendingCount)
	return b.String()
}
