package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/stgabriel/parishhub/internal/model"
)

var typeLabels = map[model.RequestType]string{
	model.RequestAnnouncement:  "Announcement",
	model.RequestWebsiteUpdate: "Website Update",
	model.RequestSMS:           "SMS",
	model.RequestAV:            "A/V",
	model.RequestFlyerReview:   "Flyer Review",
	model.RequestGraphicDesign: "Graphic Design",
}

// TypeLabel returns the human-readable name of a request type.
func TypeLabel(t model.RequestType) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// SendSubmissionConfirmation acknowledges a form submission to the person who
// sent it. commentLink, when non-empty, lets the submitter follow staff
// comments on their request without an account.
func (c *Client) SendSubmissionConfirmation(req *model.Request, commentLink string) error {
	label := TypeLabel(req.Type)
	subject := fmt.Sprintf("We received your %s request", label)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", req.SubmitterName)
	fmt.Fprintf(&text, "Your %s request %q has been received and will be reviewed by the communications team.\n", label, req.Title)
	if req.ApprovalStatus == model.ApprovalPending {
		text.WriteString("\nThis request requires ministry approval before publication; you will be notified once it is reviewed.\n")
	}
	if commentLink != "" {
		fmt.Fprintf(&text, "\nFollow updates on your request here:\n%s\n", commentLink)
	}
	text.WriteString("\nThank you,\nParish Communications\n")

	var htmlBody strings.Builder
	fmt.Fprintf(&htmlBody, "<p>Hi %s,</p>", html.EscapeString(req.SubmitterName))
	fmt.Fprintf(&htmlBody, "<p>Your %s request <strong>%s</strong> has been received and will be reviewed by the communications team.</p>",
		label, html.EscapeString(req.Title))
	if req.ApprovalStatus == model.ApprovalPending {
		htmlBody.WriteString("<p>This request requires ministry approval before publication; you will be notified once it is reviewed.</p>")
	}
	if commentLink != "" {
		fmt.Fprintf(&htmlBody, `<p><a href="%s">Follow updates on your request</a></p>`, commentLink)
	}
	htmlBody.WriteString("<p>Thank you,<br>Parish Communications</p>")

	return c.send(req.SubmitterEmail, subject, htmlBody.String(), text.String())
}

// SendApprovalRequest notifies a ministry approver that an announcement is
// waiting on them.
func (c *Client) SendApprovalRequest(approverEmail string, req *model.Request) error {
	subject := fmt.Sprintf("Approval needed: %s", req.Title)
	link := fmt.Sprintf("%s/admin/requests/%s", c.baseURL, req.ID)

	text := fmt.Sprintf(
		"A new announcement for %s needs your approval.\n\nTitle: %s\nSubmitted by: %s <%s>\n\nReview it here:\n%s\n",
		req.Ministry, req.Title, req.SubmitterName, req.SubmitterEmail, link,
	)
	htmlBody := fmt.Sprintf(
		`<p>A new announcement for <strong>%s</strong> needs your approval.</p><p>Title: %s<br>Submitted by: %s &lt;%s&gt;</p><p><a href="%s">Review it here</a></p>`,
		html.EscapeString(req.Ministry), html.EscapeString(req.Title),
		html.EscapeString(req.SubmitterName), html.EscapeString(req.SubmitterEmail), link,
	)

	return c.send(approverEmail, subject, htmlBody, text)
}

// SendSummary delivers an AI-generated summary to the fixed internal
// recipient.
func (c *Client) SendSummary(to, subject, summary string) error {
	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(summary), "\n", "<br>") + "</p>"
	return c.send(to, subject, htmlBody, summary)
}
