package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stgabriel/parishhub/internal/model"
)

// rewriteTransport redirects all requests to a test server URL.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}

func capturingServer(t *testing.T, received *postmarkEmail, gotToken *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotToken != nil {
			*gotToken = r.Header.Get("X-Postmark-Server-Token")
		}
		if err := json.NewDecoder(r.Body).Decode(received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func testClient(serverURL string) *Client {
	c := NewClient("test-token", "portal@parish.test", "https://portal.parish.test")
	c.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: serverURL}}
	return c
}

func TestSendDigest(t *testing.T) {
	var received postmarkEmail
	var gotToken string
	server := capturingServer(t, &received, &gotToken)
	client := testClient(server.URL)

	err := client.SendDigest("alice@parish.test", DigestData{
		Date: "2025-03-10",
		TodayTasks: []model.Task{
			{Title: "Social Media - Morning Post", Priority: model.PriorityHigh, DueTime: "09:00:00"},
		},
		OverdueTasks: []model.Task{
			{Title: "Bulletin content deadline", Priority: model.PriorityNormal, DueDate: "2025-03-05"},
		},
		PendingCount: 4,
	})
	if err != nil {
		t.Fatalf("send digest: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@parish.test" {
		t.Errorf("To = %q, want %q", received.To, "alice@parish.test")
	}
	if received.Subject != "Your tasks for 2025-03-10" {
		t.Errorf("Subject = %q, want digest subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "Social Media - Morning Post") {
		t.Errorf("text body missing today's task: %q", received.TextBody)
	}
	if !strings.Contains(received.TextBody, "at 09:00:00") {
		t.Errorf("text body missing due time: %q", received.TextBody)
	}
	if !strings.Contains(received.TextBody, "Bulletin content deadline (due 2025-03-05)") {
		t.Errorf("text body missing overdue task: %q", received.TextBody)
	}
	if !strings.Contains(received.TextBody, "4 open tasks") {
		t.Errorf("text body missing pending count: %q", received.TextBody)
	}
	if !strings.Contains(received.HtmlBody, priorityColors[model.PriorityHigh]) {
		t.Errorf("html body missing high-priority color: %q", received.HtmlBody)
	}
}

func TestSendSubmissionConfirmation(t *testing.T) {
	var received postmarkEmail
	server := capturingServer(t, &received, nil)
	client := testClient(server.URL)

	req := &model.Request{
		Type:           model.RequestAnnouncement,
		Title:          "Lenten Fish Fry",
		SubmitterName:  "Pat Doyle",
		SubmitterEmail: "pat@example.com",
		ApprovalStatus: model.ApprovalPending,
	}
	link := "https://portal.parish.test/requests/req-1/comments?token=abc"
	if err := client.SendSubmissionConfirmation(req, link); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}

	if received.To != "pat@example.com" {
		t.Errorf("To = %q, want %q", received.To, "pat@example.com")
	}
	if received.Subject != "We received your Announcement request" {
		t.Errorf("Subject = %q, want confirmation subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "requires ministry approval") {
		t.Errorf("text body missing approval notice: %q", received.TextBody)
	}
	if !strings.Contains(received.TextBody, link) {
		t.Errorf("text body missing comment link: %q", received.TextBody)
	}
}

func TestSendSubmissionConfirmationNoLink(t *testing.T) {
	var received postmarkEmail
	server := capturingServer(t, &received, nil)
	client := testClient(server.URL)

	req := &model.Request{
		Type:           model.RequestSMS,
		Title:          "Mass time change",
		SubmitterName:  "Pat Doyle",
		SubmitterEmail: "pat@example.com",
		ApprovalStatus: model.ApprovalApproved,
	}
	if err := client.SendSubmissionConfirmation(req, ""); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}

	if strings.Contains(received.TextBody, "Follow updates") {
		t.Errorf("text body should not mention a comment link: %q", received.TextBody)
	}
	if strings.Contains(received.TextBody, "ministry approval") {
		t.Errorf("approved request should not mention approval: %q", received.TextBody)
	}
}

func TestSendApprovalRequest(t *testing.T) {
	var received postmarkEmail
	server := capturingServer(t, &received, nil)
	client := testClient(server.URL)

	req := &model.Request{
		ID:             "req-9",
		Type:           model.RequestAnnouncement,
		Title:          "Youth Group Retreat",
		Ministry:       "Youth Ministry",
		SubmitterName:  "Pat Doyle",
		SubmitterEmail: "pat@example.com",
	}
	if err := client.SendApprovalRequest("approver@parish.test", req); err != nil {
		t.Fatalf("send approval request: %v", err)
	}

	if received.To != "approver@parish.test" {
		t.Errorf("To = %q, want approver", received.To)
	}
	if received.Subject != "Approval needed: Youth Group Retreat" {
		t.Errorf("Subject = %q, want approval subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "https://portal.parish.test/admin/requests/req-9") {
		t.Errorf("text body missing review link: %q", received.TextBody)
	}
}

func TestSendSummary(t *testing.T) {
	var received postmarkEmail
	server := capturingServer(t, &received, nil)
	client := testClient(server.URL)

	if err := client.SendSummary("comms@parish.test", "Request summary, 2025-03-10", "Line one\nLine two"); err != nil {
		t.Fatalf("send summary: %v", err)
	}

	if received.Subject != "Request summary, 2025-03-10" {
		t.Errorf("Subject = %q, want summary subject", received.Subject)
	}
	if !strings.Contains(received.HtmlBody, "Line one<br>Line two") {
		t.Errorf("html body should join lines with <br>: %q", received.HtmlBody)
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("", "portal@parish.test", "https://portal.parish.test")

	if client.Configured() {
		t.Error("expected Configured() = false")
	}
	if err := client.SendDigest("alice@parish.test", DigestData{Date: "2025-03-10"}); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()
	client := testClient(server.URL)

	if err := client.SendSummary("comms@parish.test", "subject", "body"); err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestTypeLabel(t *testing.T) {
	if got := TypeLabel(model.RequestFlyerReview); got != "Flyer Review" {
		t.Errorf("TypeLabel = %q, want %q", got, "Flyer Review")
	}
	if got := TypeLabel(model.RequestType("mystery")); got != "mystery" {
		t.Errorf("TypeLabel fallback = %q, want %q", got, "mystery")
	}
}
