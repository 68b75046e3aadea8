package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/stgabriel/parishhub/internal/database"
	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/store"
)

type recordingMailer struct {
	sent    map[string]email.DigestData
	failFor string
}

func (m *recordingMailer) SendDigest(to string, d email.DigestData) error {
	if to == m.failFor {
		return errors.New("simulated mail failure")
	}
	if m.sent == nil {
		m.sent = make(map[string]email.DigestData)
	}
	m.sent[to] = d
	return nil
}

func setupDigest(t *testing.T) (*store.UserStore, *store.TaskStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewUserStore(db), store.NewTaskStore(db)
}

func TestDigestSendsTodayAndOverdue(t *testing.T) {
	users, tasks := setupDigest(t)

	if _, err := users.Upsert("user@x.org", "User"); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	for _, due := range []string{"2025-03-10", "2025-03-01"} {
		if _, err := tasks.Create(store.CreateTaskParams{UserEmail: "user@x.org", Title: due, DueDate: due}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	mailer := &recordingMailer{}
	d := NewDigest(users, tasks, mailer, testLogger())

	result, err := d.Run(monday)
	if err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if result.EmailsSent != 1 {
		t.Fatalf("sent %d emails, want 1", result.EmailsSent)
	}
	if len(result.Results) != 1 {
		t.Fatalf("got %d result entries, want 1", len(result.Results))
	}
	entry := result.Results[0]
	if entry.Email != "user@x.org" {
		t.Errorf("entry email = %q", entry.Email)
	}
	if entry.TodayCount != 1 {
		t.Errorf("today_count = %d, want 1", entry.TodayCount)
	}
	// Overdue uses due_date <= today, so today's open task counts too.
	if entry.OverdueCount != 2 {
		t.Errorf("overdue_count = %d, want 2", entry.OverdueCount)
	}
	if entry.PendingCount != 2 {
		t.Errorf("pending_count = %d, want 2", entry.PendingCount)
	}

	data, ok := mailer.sent["user@x.org"]
	if !ok {
		t.Fatal("expected a digest email for user@x.org")
	}
	if data.Date != "2025-03-10" {
		t.Errorf("digest date = %q", data.Date)
	}
}

func TestDigestSuppressedWhenNothingDue(t *testing.T) {
	users, tasks := setupDigest(t)

	if _, err := users.Upsert("quiet@x.org", "Quiet"); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	// A future task alone is not digest-worthy.
	if _, err := tasks.Create(store.CreateTaskParams{UserEmail: "quiet@x.org", Title: "Later", DueDate: "2025-04-01"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	mailer := &recordingMailer{}
	d := NewDigest(users, tasks, mailer, testLogger())

	result, err := d.Run(monday)
	if err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if result.EmailsSent != 0 {
		t.Errorf("sent %d emails, want 0", result.EmailsSent)
	}
	if len(result.Results) != 0 {
		t.Errorf("user with nothing due should be absent from results, got %d entries", len(result.Results))
	}
	if _, ok := mailer.sent["quiet@x.org"]; ok {
		t.Error("no email should have been dispatched")
	}
}

func TestDigestOptOutSkipped(t *testing.T) {
	users, tasks := setupDigest(t)

	if _, err := users.Upsert("optout@x.org", "Opt Out"); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	if err := users.SetDigestEnabled("optout@x.org", false); err != nil {
		t.Fatalf("set digest: %v", err)
	}
	if _, err := tasks.Create(store.CreateTaskParams{UserEmail: "optout@x.org", Title: "Due", DueDate: "2025-03-10"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	mailer := &recordingMailer{}
	d := NewDigest(users, tasks, mailer, testLogger())

	result, err := d.Run(monday)
	if err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if result.EmailsSent != 0 {
		t.Errorf("sent %d emails to an opted-out user, want 0", result.EmailsSent)
	}
}

func TestDigestFailureIsolation(t *testing.T) {
	users, tasks := setupDigest(t)

	for _, u := range []string{"fails@x.org", "works@x.org"} {
		if _, err := users.Upsert(u, u); err != nil {
			t.Fatalf("upsert user: %v", err)
		}
		if _, err := tasks.Create(store.CreateTaskParams{UserEmail: u, Title: "Due", DueDate: "2025-03-10"}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	mailer := &recordingMailer{failFor: "fails@x.org"}
	d := NewDigest(users, tasks, mailer, testLogger())

	result, err := d.Run(monday)
	if err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if result.EmailsSent != 1 {
		t.Errorf("sent %d emails, want 1", result.EmailsSent)
	}
	if len(result.Errors) != 1 || result.Errors[0].Email != "fails@x.org" {
		t.Fatalf("errors = %+v, want exactly one for fails@x.org", result.Errors)
	}
	if _, ok := mailer.sent["works@x.org"]; !ok {
		t.Error("the healthy user should still receive their digest")
	}
}

func TestDigestExcludesCompletedFromToday(t *testing.T) {
	users, tasks := setupDigest(t)

	if _, err := users.Upsert("user@x.org", "User"); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	open, err := tasks.Create(store.CreateTaskParams{UserEmail: "user@x.org", Title: "Open", DueDate: "2025-03-10"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	done, err := tasks.Create(store.CreateTaskParams{UserEmail: "user@x.org", Title: "Done", DueDate: "2025-03-10"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := tasks.SetCompleted(done.ID, true, time.Now()); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	mailer := &recordingMailer{}
	d := NewDigest(users, tasks, mailer, testLogger())

	result, err := d.Run(monday)
	if err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if result.Results[0].TodayCount != 1 {
		t.Errorf("today_count = %d, want 1", result.Results[0].TodayCount)
	}
	data := mailer.sent["user@x.org"]
	if len(data.TodayTasks) != 1 || data.TodayTasks[0].ID != open.ID {
		t.Error("completed task should not appear in the digest's today list")
	}
}
