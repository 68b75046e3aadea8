package jobs

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stgabriel/parishhub/internal/database"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStores(t *testing.T) (*store.ReminderStore, *store.TaskStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewReminderStore(db), store.NewTaskStore(db)
}

func intp(n int) *int { return &n }

// monday is 2025-03-10, a Monday.
var monday = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func TestGeneratorEndToEnd(t *testing.T) {
	reminders, tasks := setupStores(t)

	r, err := reminders.Create(store.CreateReminderParams{
		UserEmail: "user@x.org",
		Title:     "Social Media - Morning Post",
		Category:  "announcement",
		Frequency: model.FrequencyDaily,
		TimeOfDay: "09:00:00",
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	g := NewGenerator(reminders, tasks, nil, nil, testLogger())

	result, err := g.Run(monday)
	if err != nil {
		t.Fatalf("run generator: %v", err)
	}
	if result.Date != "2025-03-10" {
		t.Errorf("date = %q, want 2025-03-10", result.Date)
	}
	if result.DayOfWeek != 1 {
		t.Errorf("day_of_week = %d, want 1", result.DayOfWeek)
	}
	if result.TotalReminders != 1 || result.TasksCreated != 1 {
		t.Fatalf("considered %d, created %d; want 1 and 1", result.TotalReminders, result.TasksCreated)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	created, err := tasks.ListByUserAndDueDate("user@x.org", "2025-03-10")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("got %d tasks, want 1", len(created))
	}
	task := created[0]
	if task.DueDate != "2025-03-10" {
		t.Errorf("due_date = %q, want 2025-03-10", task.DueDate)
	}
	if task.DueTime != "09:00:00" {
		t.Errorf("due_time = %q, want 09:00:00", task.DueTime)
	}
	if task.Status != model.TaskPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.RecurringReminderID == nil || *task.RecurringReminderID != r.ID {
		t.Error("task should reference the reminder that spawned it")
	}

	updated, err := reminders.GetByID(r.ID)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if updated.LastGeneratedAt == nil {
		t.Error("expected last_generated_at set after a successful run")
	}

	// Re-running for the same day creates nothing further.
	second, err := g.Run(monday)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.TasksCreated != 0 {
		t.Errorf("second run created %d tasks, want 0", second.TasksCreated)
	}
	if second.TotalReminders != 1 {
		t.Errorf("second run considered %d reminders, want 1", second.TotalReminders)
	}

	after, err := tasks.ListByUserAndDueDate("user@x.org", "2025-03-10")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("got %d tasks after rerun, want exactly 1", len(after))
	}
}

func TestGeneratorWeeklyCadence(t *testing.T) {
	reminders, tasks := setupStores(t)

	if _, err := reminders.Create(store.CreateReminderParams{
		UserEmail: "user@x.org",
		Title:     "Bulletin deadline",
		Category:  "announcement",
		Frequency: model.FrequencyWeekly,
		DayOfWeek: intp(3),
	}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	g := NewGenerator(reminders, tasks, nil, nil, testLogger())

	// Monday: the Wednesday reminder is not even considered.
	result, err := g.Run(monday)
	if err != nil {
		t.Fatalf("run on monday: %v", err)
	}
	if result.TotalReminders != 0 || result.TasksCreated != 0 {
		t.Fatalf("monday run considered %d, created %d; want 0 and 0", result.TotalReminders, result.TasksCreated)
	}

	wednesday := monday.AddDate(0, 0, 2)
	result, err = g.Run(wednesday)
	if err != nil {
		t.Fatalf("run on wednesday: %v", err)
	}
	if result.TasksCreated != 1 {
		t.Fatalf("wednesday run created %d tasks, want 1", result.TasksCreated)
	}
}

func TestGeneratorInactiveExcluded(t *testing.T) {
	reminders, tasks := setupStores(t)

	r, err := reminders.Create(store.CreateReminderParams{
		UserEmail: "user@x.org",
		Title:     "Paused",
		Category:  "misc",
		Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	inactive := false
	if _, err := reminders.Update(r.ID, store.UpdateReminderParams{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate reminder: %v", err)
	}

	g := NewGenerator(reminders, tasks, nil, nil, testLogger())
	result, err := g.Run(monday)
	if err != nil {
		t.Fatalf("run generator: %v", err)
	}
	if result.TotalReminders != 0 || result.TasksCreated != 0 {
		t.Fatalf("inactive reminder was considered (%d) or expanded (%d)", result.TotalReminders, result.TasksCreated)
	}
}

// failingTaskRepo fails Create for one reminder's title and delegates
// everything else.
type failingTaskRepo struct {
	store.TaskRepository
	failTitle string
}

func (f *failingTaskRepo) Create(p store.CreateTaskParams) (*model.Task, error) {
	if p.Title == f.failTitle {
		return nil, errors.New("simulated write failure")
	}
	return f.TaskRepository.Create(p)
}

func TestGeneratorFailureIsolation(t *testing.T) {
	reminders, tasks := setupStores(t)

	bad, err := reminders.Create(store.CreateReminderParams{
		UserEmail: "user@x.org", Title: "Breaks", Category: "misc", Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	if _, err := reminders.Create(store.CreateReminderParams{
		UserEmail: "user@x.org", Title: "Works", Category: "misc", Frequency: model.FrequencyDaily,
	}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	g := NewGenerator(reminders, &failingTaskRepo{TaskRepository: tasks, failTitle: "Breaks"}, nil, nil, testLogger())

	result, err := g.Run(monday)
	if err != nil {
		t.Fatalf("run generator: %v", err)
	}
	if result.TasksCreated != 1 {
		t.Errorf("created %d tasks, want 1", result.TasksCreated)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}
	if result.Errors[0].ReminderID != bad.ID {
		t.Errorf("error reminder id = %q, want %q", result.Errors[0].ReminderID, bad.ID)
	}
	if len(result.Tasks) != 1 || result.Tasks[0].Title != "Works" {
		t.Fatal("the healthy reminder should still have produced its task")
	}
}

// flakyBookkeepingRepo fails SetLastGeneratedAt and delegates everything
// else.
type flakyBookkeepingRepo struct {
	store.ReminderRepository
}

func (f *flakyBookkeepingRepo) SetLastGeneratedAt(id string, at time.Time) error {
	return errors.New("simulated bookkeeping failure")
}

func TestGeneratorAdvisoryBookkeepingFailureIgnored(t *testing.T) {
	reminders, tasks := setupStores(t)

	if _, err := reminders.Create(store.CreateReminderParams{
		UserEmail: "user@x.org", Title: "Daily", Category: "misc", Frequency: model.FrequencyDaily,
	}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	g := NewGenerator(&flakyBookkeepingRepo{ReminderRepository: reminders}, tasks, nil, nil, testLogger())

	result, err := g.Run(monday)
	if err != nil {
		t.Fatalf("run generator: %v", err)
	}
	if result.TasksCreated != 1 {
		t.Errorf("created %d tasks, want 1 despite bookkeeping failure", result.TasksCreated)
	}
	if len(result.Errors) != 0 {
		t.Errorf("bookkeeping failure must not be a per-reminder error, got %v", result.Errors)
	}
}

type countingNotifier struct {
	calls map[string]int
}

func (c *countingNotifier) NotifyTasksGenerated(userEmail string, count int) {
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[userEmail] += count
}

func TestGeneratorNotifiesPerUser(t *testing.T) {
	reminders, tasks := setupStores(t)

	for _, p := range []store.CreateReminderParams{
		{UserEmail: "a@x.org", Title: "A1", Category: "misc", Frequency: model.FrequencyDaily},
		{UserEmail: "a@x.org", Title: "A2", Category: "misc", Frequency: model.FrequencyDaily},
		{UserEmail: "b@x.org", Title: "B1", Category: "misc", Frequency: model.FrequencyDaily},
	} {
		if _, err := reminders.Create(p); err != nil {
			t.Fatalf("create reminder: %v", err)
		}
	}

	notifier := &countingNotifier{}
	g := NewGenerator(reminders, tasks, nil, notifier, testLogger())

	if _, err := g.Run(monday); err != nil {
		t.Fatalf("run generator: %v", err)
	}
	if notifier.calls["a@x.org"] != 2 {
		t.Errorf("a@x.org notified for %d tasks, want 2", notifier.calls["a@x.org"])
	}
	if notifier.calls["b@x.org"] != 1 {
		t.Errorf("b@x.org notified for %d tasks, want 1", notifier.calls["b@x.org"])
	}
}
