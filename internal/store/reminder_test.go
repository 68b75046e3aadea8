package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stgabriel/parishhub/internal/database"
	"github.com/stgabriel/parishhub/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intp(n int) *int { return &n }

func TestReminderCreate(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com",
		Title:     "Morning Post",
		Category:  "announcement",
		Frequency: model.FrequencyDaily,
		TimeOfDay: "09:00:00",
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	if r.ID == "" {
		t.Error("expected non-empty ID")
	}
	if r.Priority != model.PriorityNormal {
		t.Errorf("priority = %q, want %q", r.Priority, model.PriorityNormal)
	}
	if !r.IsActive {
		t.Error("expected new reminder to be active")
	}
	if r.LastGeneratedAt != nil {
		t.Error("expected nil last_generated_at on creation")
	}
}

func TestReminderGetByIDNotFound(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.GetByID("no-such-id")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if r != nil {
		t.Error("expected nil for nonexistent reminder")
	}
}

func TestReminderListByUser(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	mk := func(email, title string) {
		t.Helper()
		if _, err := rs.Create(CreateReminderParams{
			UserEmail: email, Title: title, Category: "misc", Frequency: model.FrequencyDaily,
		}); err != nil {
			t.Fatalf("create reminder: %v", err)
		}
	}
	mk("alice@example.com", "A1")
	mk("alice@example.com", "A2")
	mk("bob@example.com", "B1")

	reminders, err := rs.ListByUser("alice@example.com", false)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(reminders) != 2 {
		t.Fatalf("got %d reminders, want 2", len(reminders))
	}
	for _, r := range reminders {
		if r.UserEmail != "alice@example.com" {
			t.Errorf("user_email = %q, want alice@example.com", r.UserEmail)
		}
	}
}

func TestReminderListByUserActiveOnly(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "Active", Category: "misc", Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	r2, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "Inactive", Category: "misc", Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	inactive := false
	if _, err := rs.Update(r2.ID, UpdateReminderParams{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate reminder: %v", err)
	}

	reminders, err := rs.ListByUser("alice@example.com", true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(reminders) != 1 || reminders[0].ID != r.ID {
		t.Fatalf("expected only the active reminder, got %d", len(reminders))
	}
}

func TestReminderCadenceQueries(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	if _, err := rs.Create(CreateReminderParams{
		UserEmail: "a@x.org", Title: "Daily", Category: "misc", Frequency: model.FrequencyDaily,
	}); err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if _, err := rs.Create(CreateReminderParams{
		UserEmail: "a@x.org", Title: "Wednesday", Category: "misc",
		Frequency: model.FrequencyWeekly, DayOfWeek: intp(3),
	}); err != nil {
		t.Fatalf("create weekly: %v", err)
	}
	if _, err := rs.Create(CreateReminderParams{
		UserEmail: "a@x.org", Title: "Friday", Category: "misc",
		Frequency: model.FrequencyWeekly, DayOfWeek: intp(5),
	}); err != nil {
		t.Fatalf("create weekly: %v", err)
	}

	daily, err := rs.ListActiveDaily()
	if err != nil {
		t.Fatalf("list daily: %v", err)
	}
	if len(daily) != 1 || daily[0].Title != "Daily" {
		t.Fatalf("ListActiveDaily returned %d rows", len(daily))
	}

	wed, err := rs.ListActiveWeekly(3)
	if err != nil {
		t.Fatalf("list weekly: %v", err)
	}
	if len(wed) != 1 || wed[0].Title != "Wednesday" {
		t.Fatalf("ListActiveWeekly(3) returned %d rows", len(wed))
	}

	mon, err := rs.ListActiveWeekly(1)
	if err != nil {
		t.Fatalf("list weekly: %v", err)
	}
	if len(mon) != 0 {
		t.Fatalf("ListActiveWeekly(1) returned %d rows, want 0", len(mon))
	}
}

func TestReminderPartialUpdate(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "Before", Description: "keep me",
		Category: "misc", Frequency: model.FrequencyWeekly, DayOfWeek: intp(2),
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	title := "After"
	updated, err := rs.Update(r.ID, UpdateReminderParams{Title: &title})
	if err != nil {
		t.Fatalf("update reminder: %v", err)
	}
	if updated.Title != "After" {
		t.Errorf("title = %q, want After", updated.Title)
	}
	if updated.Description != "keep me" {
		t.Errorf("description = %q, want unchanged", updated.Description)
	}
	if updated.DayOfWeek == nil || *updated.DayOfWeek != 2 {
		t.Error("day_of_week should be unchanged by partial update")
	}
}

func TestReminderUpdateToDailyClearsDayOfWeek(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "Weekly", Category: "misc",
		Frequency: model.FrequencyWeekly, DayOfWeek: intp(4),
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	daily := model.FrequencyDaily
	updated, err := rs.Update(r.ID, UpdateReminderParams{Frequency: &daily})
	if err != nil {
		t.Fatalf("update reminder: %v", err)
	}
	if updated.Frequency != model.FrequencyDaily {
		t.Errorf("frequency = %q, want daily", updated.Frequency)
	}
	if updated.DayOfWeek != nil {
		t.Errorf("day_of_week = %v, want nil after switch to daily", *updated.DayOfWeek)
	}
}

func TestReminderSetLastGeneratedAt(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "Daily", Category: "misc", Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	at := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	if err := rs.SetLastGeneratedAt(r.ID, at); err != nil {
		t.Fatalf("set last generated: %v", err)
	}

	got, err := rs.GetByID(r.ID)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if got.LastGeneratedAt == nil {
		t.Fatal("expected last_generated_at to be set")
	}
	if !got.LastGeneratedAt.Equal(at) {
		t.Errorf("last_generated_at = %v, want %v", got.LastGeneratedAt, at)
	}
}

func TestReminderCountByUser(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	n, err := rs.CountByUser("alice@example.com")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}

	if _, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "One", Category: "misc", Frequency: model.FrequencyDaily,
	}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	n, err = rs.CountByUser("alice@example.com")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestReminderDelete(t *testing.T) {
	rs := NewReminderStore(setupTestDB(t))

	r, err := rs.Create(CreateReminderParams{
		UserEmail: "alice@example.com", Title: "Gone", Category: "misc", Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	if err := rs.Delete(r.ID); err != nil {
		t.Fatalf("delete reminder: %v", err)
	}

	got, err := rs.GetByID(r.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
