package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stgabriel/parishhub/internal/model"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

const reminderCols = `id, user_email, title, description, category, frequency, day_of_week, day_of_month, time_of_day, priority, is_active, last_generated_at, created_at, updated_at`

func scanReminder(scanner interface{ Scan(...any) error }) (*model.RecurringReminder, error) {
	var r model.RecurringReminder
	var dayOfWeek, dayOfMonth sql.NullInt64
	var lastGenerated sql.NullTime

	err := scanner.Scan(
		&r.ID, &r.UserEmail, &r.Title, &r.Description, &r.Category,
		&r.Frequency, &dayOfWeek, &dayOfMonth, &r.TimeOfDay, &r.Priority,
		&r.IsActive, &lastGenerated, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dayOfWeek.Valid {
		v := int(dayOfWeek.Int64)
		r.DayOfWeek = &v
	}
	if dayOfMonth.Valid {
		v := int(dayOfMonth.Int64)
		r.DayOfMonth = &v
	}
	if lastGenerated.Valid {
		t := lastGenerated.Time
		r.LastGeneratedAt = &t
	}
	return &r, nil
}

func (s *ReminderStore) Create(p CreateReminderParams) (*model.RecurringReminder, error) {
	if p.Category == "" {
		p.Category = "misc"
	}
	if p.Priority == "" {
		p.Priority = model.PriorityNormal
	}

	var dow, dom sql.NullInt64
	if p.DayOfWeek != nil {
		dow = sql.NullInt64{Int64: int64(*p.DayOfWeek), Valid: true}
	}
	if p.DayOfMonth != nil {
		dom = sql.NullInt64{Int64: int64(*p.DayOfMonth), Valid: true}
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO recurring_reminders (id, user_email, title, description, category, frequency, day_of_week, day_of_month, time_of_day, priority) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.UserEmail, p.Title, p.Description, p.Category, p.Frequency, dow, dom, p.TimeOfDay, p.Priority,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) GetByID(id string) (*model.RecurringReminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM recurring_reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) ListByUser(email string, activeOnly bool) ([]model.RecurringReminder, error) {
	query := `SELECT ` + reminderCols + ` FROM recurring_reminders WHERE user_email = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return collectReminders(rows)
}

func (s *ReminderStore) ListActiveDaily() ([]model.RecurringReminder, error) {
	rows, err := s.db.Query(
		`SELECT ` + reminderCols + ` FROM recurring_reminders WHERE is_active = 1 AND frequency = 'daily' ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily reminders: %w", err)
	}
	return collectReminders(rows)
}

func (s *ReminderStore) ListActiveWeekly(dayOfWeek int) ([]model.RecurringReminder, error) {
	rows, err := s.db.Query(
		`SELECT `+reminderCols+` FROM recurring_reminders WHERE is_active = 1 AND frequency = 'weekly' AND day_of_week = ? ORDER BY created_at ASC`,
		dayOfWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("list weekly reminders: %w", err)
	}
	return collectReminders(rows)
}

func (s *ReminderStore) CountByUser(email string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM recurring_reminders WHERE user_email = ?`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return n, nil
}

func (s *ReminderStore) Update(id string, p UpdateReminderParams) (*model.RecurringReminder, error) {
	var sets []string
	var args []any

	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.Frequency != nil {
		set("frequency", *p.Frequency)
		if *p.Frequency == model.FrequencyDaily && p.DayOfWeek == nil {
			set("day_of_week", nil)
		}
	}
	if p.DayOfWeek != nil {
		set("day_of_week", *p.DayOfWeek)
	}
	if p.DayOfMonth != nil {
		set("day_of_month", *p.DayOfMonth)
	}
	if p.TimeOfDay != nil {
		set("time_of_day", *p.TimeOfDay)
	}
	if p.Priority != nil {
		set("priority", *p.Priority)
	}
	if p.IsActive != nil {
		set("is_active", *p.IsActive)
	}

	if len(sets) == 0 {
		return s.GetByID(id)
	}

	set("updated_at", time.Now().UTC())
	args = append(args, id)

	_, err := s.db.Exec(
		`UPDATE recurring_reminders SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) SetLastGeneratedAt(id string, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE recurring_reminders SET last_generated_at = ? WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set last generated: %w", err)
	}
	return nil
}

func (s *ReminderStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM recurring_reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func collectReminders(rows *sql.Rows) ([]model.RecurringReminder, error) {
	defer rows.Close()

	var reminders []model.RecurringReminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}
