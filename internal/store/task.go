package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stgabriel/parishhub/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, user_email, title, description, category, priority, status, due_date, due_time, linked_record_id, linked_record_type, recurring_reminder_id, completed_at, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var linkedID, linkedType, reminderID sql.NullString
	var completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.UserEmail, &t.Title, &t.Description, &t.Category,
		&t.Priority, &t.Status, &t.DueDate, &t.DueTime,
		&linkedID, &linkedType, &reminderID, &completedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if linkedID.Valid {
		t.LinkedRecordID = &linkedID.String
	}
	if linkedType.Valid {
		t.LinkedRecordType = &linkedType.String
	}
	if reminderID.Valid {
		t.RecurringReminderID = &reminderID.String
	}
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	return &t, nil
}

func (s *TaskStore) Create(p CreateTaskParams) (*model.Task, error) {
	if p.Category == "" {
		p.Category = "misc"
	}
	if p.Priority == "" {
		p.Priority = model.PriorityNormal
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, user_email, title, description, category, priority, due_date, due_time, linked_record_id, linked_record_type, recurring_reminder_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.UserEmail, p.Title, p.Description, p.Category, p.Priority,
		p.DueDate, p.DueTime, nullString(p.LinkedRecordID), nullString(p.LinkedRecordType), nullString(p.RecurringReminderID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByUser(email string, f TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE user_email = ?`
	args := []any{email}

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	} else if !f.IncludeCompleted {
		query += ` AND status != 'completed'`
	}
	if f.DueDate != "" {
		query += ` AND due_date = ?`
		args = append(args, f.DueDate)
	}
	if f.From != "" {
		query += ` AND due_date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND due_date <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY due_date ASC, due_time ASC, created_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *TaskStore) ListByUserAndDueDate(email, dueDate string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE user_email = ? AND due_date = ? ORDER BY due_time ASC, created_at ASC`,
		email, dueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by due date: %w", err)
	}
	return collectTasks(rows)
}

func (s *TaskStore) ListOverdue(email, today string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE user_email = ? AND due_date <= ? AND status IN ('pending', 'in_progress') ORDER BY due_date ASC, due_time ASC`,
		email, today,
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *TaskStore) CountOpen(email string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE user_email = ? AND status IN ('pending', 'in_progress')`,
		email,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open tasks: %w", err)
	}
	return n, nil
}

func (s *TaskStore) Update(id string, p UpdateTaskParams) (*model.Task, error) {
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
	if p.Priority != nil {
		set("priority", *p.Priority)
	}
	if p.Status != nil {
		set("status", *p.Status)
		if *p.Status == model.TaskCompleted {
			set("completed_at", time.Now().UTC())
		} else {
			set("completed_at", nil)
		}
	}
	if p.DueDate != nil {
		set("due_date", *p.DueDate)
	}
	if p.DueTime != nil {
		set("due_time", *p.DueTime)
	}

	if len(sets) == 0 {
		return s.GetByID(id)
	}

	set("updated_at", time.Now().UTC())
	args = append(args, id)

	_, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// SetCompleted marks the task completed or reopens it. Completing sets
// completed_at; reopening returns the task to pending and clears it. The
// operation is an idempotent set, not a toggle.
func (s *TaskStore) SetCompleted(id string, done bool, at time.Time) (*model.Task, error) {
	var err error
	if done {
		_, err = s.db.Exec(
			`UPDATE tasks SET status = 'completed', completed_at = ?, updated_at = ? WHERE id = ?`,
			at.UTC(), at.UTC(), id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE tasks SET status = 'pending', completed_at = NULL, updated_at = ? WHERE id = ?`,
			at.UTC(), id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set task completed: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
