package sheetdb

import (
	"fmt"
	"net/url"
	"time"

	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

const taskTable = "Tasks"

// TaskStore implements store.TaskRepository against the spreadsheet backend.
type TaskStore struct {
	client *Client
}

func NewTaskStore(client *Client) *TaskStore {
	return &TaskStore{client: client}
}

func taskFromRecord(rec Record) model.Task {
	f := rec.Fields
	t := model.Task{
		ID:          rec.ID,
		UserEmail:   fieldString(f, "User Email"),
		Title:       fieldString(f, "Title"),
		Description: fieldString(f, "Description"),
		Category:    fieldString(f, "Category"),
		Priority:    model.Priority(fieldString(f, "Priority")),
		Status:      model.TaskStatus(fieldString(f, "Status")),
		DueDate:     fieldString(f, "Due Date"),
		DueTime:     fieldString(f, "Due Time"),
		CompletedAt: fieldTime(f, "Completed At"),
	}
	if t.Category == "" {
		t.Category = "misc"
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNormal
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if v := fieldString(f, "Linked Record ID"); v != "" {
		t.LinkedRecordID = &v
	}
	if v := fieldString(f, "Linked Record Type"); v != "" {
		t.LinkedRecordType = &v
	}
	if v := fieldString(f, "Recurring Reminder ID"); v != "" {
		t.RecurringReminderID = &v
	}
	if created := fieldTime(f, "Created At"); created != nil {
		t.CreatedAt = *created
	}
	return t
}

func (s *TaskStore) Create(p store.CreateTaskParams) (*model.Task, error) {
	if p.Category == "" {
		p.Category = "misc"
	}
	if p.Priority == "" {
		p.Priority = model.PriorityNormal
	}

	fields := map[string]any{
		"User Email":  p.UserEmail,
		"Title":       p.Title,
		"Description": p.Description,
		"Category":    p.Category,
		"Priority":    string(p.Priority),
		"Status":      string(model.TaskPending),
		"Due Date":    p.DueDate,
		"Due Time":    p.DueTime,
		"Created At":  time.Now().UTC().Format(time.RFC3339),
	}
	if p.LinkedRecordID != nil {
		fields["Linked Record ID"] = *p.LinkedRecordID
	}
	if p.LinkedRecordType != nil {
		fields["Linked Record Type"] = *p.LinkedRecordType
	}
	if p.RecurringReminderID != nil {
		fields["Recurring Reminder ID"] = *p.RecurringReminderID
	}

	rec, err := s.client.Create(taskTable, fields)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	t := taskFromRecord(*rec)
	return &t, nil
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	rec, err := s.client.Get(taskTable, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	t := taskFromRecord(*rec)
	return &t, nil
}

func (s *TaskStore) ListByUser(email string, f store.TaskFilter) ([]model.Task, error) {
	clauses := []string{fmt.Sprintf("{User Email}='%s'", escapeFormula(email))}
	if f.Status != "" {
		clauses = append(clauses, fmt.Sprintf("{Status}='%s'", f.Status))
	} else if !f.IncludeCompleted {
		clauses = append(clauses, "{Status}!='completed'")
	}
	if f.DueDate != "" {
		clauses = append(clauses, fmt.Sprintf("{Due Date}='%s'", f.DueDate))
	}
	if f.From != "" {
		clauses = append(clauses, fmt.Sprintf("{Due Date}>='%s'", f.From))
	}
	if f.To != "" {
		clauses = append(clauses, fmt.Sprintf("{Due Date}<='%s'", f.To))
	}
	return s.list(and(clauses))
}

func (s *TaskStore) ListByUserAndDueDate(email, dueDate string) ([]model.Task, error) {
	return s.list(fmt.Sprintf("AND({User Email}='%s',{Due Date}='%s')", escapeFormula(email), dueDate))
}

func (s *TaskStore) ListOverdue(email, today string) ([]model.Task, error) {
	return s.list(fmt.Sprintf(
		"AND({User Email}='%s',{Due Date}<='%s',OR({Status}='pending',{Status}='in_progress'))",
		escapeFormula(email), today,
	))
}

func (s *TaskStore) CountOpen(email string) (int, error) {
	tasks, err := s.list(fmt.Sprintf(
		"AND({User Email}='%s',OR({Status}='pending',{Status}='in_progress'))",
		escapeFormula(email),
	))
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

func (s *TaskStore) Update(id string, p store.UpdateTaskParams) (*model.Task, error) {
	fields := map[string]any{}
	if p.Title != nil {
		fields["Title"] = *p.Title
	}
	if p.Description != nil {
		fields["Description"] = *p.Description
	}
	if p.Category != nil {
		fields["Category"] = *p.Category
	}
	if p.Priority != nil {
		fields["Priority"] = string(*p.Priority)
	}
	if p.Status != nil {
		fields["Status"] = string(*p.Status)
		if *p.Status == model.TaskCompleted {
			fields["Completed At"] = time.Now().UTC().Format(time.RFC3339)
		} else {
			fields["Completed At"] = nil
		}
	}
	if p.DueDate != nil {
		fields["Due Date"] = *p.DueDate
	}
	if p.DueTime != nil {
		fields["Due Time"] = *p.DueTime
	}

	if len(fields) == 0 {
		return s.GetByID(id)
	}

	rec, err := s.client.Update(taskTable, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	t := taskFromRecord(*rec)
	return &t, nil
}

func (s *TaskStore) SetCompleted(id string, done bool, at time.Time) (*model.Task, error) {
	fields := map[string]any{}
	if done {
		fields["Status"] = string(model.TaskCompleted)
		fields["Completed At"] = at.UTC().Format(time.RFC3339)
	} else {
		fields["Status"] = string(model.TaskPending)
		fields["Completed At"] = nil
	}

	rec, err := s.client.Update(taskTable, id, fields)
	if err != nil {
		return nil, fmt.Errorf("set task completed: %w", err)
	}
	t := taskFromRecord(*rec)
	return &t, nil
}

func (s *TaskStore) Delete(id string) error {
	if err := s.client.Delete(taskTable, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *TaskStore) list(formula string) ([]model.Task, error) {
	params := url.Values{}
	params.Set("filterByFormula", formula)

	records, err := s.client.List(taskTable, params)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var tasks []model.Task
	for _, rec := range records {
		tasks = append(tasks, taskFromRecord(rec))
	}
	return tasks, nil
}

func and(clauses []string) string {
	if len(clauses) == 1 {
		return clauses[0]
	}
	out := "AND("
	for i, c := range clauses {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out + ")"
}
