package sheetdb

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

const reminderTable = "Recurring Reminders"

// ReminderStore implements store.ReminderRepository against the spreadsheet
// backend.
type ReminderStore struct {
	client *Client
}

func NewReminderStore(client *Client) *ReminderStore {
	return &ReminderStore{client: client}
}

func reminderFromRecord(rec Record) model.RecurringReminder {
	f := rec.Fields
	r := model.RecurringReminder{
		ID:              rec.ID,
		UserEmail:       fieldString(f, "User Email"),
		Title:           fieldString(f, "Title"),
		Description:     fieldString(f, "Description"),
		Category:        fieldString(f, "Category"),
		Frequency:       model.Frequency(fieldString(f, "Frequency")),
		DayOfWeek:       fieldInt(f, "Day of Week"),
		DayOfMonth:      fieldInt(f, "Day of Month"),
		TimeOfDay:       fieldString(f, "Time of Day"),
		Priority:        model.Priority(fieldString(f, "Priority")),
		IsActive:        fieldBool(f, "Active"),
		LastGeneratedAt: fieldTime(f, "Last Generated At"),
	}
	if r.Category == "" {
		r.Category = "misc"
	}
	if r.Priority == "" {
		r.Priority = model.PriorityNormal
	}
	if created := fieldTime(f, "Created At"); created != nil {
		r.CreatedAt = *created
	}
	return r
}

func (s *ReminderStore) Create(p store.CreateReminderParams) (*model.RecurringReminder, error) {
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
		"Frequency":   string(p.Frequency),
		"Time of Day": p.TimeOfDay,
		"Priority":    string(p.Priority),
		"Active":      true,
		"Created At":  time.Now().UTC().Format(time.RFC3339),
	}
	if p.DayOfWeek != nil {
		fields["Day of Week"] = *p.DayOfWeek
	}
	if p.DayOfMonth != nil {
		fields["Day of Month"] = *p.DayOfMonth
	}

	rec, err := s.client.Create(reminderTable, fields)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	r := reminderFromRecord(*rec)
	return &r, nil
}

func (s *ReminderStore) GetByID(id string) (*model.RecurringReminder, error) {
	rec, err := s.client.Get(reminderTable, id)
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	r := reminderFromRecord(*rec)
	return &r, nil
}

func (s *ReminderStore) ListByUser(email string, activeOnly bool) ([]model.RecurringReminder, error) {
	formula := fmt.Sprintf("{User Email}='%s'", escapeFormula(email))
	if activeOnly {
		formula = fmt.Sprintf("AND(%s,{Active}=1)", formula)
	}
	return s.list(formula)
}

func (s *ReminderStore) ListActiveDaily() ([]model.RecurringReminder, error) {
	return s.list("AND({Active}=1,{Frequency}='daily')")
}

func (s *ReminderStore) ListActiveWeekly(dayOfWeek int) ([]model.RecurringReminder, error) {
	return s.list(fmt.Sprintf("AND({Active}=1,{Frequency}='weekly',{Day of Week}=%d)", dayOfWeek))
}

func (s *ReminderStore) CountByUser(email string) (int, error) {
	reminders, err := s.ListByUser(email, false)
	if err != nil {
		return 0, err
	}
	return len(reminders), nil
}

func (s *ReminderStore) Update(id string, p store.UpdateReminderParams) (*model.RecurringReminder, error) {
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
	if p.Frequency != nil {
		fields["Frequency"] = string(*p.Frequency)
		if *p.Frequency == model.FrequencyDaily && p.DayOfWeek == nil {
			fields["Day of Week"] = nil
		}
	}
	if p.DayOfWeek != nil {
		fields["Day of Week"] = *p.DayOfWeek
	}
	if p.DayOfMonth != nil {
		fields["Day of Month"] = *p.DayOfMonth
	}
	if p.TimeOfDay != nil {
		fields["Time of Day"] = *p.TimeOfDay
	}
	if p.Priority != nil {
		fields["Priority"] = string(*p.Priority)
	}
	if p.IsActive != nil {
		fields["Active"] = *p.IsActive
	}

	if len(fields) == 0 {
		return s.GetByID(id)
	}

	rec, err := s.client.Update(reminderTable, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	r := reminderFromRecord(*rec)
	return &r, nil
}

func (s *ReminderStore) SetLastGeneratedAt(id string, at time.Time) error {
	_, err := s.client.Update(reminderTable, id, map[string]any{
		"Last Generated At": at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("set last generated: %w", err)
	}
	return nil
}

func (s *ReminderStore) Delete(id string) error {
	if err := s.client.Delete(reminderTable, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func (s *ReminderStore) list(formula string) ([]model.RecurringReminder, error) {
	params := url.Values{}
	params.Set("filterByFormula", formula)

	records, err := s.client.List(reminderTable, params)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}

	var reminders []model.RecurringReminder
	for _, rec := range records {
		reminders = append(reminders, reminderFromRecord(rec))
	}
	return reminders, nil
}

func escapeFormula(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
