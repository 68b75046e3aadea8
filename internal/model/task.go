package model

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Task is a concrete, dated work item. Tasks created by the generator carry
// the id of the reminder that spawned them; the reminder does not own its
// tasks and deleting it leaves them in place.
type Task struct {
	ID                  string     `json:"id"`
	UserEmail           string     `json:"user_email"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Category            string     `json:"category"`
	Priority            Priority   `json:"priority"`
	Status              TaskStatus `json:"status"`
	DueDate             string     `json:"due_date"`
	DueTime             string     `json:"due_time,omitempty"`
	LinkedRecordID      *string    `json:"linked_record_id"`
	LinkedRecordType    *string    `json:"linked_record_type"`
	RecurringReminderID *string    `json:"recurring_reminder_id"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
