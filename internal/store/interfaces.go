package store

import (
	"time"

	"github.com/stgabriel/parishhub/internal/model"
)

// ReminderRepository and TaskRepository abstract where reminder and task rows
// live. The SQLite stores in this package are the primary implementation; the
// legacy spreadsheet backend in internal/sheetdb implements the same
// contracts and is selected at startup by configuration. Callers depend only
// on these interfaces.

type CreateReminderParams struct {
	UserEmail   string
	Title       string
	Description string
	Category    string
	Frequency   model.Frequency
	DayOfWeek   *int
	DayOfMonth  *int
	TimeOfDay   string
	Priority    model.Priority
}

// UpdateReminderParams carries a partial edit; nil fields are left unchanged.
type UpdateReminderParams struct {
	Title       *string
	Description *string
	Category    *string
	Frequency   *model.Frequency
	DayOfWeek   *int
	DayOfMonth  *int
	TimeOfDay   *string
	Priority    *model.Priority
	IsActive    *bool
}

type ReminderRepository interface {
	Create(p CreateReminderParams) (*model.RecurringReminder, error)
	GetByID(id string) (*model.RecurringReminder, error)
	ListByUser(email string, activeOnly bool) ([]model.RecurringReminder, error)
	ListActiveDaily() ([]model.RecurringReminder, error)
	ListActiveWeekly(dayOfWeek int) ([]model.RecurringReminder, error)
	CountByUser(email string) (int, error)
	Update(id string, p UpdateReminderParams) (*model.RecurringReminder, error)
	SetLastGeneratedAt(id string, at time.Time) error
	Delete(id string) error
}

type CreateTaskParams struct {
	UserEmail           string
	Title               string
	Description         string
	Category            string
	Priority            model.Priority
	DueDate             string
	DueTime             string
	LinkedRecordID      *string
	LinkedRecordType    *string
	RecurringReminderID *string
}

// UpdateTaskParams carries a partial edit; nil fields are left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *model.Priority
	Status      *model.TaskStatus
	DueDate     *string
	DueTime     *string
}

// TaskFilter narrows a task listing. The zero value lists open tasks only;
// completed rows are included when IncludeCompleted is set or when Status
// explicitly asks for them.
type TaskFilter struct {
	Status           model.TaskStatus
	DueDate          string
	From             string
	To               string
	IncludeCompleted bool
}

type TaskRepository interface {
	Create(p CreateTaskParams) (*model.Task, error)
	GetByID(id string) (*model.Task, error)
	ListByUser(email string, f TaskFilter) ([]model.Task, error)
	ListByUserAndDueDate(email, dueDate string) ([]model.Task, error)
	ListOverdue(email, today string) ([]model.Task, error)
	CountOpen(email string) (int, error)
	Update(id string, p UpdateTaskParams) (*model.Task, error)
	SetCompleted(id string, done bool, at time.Time) (*model.Task, error)
	Delete(id string) error
}
