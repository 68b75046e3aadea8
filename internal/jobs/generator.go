// Package jobs holds the portal's daily batch jobs. Each job is a single
// stateless pass: per-item failures are collected into the result rather
// than aborting the batch, and only a failure of the initial fetch is
// returned as an error.
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stgabriel/parishhub/internal/cadence"
	"github.com/stgabriel/parishhub/internal/events"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

// GeneratedTask identifies one task the generator created.
type GeneratedTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UserEmail string `json:"userEmail"`
}

// GeneratorError records a per-reminder failure.
type GeneratorError struct {
	ReminderID string `json:"reminderId"`
	Message    string `json:"message"`
}

// GeneratorResult summarizes one generator run. The field names form the
// response contract of the scheduled-trigger endpoint.
type GeneratorResult struct {
	Date           string           `json:"date"`
	DayOfWeek      int              `json:"dayOfWeek"`
	TotalReminders int              `json:"totalReminders"`
	TasksCreated   int              `json:"tasksCreated"`
	Tasks          []GeneratedTask  `json:"tasks"`
	Errors         []GeneratorError `json:"errors"`
}

// TaskNotifier is told how many tasks a run created per user. Push delivery
// satisfies it in production; tests pass nil.
type TaskNotifier interface {
	NotifyTasksGenerated(userEmail string, count int)
}

// Generator expands due reminders into today's tasks.
type Generator struct {
	reminders store.ReminderRepository
	tasks     store.TaskRepository
	publisher events.Publisher
	notifier  TaskNotifier
	logger    *slog.Logger
}

func NewGenerator(reminders store.ReminderRepository, tasks store.TaskRepository, publisher events.Publisher, notifier TaskNotifier, logger *slog.Logger) *Generator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Generator{
		reminders: reminders,
		tasks:     tasks,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Run generates tasks for the calendar day of now. Re-running for the same
// day is safe: a reminder that already has a task due today is skipped, so
// duplicate or overlapping invocations cannot double-create.
func (g *Generator) Run(now time.Time) (*GeneratorResult, error) {
	result := &GeneratorResult{
		Date:      cadence.DateString(now),
		DayOfWeek: cadence.DayOfWeek(now),
	}

	daily, err := g.reminders.ListActiveDaily()
	if err != nil {
		return nil, fmt.Errorf("fetch daily reminders: %w", err)
	}
	weekly, err := g.reminders.ListActiveWeekly(result.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("fetch weekly reminders: %w", err)
	}

	// Daily first, then weekly-for-today. The order defines processing
	// order only, not priority.
	due := append(daily, weekly...)
	result.TotalReminders = len(due)

	createdPerUser := make(map[string]int)

	for _, reminder := range due {
		// The store queries already filter by cadence; this guards against
		// a stale row from the spreadsheet backend.
		if !cadence.Matches(reminder, now) {
			continue
		}

		created, err := g.generateOne(reminder, result.Date, now)
		if err != nil {
			g.logger.Error("generate task", "reminder_id", reminder.ID, "error", err)
			result.Errors = append(result.Errors, GeneratorError{
				ReminderID: reminder.ID,
				Message:    err.Error(),
			})
			continue
		}
		if created == nil {
			// Already generated today; nothing to do.
			continue
		}

		result.Tasks = append(result.Tasks, GeneratedTask{
			ID:        created.ID,
			Title:     created.Title,
			UserEmail: created.UserEmail,
		})
		result.TasksCreated++
		createdPerUser[created.UserEmail]++
	}

	if g.notifier != nil {
		for userEmail, count := range createdPerUser {
			g.notifier.NotifyTasksGenerated(userEmail, count)
		}
	}

	g.publisher.Publish(events.NewMessage("tasks", "generated", "", map[string]any{
		"date":    result.Date,
		"created": result.TasksCreated,
	}))

	g.logger.Info("generator run complete",
		"date", result.Date,
		"reminders", result.TotalReminders,
		"created", result.TasksCreated,
		"errors", len(result.Errors),
	)

	return result, nil
}

// generateOne creates today's task for the reminder unless one already
// exists. It returns (nil, nil) when the task was generated by an earlier
// run.
func (g *Generator) generateOne(reminder model.RecurringReminder, today string, now time.Time) (*model.Task, error) {
	existing, err := g.tasks.ListByUserAndDueDate(reminder.UserEmail, today)
	if err != nil {
		return nil, fmt.Errorf("check existing tasks: %w", err)
	}
	for _, t := range existing {
		if t.RecurringReminderID != nil && *t.RecurringReminderID == reminder.ID {
			return nil, nil
		}
	}

	priority := reminder.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}

	reminderID := reminder.ID
	task, err := g.tasks.Create(store.CreateTaskParams{
		UserEmail:           reminder.UserEmail,
		Title:               reminder.Title,
		Description:         reminder.Description,
		Category:            reminder.Category,
		Priority:            priority,
		DueDate:             today,
		DueTime:             reminder.TimeOfDay,
		RecurringReminderID: &reminderID,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	// Advisory bookkeeping only: a failure here must not undo the created
	// task, so it is logged and otherwise ignored.
	if err := g.reminders.SetLastGeneratedAt(reminder.ID, now); err != nil {
		g.logger.Warn("set last generated", "reminder_id", reminder.ID, "error", err)
	}

	return task, nil
}
