package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stgabriel/parishhub/internal/cadence"
	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

// DigestMailer sends one rendered digest. The Postmark client satisfies it;
// tests substitute a recorder.
type DigestMailer interface {
	SendDigest(to string, d email.DigestData) error
}

// DigestEntry describes one digest that was actually sent.
type DigestEntry struct {
	Email        string `json:"email"`
	TodayCount   int    `json:"todayCount"`
	OverdueCount int    `json:"overdueCount"`
	PendingCount int    `json:"pendingCount"`
}

// DigestError records a per-user failure.
type DigestError struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// DigestResult summarizes one digest run. The field names form the response
// contract of the scheduled-trigger endpoint.
type DigestResult struct {
	Date       string        `json:"date"`
	EmailsSent int           `json:"emailsSent"`
	Results    []DigestEntry `json:"results"`
	Errors     []DigestError `json:"errors"`
}

// Digest emails each opted-in user their tasks for the day.
type Digest struct {
	users  *store.UserStore
	tasks  store.TaskRepository
	mailer DigestMailer
	logger *slog.Logger
}

func NewDigest(users *store.UserStore, tasks store.TaskRepository, mailer DigestMailer, logger *slog.Logger) *Digest {
	return &Digest{
		users:  users,
		tasks:  tasks,
		mailer: mailer,
		logger: logger,
	}
}

// Run sends the daily digest for the calendar day of now. Users with nothing
// due today and nothing overdue are skipped entirely. A failure for one user
// is recorded and does not stop the rest of the run.
func (d *Digest) Run(now time.Time) (*DigestResult, error) {
	result := &DigestResult{Date: cadence.DateString(now)}

	recipients, err := d.users.ListDigestEnabled()
	if err != nil {
		return nil, fmt.Errorf("fetch digest recipients: %w", err)
	}

	for _, user := range recipients {
		entry, err := d.sendOne(user.Email, result.Date)
		if err != nil {
			d.logger.Error("send digest", "email", user.Email, "error", err)
			result.Errors = append(result.Errors, DigestError{
				Email:   user.Email,
				Message: err.Error(),
			})
			continue
		}
		if entry == nil {
			// Nothing due and nothing overdue.
			continue
		}
		result.Results = append(result.Results, *entry)
		result.EmailsSent++
	}

	d.logger.Info("digest run complete",
		"date", result.Date,
		"recipients", len(recipients),
		"sent", result.EmailsSent,
		"errors", len(result.Errors),
	)

	return result, nil
}

// sendOne builds and sends the digest for a single user. It returns
// (nil, nil) when the user has no tasks worth a digest.
func (d *Digest) sendOne(userEmail, today string) (*DigestEntry, error) {
	dueToday, err := d.tasks.ListByUserAndDueDate(userEmail, today)
	if err != nil {
		return nil, fmt.Errorf("fetch today's tasks: %w", err)
	}
	todayTasks := dueToday[:0:0]
	for _, t := range dueToday {
		if t.Status != model.TaskCompleted {
			todayTasks = append(todayTasks, t)
		}
	}
	overdue, err := d.tasks.ListOverdue(userEmail, today)
	if err != nil {
		return nil, fmt.Errorf("fetch overdue tasks: %w", err)
	}

	if len(todayTasks) == 0 && len(overdue) == 0 {
		return nil, nil
	}

	pending, err := d.tasks.CountOpen(userEmail)
	if err != nil {
		return nil, fmt.Errorf("count open tasks: %w", err)
	}

	data := email.DigestData{
		Date:         today,
		TodayTasks:   todayTasks,
		OverdueTasks: overdue,
		PendingCount: pending,
	}
	if err := d.mailer.SendDigest(userEmail, data); err != nil {
		return nil, fmt.Errorf("send digest email: %w", err)
	}

	return &DigestEntry{
		Email:        userEmail,
		TodayCount:   len(todayTasks),
		OverdueCount: len(overdue),
		PendingCount: pending,
	}, nil
}
