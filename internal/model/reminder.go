package model

import "time"

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// RecurringReminder is a template for recurring work. It is never itself
// completable; the generator expands it into dated tasks.
type RecurringReminder struct {
	ID              string     `json:"id"`
	UserEmail       string     `json:"user_email"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Frequency       Frequency  `json:"frequency"`
	DayOfWeek       *int       `json:"day_of_week"`
	DayOfMonth      *int       `json:"day_of_month"`
	TimeOfDay       string     `json:"time_of_day,omitempty"`
	Priority        Priority   `json:"priority"`
	IsActive        bool       `json:"is_active"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
