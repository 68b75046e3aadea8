package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stgabriel/parishhub/internal/auth"
	"github.com/stgabriel/parishhub/internal/events"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

type ReminderHandler struct {
	reminders store.ReminderRepository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewReminderHandler(reminders store.ReminderRepository, publisher events.Publisher, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, publisher: publisher, logger: logger}
}

type reminderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	DayOfWeek   *int   `json:"day_of_week"`
	DayOfMonth  *int   `json:"day_of_month"`
	TimeOfDay   string `json:"time_of_day"`
	Priority    string `json:"priority"`
}

func validCadence(frequency string, dayOfWeek *int) string {
	switch model.Frequency(frequency) {
	case model.FrequencyDaily:
		return ""
	case model.FrequencyWeekly:
		if dayOfWeek == nil {
			return "day_of_week is required for weekly reminders"
		}
		if *dayOfWeek < 0 || *dayOfWeek > 6 {
			return "day_of_week must be between 0 and 6"
		}
		return ""
	}
	return "frequency must be daily or weekly"
}

// Create handles POST /api/reminders
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return
	}
	if msg := validCadence(req.Frequency, req.DayOfWeek); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	reminder, err := h.reminders.Create(store.CreateReminderParams{
		UserEmail:   auth.Email(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Frequency:   model.Frequency(req.Frequency),
		DayOfWeek:   req.DayOfWeek,
		DayOfMonth:  req.DayOfMonth,
		TimeOfDay:   req.TimeOfDay,
		Priority:    model.Priority(req.Priority),
	})
	if err != nil {
		h.logger.Error("create reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create reminder"})
		return
	}

	h.publisher.Publish(events.NewMessage("reminder", "created", reminder.ID, nil))
	writeJSON(w, http.StatusCreated, reminder)
}

// List handles GET /api/reminders; ?active=true limits to active reminders.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	reminders, err := h.reminders.ListByUser(auth.Email(r.Context()), activeOnly)
	if err != nil {
		h.logger.Error("list reminders", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reminders"})
		return
	}
	if reminders == nil {
		reminders = []model.RecurringReminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// owned fetches the reminder and enforces ownership. A reminder belonging to
// a different user is reported as not found, never as forbidden.
func (h *ReminderHandler) owned(w http.ResponseWriter, r *http.Request) *model.RecurringReminder {
	reminder, err := h.reminders.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get reminder"})
		return nil
	}
	if reminder == nil || reminder.UserEmail != auth.Email(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reminder not found"})
		return nil
	}
	return reminder
}

// Get handles GET /api/reminders/{id}
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	reminder := h.owned(w, r)
	if reminder == nil {
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

type reminderUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Frequency   *string `json:"frequency"`
	DayOfWeek   *int    `json:"day_of_week"`
	DayOfMonth  *int    `json:"day_of_month"`
	TimeOfDay   *string `json:"time_of_day"`
	Priority    *string `json:"priority"`
	IsActive    *bool   `json:"is_active"`
}

// Update handles PATCH /api/reminders/{id}. Absent fields are left unchanged.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	var req reminderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title cannot be empty"})
		return
	}
	if req.Frequency != nil {
		// Validate against the day already stored when the edit does not
		// change it.
		day := existing.DayOfWeek
		if req.DayOfWeek != nil {
			day = req.DayOfWeek
		}
		if msg := validCadence(*req.Frequency, day); msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}
	} else if req.DayOfWeek != nil && (*req.DayOfWeek < 0 || *req.DayOfWeek > 6) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day_of_week must be between 0 and 6"})
		return
	}

	params := store.UpdateReminderParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DayOfWeek:   req.DayOfWeek,
		DayOfMonth:  req.DayOfMonth,
		TimeOfDay:   req.TimeOfDay,
		IsActive:    req.IsActive,
	}
	if req.Frequency != nil {
		f := model.Frequency(*req.Frequency)
		params.Frequency = &f
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		params.Priority = &p
	}

	reminder, err := h.reminders.Update(existing.ID, params)
	if err != nil {
		h.logger.Error("update reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update reminder"})
		return
	}

	h.publisher.Publish(events.NewMessage("reminder", "updated", reminder.ID, nil))
	writeJSON(w, http.StatusOK, reminder)
}

// Delete handles DELETE /api/reminders/{id}
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	if err := h.reminders.Delete(existing.ID); err != nil {
		h.logger.Error("delete reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete reminder"})
		return
	}

	h.publisher.Publish(events.NewMessage("reminder", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// defaultReminders is the starter set installed by Seed.
var defaultReminders = []store.CreateReminderParams{
	{
		Title:     "Social Media - Morning Post",
		Category:  "announcement",
		Frequency: model.FrequencyDaily,
		TimeOfDay: "09:00:00",
		Priority:  model.PriorityNormal,
	},
	{
		Title:     "Check request inbox",
		Category:  "misc",
		Frequency: model.FrequencyDaily,
		TimeOfDay: "10:00:00",
		Priority:  model.PriorityNormal,
	},
	{
		Title:       "Bulletin content deadline",
		Description: "Collect announcements and finalize the weekend bulletin.",
		Category:    "announcement",
		Frequency:   model.FrequencyWeekly,
		DayOfWeek:   intPtr(3),
		TimeOfDay:   "12:00:00",
		Priority:    model.PriorityHigh,
	},
	{
		Title:       "Website weekend update",
		Description: "Refresh the homepage banner and mass schedule for the weekend.",
		Category:    "website",
		Frequency:   model.FrequencyWeekly,
		DayOfWeek:   intPtr(5),
		Priority:    model.PriorityNormal,
	},
	{
		Title:     "A/V setup check",
		Category:  "av",
		Frequency: model.FrequencyWeekly,
		DayOfWeek: intPtr(6),
		TimeOfDay: "15:00:00",
		Priority:  model.PriorityHigh,
	},
}

func intPtr(n int) *int { return &n }

// Seed handles POST /api/reminders/seed. It installs the default reminder
// set once; a user who already has any reminders is refused.
func (h *ReminderHandler) Seed(w http.ResponseWriter, r *http.Request) {
	userEmail := auth.Email(r.Context())

	count, err := h.reminders.CountByUser(userEmail)
	if err != nil {
		h.logger.Error("count reminders", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check existing reminders"})
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "reminders already exist for this user"})
		return
	}

	var created []model.RecurringReminder
	for _, params := range defaultReminders {
		params.UserEmail = userEmail
		reminder, err := h.reminders.Create(params)
		if err != nil {
			h.logger.Error("seed reminder", "title", params.Title, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to seed reminders"})
			return
		}
		created = append(created, *reminder)
	}

	h.publisher.Publish(events.NewMessage("reminder", "seeded", "", map[string]any{"count": len(created)}))
	writeJSON(w, http.StatusCreated, created)
}
