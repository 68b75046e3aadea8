package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stgabriel/parishhub/internal/auth"
	"github.com/stgabriel/parishhub/internal/cadence"
	"github.com/stgabriel/parishhub/internal/events"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

type TaskHandler struct {
	tasks     store.TaskRepository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewTaskHandler(tasks store.TaskRepository, publisher events.Publisher, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, publisher: publisher, logger: logger}
}

type taskRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	Priority         string  `json:"priority"`
	DueDate          string  `json:"due_date"`
	DueTime          string  `json:"due_time"`
	LinkedRecordID   *string `json:"linked_record_id"`
	LinkedRecordType *string `json:"linked_record_type"`
}

func validDate(s string) bool {
	_, err := time.Parse(cadence.DateLayout, s)
	return err == nil
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.DueDate == "" || !validDate(req.DueDate) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "due_date is required as YYYY-MM-DD"})
		return
	}

	task, err := h.tasks.Create(store.CreateTaskParams{
		UserEmail:        auth.Email(r.Context()),
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Priority:         model.Priority(req.Priority),
		DueDate:          req.DueDate,
		DueTime:          req.DueTime,
		LinkedRecordID:   req.LinkedRecordID,
		LinkedRecordType: req.LinkedRecordType,
	})
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	h.publisher.Publish(events.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /api/tasks. Query parameters: status, due_date, from, to,
// include_completed. Completed tasks are excluded unless asked for.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		Status:           model.TaskStatus(q.Get("status")),
		DueDate:          q.Get("due_date"),
		From:             q.Get("from"),
		To:               q.Get("to"),
		IncludeCompleted: q.Get("include_completed") == "true",
	}

	tasks, err := h.tasks.ListByUser(auth.Email(r.Context()), filter)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) owned(w http.ResponseWriter, r *http.Request) *model.Task {
	task, err := h.tasks.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return nil
	}
	if task == nil || task.UserEmail != auth.Email(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return nil
	}
	return task
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task := h.owned(w, r)
	if task == nil {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type taskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
	DueTime     *string `json:"due_time"`
}

// Update handles PATCH /api/tasks/{id}. Absent fields are left unchanged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title cannot be empty"})
		return
	}
	if req.DueDate != nil && !validDate(*req.DueDate) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "due_date must be YYYY-MM-DD"})
		return
	}
	if req.Status != nil && !model.TaskStatus(*req.Status).Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be pending, in_progress, or completed"})
		return
	}

	params := store.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		params.Priority = &p
	}
	if req.Status != nil {
		s := model.TaskStatus(*req.Status)
		params.Status = &s
	}

	task, err := h.tasks.Update(existing.ID, params)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.publisher.Publish(events.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

// Complete handles POST /api/tasks/{id}/complete. The body's completed flag
// is an idempotent target state, not a toggle; it defaults to true.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	completed := true
	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	task, err := h.tasks.SetCompleted(existing.ID, completed, time.Now())
	if err != nil {
		h.logger.Error("set task completed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	action := "completed"
	if !completed {
		action = "reopened"
	}
	h.publisher.Publish(events.NewMessage("task", action, task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	if err := h.tasks.Delete(existing.ID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}

	h.publisher.Publish(events.NewMessage("task", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
