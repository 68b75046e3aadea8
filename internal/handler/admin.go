package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/stgabriel/parishhub/internal/ai"
	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/events"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/store"
)

// AdminHandler is the staff triage surface over submitted requests.
type AdminHandler struct {
	requests         *store.RequestStore
	registry         *store.Registry
	ministries       *store.MinistryStore
	mailer           *email.Client
	ai               *ai.Client
	publisher        events.Publisher
	summaryRecipient string
	logger           *slog.Logger
}

func NewAdminHandler(
	requests *store.RequestStore,
	registry *store.Registry,
	ministries *store.MinistryStore,
	mailer *email.Client,
	aiClient *ai.Client,
	publisher events.Publisher,
	summaryRecipient string,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		requests:         requests,
		registry:         registry,
		ministries:       ministries,
		mailer:           mailer,
		ai:               aiClient,
		publisher:        publisher,
		summaryRecipient: summaryRecipient,
		logger:           logger,
	}
}

// typeAccessor resolves the {type} path segment to its accessor, writing the
// client error itself when the type is unknown.
func (h *AdminHandler) typeAccessor(w http.ResponseWriter, r *http.Request) (model.RequestType, store.RecordAccessor, bool) {
	t := model.RequestType(r.PathValue("type"))
	accessor := h.registry.Lookup(t)
	if accessor == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown request type"})
		return "", nil, false
	}
	return t, accessor, true
}

// ListRequests handles GET /api/admin/requests/{type}; ?hide_completed=true
// filters out completed records.
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	t, _, ok := h.typeAccessor(w, r)
	if !ok {
		return
	}

	hideCompleted := r.URL.Query().Get("hide_completed") == "true"
	requests, err := h.requests.ListByType(t, hideCompleted)
	if err != nil {
		h.logger.Error("list requests", "type", t, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list requests"})
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// SetCompleted handles PUT /api/admin/requests/{type}/{id}/completed. The
// body's completed flag is the target state; repeating the call is a no-op.
func (h *AdminHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	t, accessor, ok := h.typeAccessor(w, r)
	if !ok {
		return
	}

	var req struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	record, err := accessor.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get request", "type", t, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get request"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
		return
	}

	if err := accessor.MarkCompleted(record.ID, req.Completed, time.Now()); err != nil {
		h.logger.Error("mark completed", "type", t, "id", record.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update request"})
		return
	}

	updated, err := accessor.GetByID(record.ID)
	if err != nil || updated == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload request"})
		return
	}

	h.publisher.Publish(events.NewMessage("request", "completed", updated.ID, map[string]any{
		"type":      string(t),
		"completed": req.Completed,
	}))
	writeJSON(w, http.StatusOK, updated)
}

// SetApproval handles PUT /api/admin/announcements/{id}/approval. Only
// announcements carry an approval workflow.
func (h *AdminHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.ApprovalStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	switch req.Status {
	case model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be pending, approved, or rejected"})
		return
	}

	accessor := h.registry.Lookup(model.RequestAnnouncement)
	record, err := accessor.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get announcement", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get announcement"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "announcement not found"})
		return
	}

	if err := h.requests.SetApprovalStatus(record.ID, req.Status); err != nil {
		h.logger.Error("set approval status", "id", record.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update approval status"})
		return
	}

	updated, err := h.requests.GetByID(record.ID)
	if err != nil || updated == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload announcement"})
		return
	}

	h.publisher.Publish(events.NewMessage("request", "approval_changed", updated.ID, map[string]any{
		"status": string(req.Status),
	}))
	writeJSON(w, http.StatusOK, updated)
}

// Summarize handles POST /api/admin/summarize. It generates an AI summary of
// the selected records and emails it to the configured internal recipient.
func (h *AdminHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	if !h.ai.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI summarization is not enabled"})
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids is required"})
		return
	}

	records, err := h.requests.ListByIDs(req.IDs)
	if err != nil {
		h.logger.Error("load requests for summary", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load requests"})
		return
	}
	if len(records) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no matching requests"})
		return
	}

	summary, err := h.ai.SummarizeRequests(records)
	if err != nil {
		h.logger.Error("summarize requests", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate summary"})
		return
	}

	if h.mailer.Configured() && h.summaryRecipient != "" {
		subject := "Request summary, " + time.Now().Format("Jan 2 2006")
		if err := h.mailer.SendSummary(h.summaryRecipient, subject, summary); err != nil {
			h.logger.Error("email summary", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "summary generated but email failed"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"count":   len(records),
	})
}

// SocialCopy handles POST /api/admin/requests/{type}/{id}/social-copy. It
// drafts social media copy for one record and returns it without persisting.
func (h *AdminHandler) SocialCopy(w http.ResponseWriter, r *http.Request) {
	if !h.ai.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI copy generation is not enabled"})
		return
	}

	t, accessor, ok := h.typeAccessor(w, r)
	if !ok {
		return
	}

	record, err := accessor.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get request", "type", t, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get request"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
		return
	}

	copyText, err := h.ai.SocialCopy(record)
	if err != nil {
		h.logger.Error("generate social copy", "id", record.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate social copy"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"copy": copyText})
}

// ListMinistries handles GET /api/admin/ministries
func (h *AdminHandler) ListMinistries(w http.ResponseWriter, r *http.Request) {
	ministries, err := h.ministries.List()
	if err != nil {
		h.logger.Error("list ministries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list ministries"})
		return
	}
	if ministries == nil {
		ministries = []model.Ministry{}
	}
	writeJSON(w, http.StatusOK, ministries)
}
