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

// CommentHandler attaches free-text comments to submitted requests. Staff
// read and write through the admin routes; the original submitter reads
// through a tokened public link issued at submission time.
type CommentHandler struct {
	comments  *store.CommentStore
	requests  *store.RequestStore
	publisher events.Publisher
	secret    []byte
	logger    *slog.Logger
}

func NewCommentHandler(comments *store.CommentStore, requests *store.RequestStore, publisher events.Publisher, secret []byte, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments:  comments,
		requests:  requests,
		publisher: publisher,
		secret:    secret,
		logger:    logger,
	}
}

// Create handles POST /api/admin/requests/{type}/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}

	record, err := h.requests.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get request"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
		return
	}

	comment, err := h.comments.Create(record.ID, auth.Email(r.Context()), req.Body)
	if err != nil {
		h.logger.Error("create comment", "request_id", record.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create comment"})
		return
	}

	h.publisher.Publish(events.NewMessage("comment", "created", comment.ID, map[string]any{
		"request_id": record.ID,
	}))
	writeJSON(w, http.StatusCreated, comment)
}

// List handles GET /api/admin/requests/{type}/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	record, err := h.requests.GetByID(idParam(r))
	if err != nil {
		h.logger.Error("get request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get request"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
		return
	}

	h.writeComments(w, record.ID)
}

// PublicList handles GET /requests/{id}/comments?token=... The token is the
// signed comment link from the submission confirmation; it is only valid for
// the request it was issued for.
func (h *CommentHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token is required"})
		return
	}

	requestID, err := auth.VerifyCommentLink(token, h.secret)
	if err != nil || requestID != idParam(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}

	record, err := h.requests.GetByID(requestID)
	if err != nil {
		h.logger.Error("get request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get request"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
		return
	}

	h.writeComments(w, record.ID)
}

func (h *CommentHandler) writeComments(w http.ResponseWriter, requestID string) {
	comments, err := h.comments.ListByRequest(requestID)
	if err != nil {
		h.logger.Error("list comments", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list comments"})
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}
