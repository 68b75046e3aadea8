package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stgabriel/parishhub/internal/auth"
	"github.com/stgabriel/parishhub/internal/blob"
	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/events"
	"github.com/stgabriel/parishhub/internal/model"
	"github.com/stgabriel/parishhub/internal/push"
	"github.com/stgabriel/parishhub/internal/store"
)

// maxUploadBytes caps a single attachment upload.
const maxUploadBytes = 10 << 20

// IntakeHandler accepts the public submission forms, one handler per
// request type. Each submission persists one record, emails the submitter a
// confirmation with their comment link, and, for announcements tied to a
// ministry that requires approval, emails the approver and parks the record
// as pending. There is no rollback across persistence and email: a record
// that saved but whose email failed stays saved.
type IntakeHandler struct {
	requests   *store.RequestStore
	ministries *store.MinistryStore
	mailer     *email.Client
	uploader   *blob.Uploader
	publisher  events.Publisher
	notifier   *push.Notifier
	secret     []byte
	baseURL    string
	logger     *slog.Logger
}

func NewIntakeHandler(
	requests *store.RequestStore,
	ministries *store.MinistryStore,
	mailer *email.Client,
	uploader *blob.Uploader,
	publisher events.Publisher,
	notifier *push.Notifier,
	secret []byte,
	baseURL string,
	logger *slog.Logger,
) *IntakeHandler {
	return &IntakeHandler{
		requests:   requests,
		ministries: ministries,
		mailer:     mailer,
		uploader:   uploader,
		publisher:  publisher,
		notifier:   notifier,
		secret:     secret,
		baseURL:    baseURL,
		logger:     logger,
	}
}

type submissionRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Ministry  string `json:"ministry"`
	EventDate string `json:"event_date"`
}

func (s *submissionRequest) trim() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Title = strings.TrimSpace(s.Title)
	s.Body = strings.TrimSpace(s.Body)
	s.Ministry = strings.TrimSpace(s.Ministry)
	s.EventDate = strings.TrimSpace(s.EventDate)
}

// missing returns the name of the first absent field from want, checked in
// order. Name and email are always required.
func (s *submissionRequest) missing(want ...string) string {
	if s.Name == "" {
		return "name"
	}
	if s.Email == "" {
		return "email"
	}
	for _, field := range want {
		var v string
		switch field {
		case "title":
			v = s.Title
		case "body":
			v = s.Body
		case "event_date":
			v = s.EventDate
		}
		if v == "" {
			return field
		}
	}
	return ""
}

// SubmitAnnouncement handles POST /api/submit/announcement
func (h *IntakeHandler) SubmitAnnouncement(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.decode(w, r, "title", "body", "event_date")
	if !ok {
		return
	}

	approval := model.ApprovalApproved
	var approverEmail string
	if sub.Ministry != "" {
		ministry, err := h.ministries.GetByName(sub.Ministry)
		if err != nil {
			h.logger.Error("look up ministry", "ministry", sub.Ministry, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check ministry"})
			return
		}
		if ministry != nil && ministry.RequiresApproval {
			approval = model.ApprovalPending
			approverEmail = ministry.ApproverEmail
		}
	}

	req, ok := h.persist(w, model.RequestAnnouncement, sub, "", approval)
	if !ok {
		return
	}

	if approverEmail != "" && h.mailer.Configured() {
		if err := h.mailer.SendApprovalRequest(approverEmail, req); err != nil {
			h.logger.Error("send approval request", "request_id", req.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "submission saved but approver notification failed"})
			return
		}
	}

	h.finish(w, req)
}

// SubmitWebsiteUpdate handles POST /api/submit/website-update
func (h *IntakeHandler) SubmitWebsiteUpdate(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.decode(w, r, "title", "body")
	if !ok {
		return
	}
	req, ok := h.persist(w, model.RequestWebsiteUpdate, sub, "", model.ApprovalApproved)
	if !ok {
		return
	}
	h.finish(w, req)
}

// SubmitSMS handles POST /api/submit/sms
func (h *IntakeHandler) SubmitSMS(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.decode(w, r, "body")
	if !ok {
		return
	}
	req, ok := h.persist(w, model.RequestSMS, sub, "", model.ApprovalApproved)
	if !ok {
		return
	}
	h.finish(w, req)
}

// SubmitAV handles POST /api/submit/av
func (h *IntakeHandler) SubmitAV(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.decode(w, r, "body", "event_date")
	if !ok {
		return
	}
	req, ok := h.persist(w, model.RequestAV, sub, "", model.ApprovalApproved)
	if !ok {
		return
	}
	h.finish(w, req)
}

// SubmitFlyerReview handles POST /api/submit/flyer-review (multipart; the
// flyer file is required).
func (h *IntakeHandler) SubmitFlyerReview(w http.ResponseWriter, r *http.Request) {
	sub, attachmentURL, ok := h.decodeMultipart(w, r, true)
	if !ok {
		return
	}
	req, ok := h.persist(w, model.RequestFlyerReview, sub, attachmentURL, model.ApprovalApproved)
	if !ok {
		return
	}
	h.finish(w, req)
}

// SubmitGraphicDesign handles POST /api/submit/graphic-design (multipart;
// a reference file is optional).
func (h *IntakeHandler) SubmitGraphicDesign(w http.ResponseWriter, r *http.Request) {
	sub, attachmentURL, ok := h.decodeMultipart(w, r, false)
	if !ok {
		return
	}
	if sub.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}
	req, ok := h.persist(w, model.RequestGraphicDesign, sub, attachmentURL, model.ApprovalApproved)
	if !ok {
		return
	}
	h.finish(w, req)
}

func (h *IntakeHandler) decode(w http.ResponseWriter, r *http.Request, required ...string) (submissionRequest, bool) {
	var sub submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return sub, false
	}
	sub.trim()
	if field := sub.missing(required...); field != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": field + " is required"})
		return sub, false
	}
	return sub, true
}

func (h *IntakeHandler) decodeMultipart(w http.ResponseWriter, r *http.Request, fileRequired bool) (submissionRequest, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return submissionRequest{}, "", false
	}

	sub := submissionRequest{
		Name:      r.FormValue("name"),
		Email:     r.FormValue("email"),
		Title:     r.FormValue("title"),
		Body:      r.FormValue("body"),
		Ministry:  r.FormValue("ministry"),
		EventDate: r.FormValue("event_date"),
	}
	sub.trim()
	if field := sub.missing(); field != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": field + " is required"})
		return sub, "", false
	}

	file, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		if fileRequired {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "attachment is required"})
			return sub, "", false
		}
		return sub, "", true
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid attachment"})
		return sub, "", false
	}
	defer file.Close()

	if !h.uploader.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "file uploads are not enabled"})
		return sub, "", false
	}

	url, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		h.logger.Error("upload attachment", "filename", header.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store attachment"})
		return sub, "", false
	}
	return sub, url, true
}

func (h *IntakeHandler) persist(w http.ResponseWriter, t model.RequestType, sub submissionRequest, attachmentURL string, approval model.ApprovalStatus) (*model.Request, bool) {
	req, err := h.requests.Create(store.CreateRequestParams{
		Type:           t,
		SubmitterName:  sub.Name,
		SubmitterEmail: sub.Email,
		Title:          sub.Title,
		Body:           sub.Body,
		Ministry:       sub.Ministry,
		EventDate:      sub.EventDate,
		AttachmentURL:  attachmentURL,
		ApprovalStatus: approval,
	})
	if err != nil {
		h.logger.Error("create request", "type", t, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save submission"})
		return nil, false
	}
	return req, true
}

// finish sends the confirmation email, notifies staff, publishes the change
// event, and writes the created record.
func (h *IntakeHandler) finish(w http.ResponseWriter, req *model.Request) {
	if h.mailer.Configured() {
		if err := h.mailer.SendSubmissionConfirmation(req, h.commentLink(req.ID)); err != nil {
			h.logger.Error("send confirmation", "request_id", req.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "submission saved but confirmation email failed"})
			return
		}
	}

	if h.notifier != nil {
		h.notifier.NotifyNewSubmission(req, email.TypeLabel(req.Type))
	}
	h.publisher.Publish(events.NewMessage("request", "created", req.ID, map[string]any{"type": string(req.Type)}))

	writeJSON(w, http.StatusCreated, req)
}

// commentLink builds the tokened public URL a submitter uses to read and
// follow comments on their request.
func (h *IntakeHandler) commentLink(requestID string) string {
	token, err := auth.SignCommentLink(requestID, h.secret, time.Now())
	if err != nil {
		h.logger.Error("sign comment link", "request_id", requestID, "error", err)
		return ""
	}
	return fmt.Sprintf("%s/requests/%s/comments?token=%s", h.baseURL, requestID, token)
}
