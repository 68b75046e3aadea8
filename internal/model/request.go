package model

import "time"

// RequestType identifies one of the submission forms. The set is closed;
// handlers resolve behavior through a registry rather than branching on raw
// strings.
type RequestType string

const (
	RequestAnnouncement  RequestType = "announcement"
	RequestWebsiteUpdate RequestType = "website_update"
	RequestSMS           RequestType = "sms"
	RequestAV            RequestType = "av"
	RequestFlyerReview   RequestType = "flyer_review"
	RequestGraphicDesign RequestType = "graphic_design"
)

// RequestTypes lists every submission type in display order.
var RequestTypes = []RequestType{
	RequestAnnouncement,
	RequestWebsiteUpdate,
	RequestSMS,
	RequestAV,
	RequestFlyerReview,
	RequestGraphicDesign,
}

// Valid reports whether t is one of the known request types.
func (t RequestType) Valid() bool {
	switch t {
	case RequestAnnouncement, RequestWebsiteUpdate, RequestSMS, RequestAV,
		RequestFlyerReview, RequestGraphicDesign:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Request is one submitted form of any type. Type-specific fields are
// nullable; required fields are enforced per type at intake.
type Request struct {
	ID             string         `json:"id"`
	Type           RequestType    `json:"type"`
	SubmitterName  string         `json:"submitter_name"`
	SubmitterEmail string         `json:"submitter_email"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Ministry       string         `json:"ministry,omitempty"`
	EventDate      string         `json:"event_date,omitempty"`
	AttachmentURL  string         `json:"attachment_url,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	Completed      bool           `json:"completed"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
