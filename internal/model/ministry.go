package model

import "time"

// Ministry is a parish group that announcements can be submitted on behalf
// of. Ministries flagged requires_approval route new announcements through
// the configured approver before publication.
type Ministry struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	RequiresApproval bool      `json:"requires_approval"`
	ApproverEmail    string    `json:"approver_email,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
