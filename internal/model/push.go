package model

import "time"

// Notification type constants
const (
	NotifTypeNewSubmission  = "new_submission"
	NotifTypeTasksGenerated = "tasks_generated"
)

// PushSubscription is one browser push endpoint registered by a staff user.
type PushSubscription struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"user_email"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
