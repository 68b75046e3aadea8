package model

import "time"

// User is a staff account mirrored from the identity provider. Rows are
// created the first time a verified token for the email is seen; the portal
// never issues credentials itself.
type User struct {
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	DigestEnabled bool      `json:"digest_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
