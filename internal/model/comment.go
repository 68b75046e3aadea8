package model

import "time"

// Comment is a free-text note attached to a submitted request. Comments are
// visible on the admin dashboard and, through a tokened public link, to the
// original submitter.
type Comment struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	AuthorEmail string    `json:"author_email"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
