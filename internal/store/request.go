package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stgabriel/parishhub/internal/model"
)

type RequestStore struct {
	db *sql.DB
}

func NewRequestStore(db *sql.DB) *RequestStore {
	return &RequestStore{db: db}
}

const requestCols = `id, type, submitter_name, submitter_email, title, body, ministry, event_date, attachment_url, approval_status, completed, completed_at, created_at, updated_at`

func scanRequest(scanner interface{ Scan(...any) error }) (*model.Request, error) {
	var r model.Request
	var completedAt sql.NullTime

	err := scanner.Scan(
		&r.ID, &r.Type, &r.SubmitterName, &r.SubmitterEmail, &r.Title, &r.Body,
		&r.Ministry, &r.EventDate, &r.AttachmentURL, &r.ApprovalStatus,
		&r.Completed, &completedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		at := completedAt.Time
		r.CompletedAt = &at
	}
	return &r, nil
}

type CreateRequestParams struct {
	Type           model.RequestType
	SubmitterName  string
	SubmitterEmail string
	Title          string
	Body           string
	Ministry       string
	EventDate      string
	AttachmentURL  string
	ApprovalStatus model.ApprovalStatus
}

func (s *RequestStore) Create(p CreateRequestParams) (*model.Request, error) {
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = model.ApprovalApproved
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO requests (id, type, submitter_name, submitter_email, title, body, ministry, event_date, attachment_url, approval_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Type, p.SubmitterName, p.SubmitterEmail, p.Title, p.Body,
		p.Ministry, p.EventDate, p.AttachmentURL, p.ApprovalStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return s.GetByID(id)
}

func (s *RequestStore) GetByID(id string) (*model.Request, error) {
	row := s.db.QueryRow(`SELECT `+requestCols+` FROM requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (s *RequestStore) ListByType(t model.RequestType, hideCompleted bool) ([]model.Request, error) {
	query := `SELECT ` + requestCols + ` FROM requests WHERE type = ?`
	if hideCompleted {
		query += ` AND completed = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, t)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return collectRequests(rows)
}

func (s *RequestStore) ListByIDs(ids []string) ([]model.Request, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(
		`SELECT `+requestCols+` FROM requests WHERE id IN (`+placeholders+`) ORDER BY created_at DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list requests by ids: %w", err)
	}
	return collectRequests(rows)
}

// SetCompleted is an idempotent set of the completed flag, not a toggle.
func (s *RequestStore) SetCompleted(id string, done bool, at time.Time) error {
	var err error
	if done {
		_, err = s.db.Exec(
			`UPDATE requests SET completed = 1, completed_at = ?, updated_at = ? WHERE id = ?`,
			at.UTC(), at.UTC(), id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE requests SET completed = 0, completed_at = NULL, updated_at = ? WHERE id = ?`,
			at.UTC(), id,
		)
	}
	if err != nil {
		return fmt.Errorf("set request completed: %w", err)
	}
	return nil
}

func (s *RequestStore) SetApprovalStatus(id string, status model.ApprovalStatus) error {
	_, err := s.db.Exec(
		`UPDATE requests SET approval_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set approval status: %w", err)
	}
	return nil
}

func collectRequests(rows *sql.Rows) ([]model.Request, error) {
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}
