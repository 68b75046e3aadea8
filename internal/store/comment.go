package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/stgabriel/parishhub/internal/model"
)

type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentCols = `id, request_id, author_email, body, created_at`

func scanComment(scanner interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	err := scanner.Scan(&c.ID, &c.RequestID, &c.AuthorEmail, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) Create(requestID, authorEmail, body string) (*model.Comment, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO comments (id, request_id, author_email, body) VALUES (?, ?, ?, ?)`,
		id, requestID, authorEmail, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+commentCols+` FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *CommentStore) ListByRequest(requestID string) ([]model.Comment, error) {
	rows, err := s.db.Query(
		`SELECT `+commentCols+` FROM comments WHERE request_id = ? ORDER BY created_at ASC`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (s *CommentStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
