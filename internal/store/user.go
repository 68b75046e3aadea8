package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stgabriel/parishhub/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `email, name, role, digest_enabled, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.Email, &u.Name, &u.Role, &u.DigestEnabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the user row on first sight of a verified identity token,
// or refreshes the display name on later logins. Role and digest preference
// are never overwritten by a token.
func (s *UserStore) Upsert(email, name string) (*model.User, error) {
	_, err := s.db.Exec(
		`INSERT INTO users (email, name) VALUES (?, ?)
		 ON CONFLICT(email) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP`,
		email, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetByEmail(email)
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListDigestEnabled() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users WHERE digest_enabled = 1 ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list digest users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) SetDigestEnabled(email string, enabled bool) error {
	_, err := s.db.Exec(
		`UPDATE users SET digest_enabled = ?, updated_at = ? WHERE email = ?`,
		enabled, time.Now().UTC(), email,
	)
	if err != nil {
		return fmt.Errorf("set digest enabled: %w", err)
	}
	return nil
}

func (s *UserStore) SetRole(email, role string) error {
	_, err := s.db.Exec(
		`UPDATE users SET role = ?, updated_at = ? WHERE email = ?`,
		role, time.Now().UTC(), email,
	)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}
