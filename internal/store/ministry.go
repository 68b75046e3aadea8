package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stgabriel/parishhub/internal/model"
)

type MinistryStore struct {
	db *sql.DB
}

func NewMinistryStore(db *sql.DB) *MinistryStore {
	return &MinistryStore{db: db}
}

const ministryCols = `id, name, requires_approval, approver_email, created_at, updated_at`

func scanMinistry(scanner interface{ Scan(...any) error }) (*model.Ministry, error) {
	var m model.Ministry
	err := scanner.Scan(&m.ID, &m.Name, &m.RequiresApproval, &m.ApproverEmail, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MinistryStore) List() ([]model.Ministry, error) {
	rows, err := s.db.Query(`SELECT ` + ministryCols + ` FROM ministries ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ministries: %w", err)
	}
	defer rows.Close()

	var ministries []model.Ministry
	for rows.Next() {
		m, err := scanMinistry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ministry: %w", err)
		}
		ministries = append(ministries, *m)
	}
	return ministries, rows.Err()
}

func (s *MinistryStore) GetByName(name string) (*model.Ministry, error) {
	row := s.db.QueryRow(`SELECT `+ministryCols+` FROM ministries WHERE name = ?`, name)
	m, err := scanMinistry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ministry: %w", err)
	}
	return m, nil
}

func (s *MinistryStore) Create(name string, requiresApproval bool, approverEmail string) (*model.Ministry, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO ministries (id, name, requires_approval, approver_email) VALUES (?, ?, ?, ?)`,
		id, name, requiresApproval, approverEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ministry: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+ministryCols+` FROM ministries WHERE id = ?`, id)
	return scanMinistry(row)
}

func (s *MinistryStore) Update(id, name string, requiresApproval bool, approverEmail string) (*model.Ministry, error) {
	_, err := s.db.Exec(
		`UPDATE ministries SET name = ?, requires_approval = ?, approver_email = ?, updated_at = ? WHERE id = ?`,
		name, requiresApproval, approverEmail, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update ministry: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+ministryCols+` FROM ministries WHERE id = ?`, id)
	m, err := scanMinistry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ministry: %w", err)
	}
	return m, nil
}
