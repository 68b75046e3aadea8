package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/stgabriel/parishhub/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushCols = `id, user_email, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var s model.PushSubscription
	err := scanner.Scan(&s.ID, &s.UserEmail, &s.Endpoint, &s.P256dhKey, &s.AuthKey, &s.DeviceName, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert registers a push endpoint, replacing any prior registration of the
// same endpoint (browsers re-subscribe with fresh keys).
func (s *PushStore) Upsert(userEmail, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (id, user_email, endpoint, p256dh_key, auth_key, device_name) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET user_email = excluded.user_email, p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key, device_name = excluded.device_name`,
		id, userEmail, endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+pushCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByUser(email string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+pushCols+` FROM push_subscriptions WHERE user_email = ? ORDER BY created_at ASC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

// ListAdmins returns subscriptions belonging to admin users.
func (s *PushStore) ListAdmins() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.user_email, p.endpoint, p.p256dh_key, p.auth_key, p.device_name, p.created_at
		 FROM push_subscriptions p JOIN users u ON u.email = p.user_email
		 WHERE u.role = 'admin' ORDER BY p.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list admin subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

func (s *PushStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription by endpoint: %w", err)
	}
	return nil
}

func collectSubscriptions(rows *sql.Rows) ([]model.PushSubscription, error) {
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}
