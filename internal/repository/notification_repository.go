package repository

import (
	"database/sql"
	"fmt"
)

// NotificationRepository handles LINE follower ids and the delivery log
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// SaveLineUser registers a LINE user id. Re-follows are a no-op.
func (r *NotificationRepository) SaveLineUser(userID string) error {
	if _, err := r.db.Exec(
		"INSERT INTO line_users (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING",
		userID,
	); err != nil {
		return fmt.Errorf("failed to save line user: %w", err)
	}
	return nil
}

// RemoveLineUser deletes a user id after an unfollow event
func (r *NotificationRepository) RemoveLineUser(userID string) error {
	if _, err := r.db.Exec("DELETE FROM line_users WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to remove line user: %w", err)
	}
	return nil
}

// GetLineUserIDs returns every registered follower id
func (r *NotificationRepository) GetLineUserIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT user_id FROM line_users ORDER BY registered_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query line users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan line user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LogDelivery records one delivery attempt for a property
func (r *NotificationRepository) LogDelivery(propertyID int64, status string) error {
	if _, err := r.db.Exec(
		"INSERT INTO notification_log (property_id, status) VALUES (?, ?)",
		propertyID, status,
	); err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	return nil
}
