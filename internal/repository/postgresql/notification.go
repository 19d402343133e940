package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) deadline.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

// Claim implements deadline.NotificationRepository. The unique constraint on
// (user_id, review_id, notification_type) makes concurrent claims safe.
func (r *notificationRepositoryImpl) Claim(ctx context.Context, userID, reviewID string, t deadline.NotificationType) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		INSERT INTO email_notifications (user_id, review_id, notification_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, review_id, notification_type) DO NOTHING
	`, userID, reviewID, string(t))
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release implements deadline.NotificationRepository.
func (r *notificationRepositoryImpl) Release(ctx context.Context, userID, reviewID string, t deadline.NotificationType) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		DELETE FROM email_notifications
		WHERE user_id = $1 AND review_id = $2 AND notification_type = $3
	`, userID, reviewID, string(t))
	if err != nil {
		return fmt.Errorf("failed to release notification: %w", err)
	}
	return nil
}

// ListByReview implements deadline.NotificationRepository.
func (r *notificationRepositoryImpl) ListByReview(ctx context.Context, reviewID string) ([]deadline.SentNotification, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT user_id, review_id, notification_type, sent_at
		FROM email_notifications
		WHERE review_id = $1
		ORDER BY sent_at
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	sent := make([]deadline.SentNotification, 0)
	for rows.Next() {
		var n deadline.SentNotification
		if err := rows.Scan(&n.UserID, &n.ReviewID, &n.Type, &n.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		sent = append(sent, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return sent, nil
}
