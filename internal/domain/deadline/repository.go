package deadline

import (
	"context"
	"time"
)

// SentNotification is a durable record that a notification went out.
type SentNotification struct {
	UserID   string           `json:"user_id"`
	ReviewID string           `json:"review_id"`
	Type     NotificationType `json:"notification_type"`
	SentAt   time.Time        `json:"sent_at"`
}

// NotificationRepository stores the once-per-(user, review, type) records.
type NotificationRepository interface {
	// Claim atomically records the notification and reports false when it
	// was already recorded.
	Claim(ctx context.Context, userID, reviewID string, t NotificationType) (bool, error)
	// Release removes a claim whose delivery failed so it can be retried.
	Release(ctx context.Context, userID, reviewID string, t NotificationType) error
	ListByReview(ctx context.Context, reviewID string) ([]SentNotification, error)
}
