package deadline

import "context"

// CheckResult is the outcome of one threshold check.
type CheckResult struct {
	Info     Info               `json:"deadline"`
	ReviewID string             `json:"review_id,omitempty"`
	Sent     []SentNotification `json:"sent,omitempty"`
}

// SweepResult summarizes a pass over every user with an open review.
type SweepResult struct {
	Checked int `json:"checked"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

type DeadlineService interface {
	// Info computes the deadline for userID without side effects.
	Info(ctx context.Context, userID string) (Info, error)
	// Check computes the deadline and fires any due notification once.
	Check(ctx context.Context, userID string) (CheckResult, error)
	// Sweep runs Check for every user whose active review is still open.
	Sweep(ctx context.Context) (SweepResult, error)
}
