package cron

import (
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
)

const RefreshTokenCleanupJob = "refresh_token_cleanup"

// TokenJobs contains session housekeeping jobs
type TokenJobs struct {
	authService auth.AuthService
}

func NewTokenJobs(authService auth.AuthService) *TokenJobs {
	return &TokenJobs{authService: authService}
}

// RegisterJobs registers all token-related cron jobs
func (j *TokenJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(
		RefreshTokenCleanupJob,
		6*time.Hour,
		5*time.Minute,
		j.authService.CleanupExpiredTokens,
	)
}
