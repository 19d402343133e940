package auth

import "context"

// TokenRepository persists hashed refresh tokens so they can be revoked.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq SessionTrackingRequest) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
