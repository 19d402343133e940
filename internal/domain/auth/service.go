package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, sessionReq SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, sessionReq SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken, accessToken string, accessExpiresAt int64) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Me(ctx context.Context, userID string) (SessionResponse, error)
	CleanupExpiredTokens(ctx context.Context) error
}
