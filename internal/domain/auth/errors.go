package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrTokenExpired               = errors.New("token has expired")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")
	ErrUserNotFound               = errors.New("user not found")
)
