package postgresql

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Expired refresh tokens are kept this long before cleanup removes them.
const expiredTokenRetention = 24 * time.Hour

type tokenRepository struct {
	db *database.DB
}

func NewTokenRepository(db *database.DB) auth.TokenRepository {
	return &tokenRepository{db: db}
}

// Only a digest of each refresh token is stored.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (r *tokenRepository) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, session auth.SessionTrackingRequest) error {
	_, err := GetQuerier(ctx, r.db).Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, tokenDigest(token), time.Unix(expiresAt, 0).UTC(), session.UserAgent, session.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// IsRefreshTokenRevoked reports unknown, revoked and expired tokens alike as revoked.
func (r *tokenRepository) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	var usable bool
	err := GetQuerier(ctx, r.db).QueryRow(ctx, `
		SELECT revoked_at IS NULL AND expires_at > NOW()
		FROM refresh_tokens
		WHERE token_hash = $1
		ORDER BY expires_at DESC
		LIMIT 1`,
		tokenDigest(token),
	).Scan(&usable)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return !usable, nil
}

func (r *tokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := GetQuerier(ctx, r.db).Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenDigest(token),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := GetQuerier(ctx, r.db).Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`,
		time.Now().Add(-expiredTokenRetention).UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
