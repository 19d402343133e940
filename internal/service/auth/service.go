package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps login timing the same whether or not the email exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	organization.RelationRepository
	jwt.Service
	auth.TokenRepository
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, relationRepository organization.RelationRepository, jwtService jwt.Service, tokenRepository auth.TokenRepository) auth.AuthService {
	return &AuthServiceImpl{
		tx:                 tx,
		UserRepository:     userRepository,
		RelationRepository: relationRepository,
		Service:            jwtService,
		TokenRepository:    tokenRepository,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, registerReq auth.RegisterRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	email := strings.ToLower(strings.TrimSpace(registerReq.Email))
	exists, err := a.UserRepository.ExistsByEmail(ctx, email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return auth.TokenResponse{}, user.ErrUserEmailExists
	}

	selected, ok := user.ParseRole(registerReq.Role)
	if !ok {
		return auth.TokenResponse{}, user.ErrInvalidRole
	}
	roles := user.GrantedRoles(selected)

	var supervisorID string
	if registerReq.SupervisorID != nil {
		supervisorID = strings.TrimSpace(*registerReq.SupervisorID)
	}
	if supervisorID != "" {
		supervisor, err := a.UserRepository.GetByID(ctx, supervisorID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.TokenResponse{}, user.ErrSupervisorNotFound
			}
			return auth.TokenResponse{}, fmt.Errorf("failed to get supervisor: %w", err)
		}
		if !supervisor.Roles.IsSupervisor() {
			return auth.TokenResponse{}, organization.ErrNotASupervisor
		}
	}

	passwordHash, err := a.hashPassword(registerReq.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate user id: %w", err)
	}

	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := a.UserRepository.Create(txCtx, user.User{
			ID:           id.String(),
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(registerReq.FirstName),
			LastName:     strings.TrimSpace(registerReq.LastName),
			Roles:        roles,
		})
		if err != nil {
			return err
		}

		if err := a.UserRepository.AssignRoles(txCtx, created.ID, roles); err != nil {
			return err
		}

		if supervisorID != "" {
			if err := a.RelationRepository.Assign(txCtx, supervisorID, created.ID); err != nil {
				return err
			}
		}

		tokenResponse, err = a.issueTokens(txCtx, created, sessionTrackReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(loginReq.Email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(loginReq.Password))
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		tokenResponse auth.TokenResponse
		err           error
	)

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Email, u.Roles.Strings())
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.TokenRepository.CreateRefreshToken(ctx, u.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	return tokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken, accessToken string, accessExpiresAt int64) error {
	if refreshToken != "" {
		if err := a.TokenRepository.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	if accessToken != "" {
		a.Service.RevokeToken(accessToken, accessExpiresAt)
	}
	return nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	var accessTokenResponse auth.AccessTokenResponse

	// 1. Verify signature, expiry and token type
	userID, err := a.Service.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check DB for revocation/expiry
	isRevoked, err := a.TokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	// 3. Roles may have changed since login, so reload them
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	accessTokenResponse.AccessToken, accessTokenResponse.AccessTokenExpiresIn, err =
		a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.Roles.Strings())
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessTokenResponse, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, userID string) (auth.SessionResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.SessionResponse{}, auth.ErrUserNotFound
		}
		return auth.SessionResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	resp := auth.SessionResponse{
		ID:        userData.ID,
		Email:     userData.Email,
		FirstName: userData.FirstName,
		LastName:  userData.LastName,
		Roles:     userData.Roles.Strings(),
		CreatedAt: userData.CreatedAt,
	}

	supervisorID, err := a.RelationRepository.GetSupervisorID(ctx, userID)
	switch {
	case err == nil:
		resp.SupervisorID = &supervisorID
	case !errors.Is(err, organization.ErrRelationNotFound):
		return auth.SessionResponse{}, fmt.Errorf("failed to get supervisor: %w", err)
	}

	return resp, nil
}

// CleanupExpiredTokens removes refresh tokens that can no longer be used.
func (a *AuthServiceImpl) CleanupExpiredTokens(ctx context.Context) error {
	n, err := a.TokenRepository.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Expired refresh tokens removed", "count", n)
	}
	return nil
}
