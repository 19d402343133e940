package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

const refreshTokenCookieName = "refresh_token"

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)

	// Public list used by the registration form
	ListSupervisors(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService          jwt.Service
	authService         auth.AuthService
	organizationService organization.OrganizationService
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, organizationService organization.OrganizationService) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:          jwtService,
		authService:         authService,
		organizationService: organizationService,
	}
}

func sessionFromRequest(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// startSession sets the refresh cookie and answers with the issued tokens.
func (a *AuthHandlerImpl) startSession(w http.ResponseWriter, tokens auth.TokenResponse, message string) {
	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.RefreshTokenExpiresIn))
	response.Created(w, message, tokens)
}

// Register handles POST /auth/register
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Register decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokens, err := a.authService.Register(r.Context(), req, sessionFromRequest(r))
	if err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User registered", "email", req.Email, "role", req.Role)
	a.startSession(w, tokens, "User created successfully")
}

// Login handles POST /auth/login
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokens, err := a.authService.Login(r.Context(), req, sessionFromRequest(r))
	if err != nil {
		slog.Warn("Login failed", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User logged in", "email", req.Email)
	a.startSession(w, tokens, "User logged in successfully")
}

// Logout handles POST /auth/logout. It revokes whichever of the refresh
// cookie and bearer access token the caller still holds.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromCookie(r)
	accessToken := jwtauth.TokenFromHeader(r)
	if refreshToken == "" && accessToken == "" {
		response.HandleError(w, auth.ErrRefreshTokenCookieNotFound)
		return
	}

	var accessExpiresAt int64
	if token, _, err := jwtauth.FromContext(r.Context()); err == nil && token != nil {
		accessExpiresAt = token.Expiration().Unix()
	}

	if err := a.authService.Logout(r.Context(), refreshToken, accessToken, accessExpiresAt); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.ClearRefreshTokenCookie())
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// RefreshToken handles POST /auth/refresh. The cookie wins over a body token.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req := auth.RefreshTokenRequest{RefreshToken: refreshTokenFromCookie(r)}
	if req.RefreshToken == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Refresh Token decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokens, err := a.authService.RefreshToken(r.Context(), req)
	if err != nil {
		slog.Warn("Refresh Token rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Token refreshed successfully", tokens)
}

// Me handles GET /auth/me
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	session, err := a.authService.Me(r.Context(), actor.ID)
	if err != nil {
		slog.Error("Me service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, session)
}

func (a *AuthHandlerImpl) ListSupervisors(w http.ResponseWriter, r *http.Request) {
	supervisors, err := a.organizationService.ListSupervisors(r.Context())
	if err != nil {
		slog.Error("ListSupervisors service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, supervisors)
}
