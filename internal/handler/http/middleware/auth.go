package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// ActorFromContext returns the caller resolved by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}

// WithActor stores actor on ctx.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// AuthRequired accepts only live access tokens and resolves the caller for
// the rest of the chain. It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if tokenType, _ := claims["type"].(string); tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func actorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Actor{}, auth.ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return user.Actor{
		ID:    userID,
		Email: email,
		Roles: RolesFromClaims(claims),
	}, nil
}
