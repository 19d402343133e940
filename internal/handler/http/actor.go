package http

import (
	"context"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/middleware"
)

func actorFromContext(ctx context.Context) (user.Actor, error) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return user.Actor{}, auth.ErrInvalidToken
	}
	return actor, nil
}
