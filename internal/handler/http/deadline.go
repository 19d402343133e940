package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
)

type DeadlineHandler interface {
	// GET /deadline
	Check(w http.ResponseWriter, r *http.Request)
	// POST /deadline/sweep
	Sweep(w http.ResponseWriter, r *http.Request)
}

type DeadlineHandlerImpl struct {
	deadlineService deadline.DeadlineService
}

func NewDeadlineHandler(deadlineService deadline.DeadlineService) DeadlineHandler {
	return &DeadlineHandlerImpl{
		deadlineService: deadlineService,
	}
}

// Check implements DeadlineHandler.
func (h *DeadlineHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.deadlineService.Check(r.Context(), actor.ID)
	if err != nil {
		// Delivery failures still leave a usable deadline in the result
		slog.Error("Deadline check error", "error", err, "user_id", actor.ID)
		if result.Info.DeadlineDate.IsZero() {
			response.HandleError(w, err)
			return
		}
	}

	response.Success(w, result)
}

// Sweep implements DeadlineHandler.
func (h *DeadlineHandlerImpl) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.deadlineService.Sweep(r.Context())
	if err != nil {
		slog.Error("Deadline sweep error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Deadline sweep triggered manually", "checked", result.Checked, "sent", result.Sent, "failed", result.Failed)
	response.Success(w, result)
}
