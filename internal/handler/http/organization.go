package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
)

type OrganizationHandler interface {
	GetTeam(w http.ResponseWriter, r *http.Request)
	GetOrganization(w http.ResponseWriter, r *http.Request)
	AssignSupervisor(w http.ResponseWriter, r *http.Request)
}

type OrganizationHandlerImpl struct {
	organizationService organization.OrganizationService
}

func NewOrganizationHandler(organizationService organization.OrganizationService) OrganizationHandler {
	return &OrganizationHandlerImpl{
		organizationService: organizationService,
	}
}

// GetTeam handles GET /team
func (h *OrganizationHandlerImpl) GetTeam(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	team, err := h.organizationService.GetTeam(r.Context(), actor)
	if err != nil {
		slog.Error("GetTeam service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, team)
}

// GetOrganization handles GET /organization
func (h *OrganizationHandlerImpl) GetOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	org, err := h.organizationService.GetOrganization(r.Context(), actor)
	if err != nil {
		slog.Error("GetOrganization service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, org)
}

// AssignSupervisor handles PUT /organization/assignments
func (h *OrganizationHandlerImpl) AssignSupervisor(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req organization.AssignSupervisorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AssignSupervisor decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		slog.Error("AssignSupervisor validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	if err := h.organizationService.AssignSupervisor(r.Context(), actor, req); err != nil {
		slog.Error("AssignSupervisor service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Supervisor assigned successfully", nil)
}
