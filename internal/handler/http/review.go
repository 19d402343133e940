package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReviewHandler interface {
	GetMyReview(w http.ResponseWriter, r *http.Request)
	GetEmployeeReview(w http.ResponseWriter, r *http.Request)
	SaveReview(w http.ResponseWriter, r *http.Request)
	SaveEmployeeComment(w http.ResponseWriter, r *http.Request)
	SaveSupervisorComment(w http.ResponseWriter, r *http.Request)
	SaveKPIRatings(w http.ResponseWriter, r *http.Request)
	SaveSkills(w http.ResponseWriter, r *http.Request)
	AddGoal(w http.ResponseWriter, r *http.Request)
	DeleteGoal(w http.ResponseWriter, r *http.Request)
}

type ReviewHandlerImpl struct {
	reviewService review.ReviewService
}

func NewReviewHandler(reviewService review.ReviewService) ReviewHandler {
	return &ReviewHandlerImpl{
		reviewService: reviewService,
	}
}

// GetMyReview handles GET /reviews/me
func (h *ReviewHandlerImpl) GetMyReview(w http.ResponseWriter, r *http.Request) {
	h.getReview(w, r, "")
}

// GetEmployeeReview handles GET /reviews/employees/{employeeID}
func (h *ReviewHandlerImpl) GetEmployeeReview(w http.ResponseWriter, r *http.Request) {
	h.getReview(w, r, chi.URLParam(r, "employeeID"))
}

func (h *ReviewHandlerImpl) getReview(w http.ResponseWriter, r *http.Request, employeeID string) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reviewService.GetReview(r.Context(), actor, employeeID)
	if err != nil {
		slog.Error("GetReview service error", "error", err, "employee_id", employeeID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SaveReview handles PUT /reviews/{reviewID}
func (h *ReviewHandlerImpl) SaveReview(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req review.SaveReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveReview decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		slog.Error("SaveReview validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	result, err := h.reviewService.SaveReview(r.Context(), actor, reviewID, req)
	if err != nil {
		slog.Error("SaveReview service error", "error", err, "review_id", reviewID)
		response.HandleError(w, err)
		return
	}

	if result.Status == review.StatusSubmitted {
		slog.Info("Review submitted", "review_id", reviewID, "employee_id", actor.ID)
		response.SuccessWithMessage(w, "Review submitted successfully", result)
		return
	}

	slog.Info("Review saved", "review_id", reviewID, "employee_id", actor.ID)
	response.SuccessWithMessage(w, saveMessage(result, "Review saved successfully"), result)
}

// SaveEmployeeComment handles PUT /reviews/{reviewID}/employee-comment
func (h *ReviewHandlerImpl) SaveEmployeeComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req review.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveEmployeeComment decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reviewService.SaveEmployeeComment(r.Context(), actor, chi.URLParam(r, "reviewID"), req)
	if err != nil {
		slog.Error("SaveEmployeeComment service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comment saved successfully", result)
}

// SaveSupervisorComment handles PUT /reviews/{reviewID}/supervisor-comment
func (h *ReviewHandlerImpl) SaveSupervisorComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req review.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveSupervisorComment decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reviewService.SaveSupervisorComment(r.Context(), actor, chi.URLParam(r, "reviewID"), req)
	if err != nil {
		slog.Error("SaveSupervisorComment service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comment saved successfully", result)
}

// SaveKPIRatings handles PUT /reviews/{reviewID}/kpi-ratings
func (h *ReviewHandlerImpl) SaveKPIRatings(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req review.SaveKPIRatingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveKPIRatings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		slog.Error("SaveKPIRatings validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	result, err := h.reviewService.SaveKPIRatings(r.Context(), actor, reviewID, req)
	if err != nil {
		slog.Error("SaveKPIRatings service error", "error", err, "review_id", reviewID)
		response.HandleError(w, err)
		return
	}

	slog.Info("KPI ratings saved", "review_id", reviewID, "rated_by", actor.ID)
	response.SuccessWithMessage(w, saveMessage(result, "Ratings saved successfully"), result)
}

// SaveSkills handles PUT /reviews/{reviewID}/skills
func (h *ReviewHandlerImpl) SaveSkills(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req review.SaveSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveSkills decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		slog.Error("SaveSkills validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	result, err := h.reviewService.SaveSkills(r.Context(), actor, reviewID, req)
	if err != nil {
		slog.Error("SaveSkills service error", "error", err, "review_id", reviewID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Skills saved", "review_id", reviewID, "evaluated_by", actor.ID)
	response.SuccessWithMessage(w, saveMessage(result, "Skills saved successfully"), result)
}

// AddGoal handles POST /reviews/{reviewID}/goals
func (h *ReviewHandlerImpl) AddGoal(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req review.AddGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddGoal decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	goal, err := h.reviewService.AddGoal(r.Context(), actor, chi.URLParam(r, "reviewID"), req)
	if err != nil {
		slog.Error("AddGoal service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Development goal added successfully", goal)
}

// DeleteGoal handles DELETE /reviews/{reviewID}/goals/{goalID}
func (h *ReviewHandlerImpl) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	err = h.reviewService.DeleteGoal(r.Context(), actor, chi.URLParam(r, "reviewID"), chi.URLParam(r, "goalID"))
	if err != nil {
		slog.Error("DeleteGoal service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Development goal deleted successfully", nil)
}

// saveMessage reports partial saves in the response message.
func saveMessage(result review.ReviewResponse, full string) string {
	if result.SaveResult != nil && result.SaveResult.Partial() {
		return "Some items could not be saved: " + result.SaveResult.Summary()
	}
	return full
}
