package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/service"
	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/response"
)

// EvaluationHandler exposes the anonymous feedback endpoints. Form and
// Submit are public, token-addressed routes; Statistics requires auth.
type EvaluationHandler struct {
	service *service.EvaluationService
}

// NewEvaluationHandler creates a new handler.
func NewEvaluationHandler(svc *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: svc}
}

// Form godoc
// @Summary Evaluation form context
// @Description Resolve who is evaluating whom for a one-shot token
// @Tags Evaluations
// @Produce json
// @Param token path string true "Evaluation token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evaluations/{token} [get]
func (h *EvaluationHandler) Form(c *gin.Context) {
	res, err := h.service.Form(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Submit godoc
// @Summary Submit evaluation
// @Description Record anonymous feedback; each token accepts one submission
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param token path string true "Evaluation token"
// @Param payload body dto.SubmitEvaluationRequest true "Feedback payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /evaluations/{token} [post]
func (h *EvaluationHandler) Submit(c *gin.Context) {
	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	if err := h.service.Submit(c.Request.Context(), c.Param("token"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Statistics godoc
// @Summary Campaign evaluation statistics
// @Description Aggregate submitted feedback for a campaign
// @Tags Evaluations
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/evaluations/statistics [get]
func (h *EvaluationHandler) Statistics(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.Statistics(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
