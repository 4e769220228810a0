package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/service"
	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/response"
)

// MatchingHandler exposes criteria management and pair generation endpoints.
type MatchingHandler struct {
	criteria *service.CriteriaService
	matching *service.MatchingService
	metrics  *service.MetricsService
}

// NewMatchingHandler creates a new handler.
func NewMatchingHandler(criteria *service.CriteriaService, matching *service.MatchingService, metrics *service.MetricsService) *MatchingHandler {
	return &MatchingHandler{criteria: criteria, matching: matching, metrics: metrics}
}

// AvailableAttributes godoc
// @Summary List matchable attributes
// @Description List the distinct attribute keys present in the campaign roster
// @Tags Matching
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/matching/attributes [get]
func (h *MatchingHandler) AvailableAttributes(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.criteria.AvailableAttributes(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// SaveCriteria godoc
// @Summary Save matching criteria
// @Description Replace the campaign's criteria set; rejected once pairs are confirmed
// @Tags Matching
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param payload body dto.SaveCriteriaRequest true "Criteria payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /campaigns/{id}/matching/criteria [post]
func (h *MatchingHandler) SaveCriteria(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SaveCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid criteria payload"))
		return
	}

	res, err := h.criteria.SaveCriteria(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// CriteriaHistory godoc
// @Summary Criteria history
// @Description Report the campaign's criteria set and its lock state
// @Tags Matching
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/matching/criteria [get]
func (h *MatchingHandler) CriteriaHistory(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.criteria.History(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// GeneratePairs godoc
// @Summary Generate pair preview
// @Description Compute a maximum set of eligible pairs without persisting anything
// @Tags Matching
// @Produce json
// @Param id path string true "Campaign ID"
// @Param limit query int false "Maximum pairs to return"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/matching/generate [post]
func (h *MatchingHandler) GeneratePairs(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit := queryInt(c, "limit", 0)

	res, err := h.matching.GeneratePairs(c.Request.Context(), c.Param("id"), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPairsGenerated(res.TotalGenerated)
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// ConfirmPairs godoc
// @Summary Confirm pairs
// @Description Persist a batch of previewed pairs and lock the criteria
// @Tags Matching
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param payload body dto.ConfirmPairsRequest true "Pairs payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/matching/confirm [post]
func (h *MatchingHandler) ConfirmPairs(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ConfirmPairsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pairs payload"))
		return
	}

	res, err := h.matching.ConfirmPairs(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPairsConfirmed(res.TotalSaved)
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// History godoc
// @Summary Matching history
// @Description Report confirmed pairs, criteria snapshot and email delivery state
// @Tags Matching
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/matching/history [get]
func (h *MatchingHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.matching.History(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
