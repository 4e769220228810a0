package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/service"
	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/response"
)

// EmployeeHandler exposes roster listing and Excel import endpoints.
type EmployeeHandler struct {
	service *service.EmployeeService
}

// NewEmployeeHandler creates a new handler.
func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: svc}
}

// List godoc
// @Summary List campaign roster
// @Description List employees and their attribute bags for a campaign
// @Tags Employees
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	employees, err := h.service.List(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, employees, nil)
}

// Delete godoc
// @Summary Delete campaign roster
// @Description Remove every employee of a campaign along with their pairs and evaluations
// @Tags Employees
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/employees [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	deleted, err := h.service.DeleteRoster(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"deleted_employees": deleted}, nil)
}

// Import godoc
// @Summary Import roster from Excel
// @Description Upload an .xlsx file to replace or extend the campaign roster
// @Tags Employees
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Campaign ID"
// @Param file formData file true "Excel roster file"
// @Param replace_existing formData bool false "Replace the current roster"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/employees/import [post]
func (h *EmployeeHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "excel file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read uploaded file"))
		return
	}
	defer file.Close()

	replace, _ := strconv.ParseBool(c.PostForm("replace_existing"))
	opts := dto.ImportOptions{ReplaceExisting: replace, CreatedBy: claims.UserID}

	result, err := h.service.ImportRoster(c.Request.Context(), c.Param("id"), claims.UserID, file, header.Size, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
