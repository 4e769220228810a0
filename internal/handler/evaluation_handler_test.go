package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/middleware"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/service"
)

type fakeEvaluationRepo struct {
	evaluation *models.Evaluation
	submitted  bool
}

func (f *fakeEvaluationRepo) FindByToken(_ context.Context, token string) (*models.Evaluation, error) {
	if f.evaluation == nil || f.evaluation.Token != token {
		return nil, sql.ErrNoRows
	}
	ev := *f.evaluation
	return &ev, nil
}

func (f *fakeEvaluationRepo) MarkSubmitted(_ context.Context, _ string, _ int, _ string, _ time.Time) (bool, error) {
	if f.evaluation.Used {
		return false, nil
	}
	f.evaluation.Used = true
	f.submitted = true
	return true, nil
}

func (f *fakeEvaluationRepo) Statistics(context.Context, string) (*dto.EvaluationStatisticsResponse, error) {
	return &dto.EvaluationStatisticsResponse{CampaignID: "camp-1"}, nil
}

type fakeEvalPairRepo struct{}

func (fakeEvalPairRepo) FindByID(context.Context, string) (*models.EmployeePair, error) {
	return &models.EmployeePair{
		ID:            "pair-1",
		CampaignID:    "camp-1",
		Employee1ID:   "emp-1",
		Employee2ID:   "emp-2",
		Employee1Name: "Alice",
		Employee2Name: "Bob",
	}, nil
}

type fakeEvalCampaignRepo struct{}

func (fakeEvalCampaignRepo) FindByID(context.Context, string) (*models.Campaign, error) {
	return &models.Campaign{ID: "camp-1", Title: "Spring Coffee", HRManagerID: "hr-1"}, nil
}

func newEvaluationHandler(repo *fakeEvaluationRepo) *EvaluationHandler {
	svc := service.NewEvaluationService(repo, fakeEvalPairRepo{}, fakeEvalCampaignRepo{}, nil, nil)
	return NewEvaluationHandler(svc)
}

func TestEvaluationHandlerFormSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEvaluationHandler(&fakeEvaluationRepo{
		evaluation: &models.Evaluation{ID: "ev-1", EmployeeID: "emp-1", PairID: "pair-1", Token: "tok-1"},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/evaluations/tok-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	handler.Form(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.EvaluationFormResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Alice", envelope.Data.EmployeeName)
	assert.Equal(t, "Bob", envelope.Data.PartnerName)
	assert.Equal(t, "Spring Coffee", envelope.Data.CampaignTitle)
}

func TestEvaluationHandlerFormUnknownToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEvaluationHandler(&fakeEvaluationRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/evaluations/missing", nil)
	c.Params = gin.Params{{Key: "token", Value: "missing"}}

	handler.Form(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluationHandlerSubmitBurnsToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeEvaluationRepo{
		evaluation: &models.Evaluation{ID: "ev-1", EmployeeID: "emp-1", PairID: "pair-1", Token: "tok-1"},
	}
	handler := newEvaluationHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/evaluations/tok-1", strings.NewReader(`{"rating":4,"comment":"nice"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	handler.Submit(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, repo.submitted)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/evaluations/tok-1", strings.NewReader(`{"rating":5}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	handler.Submit(c)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestEvaluationHandlerStatisticsRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEvaluationHandler(&fakeEvaluationRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/campaigns/camp-1/evaluations/statistics", nil)
	c.Params = gin.Params{{Key: "id", Value: "camp-1"}}

	handler.Statistics(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvaluationHandlerStatisticsOwnership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEvaluationHandler(&fakeEvaluationRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/campaigns/camp-1/evaluations/statistics", nil)
	c.Params = gin.Params{{Key: "id", Value: "camp-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "hr-1"})

	handler.Statistics(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}
