package handler

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/service"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

func setupPlanHandler(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	planService := service.NewPlanService(
		repository.NewPlanRepository(db),
		repository.NewApplicationRepository(db),
		nil,
		nil,
	)
	handler := NewPlanHandler(planService)

	router := gin.New()
	router.GET("/public/plans/:id", handler.ListByApp)
	admin := router.Group("/admin", mockAuth("01HADMIN"))
	admin.POST("/applications/:id/plans", handler.Create)
	admin.PUT("/plans/:id", handler.Update)
	admin.DELETE("/plans/:id", handler.Delete)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return router, db, cleanup
}

func TestPlanHandler_CreateAndListPublic(t *testing.T) {
	router, db, cleanup := setupPlanHandler(t)
	defer cleanup()

	app := testutil.TestApplication(t, db)

	w := performRequest(router, "POST", "/admin/applications/"+app.ID+"/plans", dto.PlanRequest{
		Name:         "Premium",
		Price:        9.99,
		Currency:     "EUR",
		Period:       "monthly",
		FeaturesText: "Pronostics illimités\n\nSupport prioritaire\n",
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "GET", "/public/plans/"+app.ID, nil)
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var plans []*dto.PlanResponse
	decodeData(t, resp, &plans)
	require.Len(t, plans, 1)
	assert.Equal(t, []string{"Pronostics illimités", "Support prioritaire"}, plans[0].Features)
}

func TestPlanHandler_ListPublic_UnknownApp(t *testing.T) {
	router, _, cleanup := setupPlanHandler(t)
	defer cleanup()

	w := performRequest(router, "GET", "/public/plans/01HMISSING", nil)
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}

func TestPlanHandler_Create_InvalidPeriod(t *testing.T) {
	router, db, cleanup := setupPlanHandler(t)
	defer cleanup()

	app := testutil.TestApplication(t, db)
	w := performRequest(router, "POST", "/admin/applications/"+app.ID+"/plans", map[string]interface{}{
		"name":     "Premium",
		"price":    9.99,
		"currency": "EUR",
		"period":   "hourly",
	})
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}

func TestPlanHandler_Delete(t *testing.T) {
	router, db, cleanup := setupPlanHandler(t)
	defer cleanup()

	app := testutil.TestApplication(t, db)
	plan := testutil.TestPlan(t, db, app.ID)

	w := performRequest(router, "DELETE", "/admin/plans/"+plan.ID, nil)
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "PUT", "/admin/plans/"+plan.ID, dto.PlanRequest{
		Name: "Premium", Price: 1, Currency: "EUR", Period: "monthly",
	})
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}
