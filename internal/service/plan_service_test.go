package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

func setupPlanService(t *testing.T) (*PlanService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewPlanService(
		repository.NewPlanRepository(db),
		repository.NewApplicationRepository(db),
		nil,
		nil,
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestSplitFeatures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "Pronostics illimités", []string{"Pronostics illimités"}},
		{"blank lines dropped", "A\n\n  \nB\n", []string{"A", "B"}},
		{"trimmed", "  A  \n\tB", []string{"A", "B"}},
		{"windows newlines", "A\r\nB\r\n", []string{"A", "B"}},
		{"order kept", "C\nA\nB", []string{"C", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitFeatures(tt.text))
		})
	}
}

func TestFeatures_RoundTrip(t *testing.T) {
	texts := []string{
		"Pronostics illimités\nSupport prioritaire\nStatistiques avancées",
		"\n  Pronostics illimités \n\n\nSupport prioritaire\n",
		"",
	}

	for _, text := range texts {
		features := SplitFeatures(text)
		joined := JoinFeatures(features)
		// 再次编辑后结果稳定
		assert.Equal(t, features, SplitFeatures(joined))
		assert.Equal(t, joined, JoinFeatures(SplitFeatures(joined)))
	}

	assert.Equal(t, "A\nB", JoinFeatures(SplitFeatures("\nA\n\nB\n")))
}

func TestPlanService_CreateAndList(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	app := testutil.TestApplication(t, db)
	promo := 4.99

	created, err := service.Create(context.Background(), app.ID, &dto.PlanRequest{
		Name:                "Premium",
		Price:               9.99,
		PromoPrice:          &promo,
		Currency:            "eur",
		Period:              "monthly",
		FeaturesText:        "Pronostics illimités\n\nSupport prioritaire\n",
		MissingFeaturesText: "Coaching",
		Popular:             true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "EUR", created.Currency)
	assert.Equal(t, []string{"Pronostics illimités", "Support prioritaire"}, created.Features)
	assert.Equal(t, "Pronostics illimités\nSupport prioritaire", created.FeaturesText)

	_, err = service.Create(context.Background(), app.ID, &dto.PlanRequest{
		Name: "Basic", Price: 2, Currency: "EUR", Period: "weekly",
	})
	require.NoError(t, err)

	plans, err := service.ListByApp(app.ID)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Basic", plans[0].Name)
	assert.Equal(t, []string{}, plans[0].Features)
	assert.Equal(t, "Premium", plans[1].Name)
	assert.Equal(t, []string{"Coaching"}, plans[1].MissingFeatures)
}

func TestPlanService_Create_UnknownApp(t *testing.T) {
	service, _, cleanup := setupPlanService(t)
	defer cleanup()

	_, err := service.Create(context.Background(), "missing", &dto.PlanRequest{Name: "X", Currency: "EUR", Period: "daily"})
	assert.Equal(t, ErrApplicationNotFound, err)

	_, err = service.ListByApp("missing")
	assert.Equal(t, ErrApplicationNotFound, err)
}

func TestPlanService_UpdateAndDelete(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	app := testutil.TestApplication(t, db)
	plan := testutil.TestPlan(t, db, app.ID)

	updated, err := service.Update(context.Background(), plan.ID, &dto.PlanRequest{
		Name:         "Premium+",
		Price:        12,
		Currency:     "EUR",
		Period:       "annual",
		FeaturesText: updatedFeatures(plan.Features),
	})
	require.NoError(t, err)
	assert.Equal(t, "Premium+", updated.Name)
	assert.Equal(t, append([]string(plan.Features), "Accès anticipé"), updated.Features)

	require.NoError(t, service.Delete(context.Background(), plan.ID))
	_, err = service.Get(plan.ID)
	assert.Equal(t, ErrPlanNotFound, err)

	assert.Equal(t, ErrPlanNotFound, service.Delete(context.Background(), plan.ID))
}

func updatedFeatures(features []string) string {
	return JoinFeatures(features) + "\nAccès anticipé"
}

func TestPlanService_PublishesChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	rdb, _ := setupTestRedis(t)

	service := NewPlanService(
		repository.NewPlanRepository(db),
		repository.NewApplicationRepository(db),
		pubsub.NewPublisher(rdb),
		nil,
	)

	ps := rdb.Subscribe(context.Background(), pubsub.Channel(pubsub.CollectionPlans))
	defer ps.Close()
	_, err := ps.Receive(context.Background())
	require.NoError(t, err)

	app := testutil.TestApplication(t, db)
	created, err := service.Create(context.Background(), app.ID, &dto.PlanRequest{Name: "Basic", Currency: "EUR", Period: "daily"})
	require.NoError(t, err)

	msg, err := ps.ReceiveMessage(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, created.ID)
	assert.Contains(t, msg.Payload, pubsub.OpCreate)
}
