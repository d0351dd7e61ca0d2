package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

func setupMaintenanceService(t *testing.T) (*MaintenanceService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewMaintenanceService(
		repository.NewMaintenanceEventRepository(db),
		repository.NewApplicationRepository(db),
		nil,
		nil,
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestMaintenanceService_Create(t *testing.T) {
	service, db, cleanup := setupMaintenanceService(t)
	defer cleanup()

	app := testutil.TestApplication(t, db, testutil.WithAppName("Predict Web"))

	event, err := service.Create(context.Background(), &dto.MaintenanceEventRequest{
		Title:  "Migration",
		Date:   time.Now(),
		Status: model.EventStatusScheduled,
		AppID:  app.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Predict Web", event.AppName)
	assert.Nil(t, event.ResolvedAt)

	_, err = service.Create(context.Background(), &dto.MaintenanceEventRequest{
		Title:  "Migration",
		Date:   time.Now(),
		Status: model.EventStatusScheduled,
		AppID:  "missing",
	})
	assert.Equal(t, ErrApplicationNotFound, err)
}

func TestMaintenanceService_CreateResolved_SetsResolvedAt(t *testing.T) {
	service, db, cleanup := setupMaintenanceService(t)
	defer cleanup()

	app := testutil.TestApplication(t, db)
	event, err := service.Create(context.Background(), &dto.MaintenanceEventRequest{
		Title:  "Incident",
		Date:   time.Now().Add(-time.Hour),
		Status: model.EventStatusResolved,
		AppID:  app.ID,
	})
	require.NoError(t, err)
	assert.NotNil(t, event.ResolvedAt)
}

func TestMaintenanceService_Resolve(t *testing.T) {
	service, db, cleanup := setupMaintenanceService(t)
	defer cleanup()

	event := testutil.TestMaintenanceEvent(t, db)

	resolved, err := service.Resolve(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = service.Resolve(context.Background(), event.ID)
	assert.Equal(t, ErrEventAlreadyResolved, err)

	_, err = service.Resolve(context.Background(), "missing")
	assert.Equal(t, ErrEventNotFound, err)
}

func TestMaintenanceService_ListRecentOrOpen(t *testing.T) {
	service, db, cleanup := setupMaintenanceService(t)
	defer cleanup()

	now := time.Now().UTC()
	resolvedAt := now.AddDate(0, 0, -9)
	testutil.TestMaintenanceEvent(t, db, func(e *model.MaintenanceEvent) {
		e.Title = "old resolved"
		e.Date = now.AddDate(0, 0, -10)
		e.Status = model.EventStatusResolved
		e.ResolvedAt = &resolvedAt
	})
	testutil.TestMaintenanceEvent(t, db, func(e *model.MaintenanceEvent) {
		e.Title = "old open"
		e.Date = now.AddDate(0, 0, -10)
	})
	testutil.TestMaintenanceEvent(t, db, func(e *model.MaintenanceEvent) {
		e.Title = "recent resolved"
		e.Date = now.Add(-2 * time.Hour)
		e.Status = model.EventStatusResolved
	})

	events, err := service.ListRecentOrOpen(24 * time.Hour)
	require.NoError(t, err)

	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	assert.ElementsMatch(t, []string{"old open", "recent resolved"}, titles)

	all, err := service.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "recent resolved", all[0].Title)
}

func TestMaintenanceService_UpdateAndDelete(t *testing.T) {
	service, db, cleanup := setupMaintenanceService(t)
	defer cleanup()

	app := testutil.TestApplication(t, db, testutil.WithAppName("Predict API"))
	event := testutil.TestMaintenanceEvent(t, db)

	updated, err := service.Update(context.Background(), event.ID, &dto.MaintenanceEventRequest{
		Title:  "Migration terminée",
		Date:   event.Date,
		Status: model.EventStatusInProgress,
		AppID:  app.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Predict API", updated.AppName)
	assert.Equal(t, "Migration terminée", updated.Title)

	require.NoError(t, service.Delete(context.Background(), event.ID))
	assert.Equal(t, ErrEventNotFound, service.Delete(context.Background(), event.ID))
}
