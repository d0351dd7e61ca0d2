package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

func entry(status bool, at time.Time) *model.AppStatusHistory {
	return &model.AppStatusHistory{AppID: "app", Status: status, Timestamp: at}
}

func TestStatusForDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		day     time.Time
		history []*model.AppStatusHistory
		current bool
		want    string
	}{
		{
			name: "future day",
			day:  now.AddDate(0, 0, 1),
			want: StateUnknown,
		},
		{
			name:    "no history, currently in maintenance",
			day:     day,
			current: true,
			want:    StateMaintenance,
		},
		{
			name: "no history, currently operational",
			day:  day,
			want: StateOperational,
		},
		{
			name:    "day ends before first entry",
			day:     day,
			history: []*model.AppStatusHistory{entry(true, day.Add(36*time.Hour))},
			want:    StateUnknown,
		},
		{
			name:    "first entry exactly at next midnight",
			day:     day,
			history: []*model.AppStatusHistory{entry(true, day.Add(24*time.Hour))},
			want:    StateUnknown,
		},
		{
			name:    "maintenance carried from earlier day",
			day:     day,
			history: []*model.AppStatusHistory{entry(true, day.Add(-48*time.Hour))},
			want:    StateMaintenance,
		},
		{
			name:    "operational carried from earlier day",
			day:     day,
			history: []*model.AppStatusHistory{entry(true, day.Add(-72*time.Hour)), entry(false, day.Add(-48*time.Hour))},
			current: true,
			want:    StateOperational,
		},
		{
			name:    "switch during the day",
			day:     day,
			history: []*model.AppStatusHistory{entry(false, day.Add(-48*time.Hour)), entry(true, day.Add(10*time.Hour))},
			want:    StatePartial,
		},
		{
			name:    "entry at day start replaces previous state",
			day:     day,
			history: []*model.AppStatusHistory{entry(false, day.Add(-48*time.Hour)), entry(true, day)},
			want:    StateMaintenance,
		},
		{
			name:    "first entry inside the day",
			day:     day,
			history: []*model.AppStatusHistory{entry(true, day.Add(8*time.Hour))},
			want:    StateMaintenance,
		},
		{
			name: "unordered history",
			day:  day,
			history: []*model.AppStatusHistory{
				entry(false, day.Add(20*time.Hour)),
				entry(true, day.Add(-24*time.Hour)),
			},
			want: StatePartial,
		},
		{
			name:    "non-midnight day value uses its calendar day",
			day:     day.Add(15 * time.Hour),
			history: []*model.AppStatusHistory{entry(true, day.Add(-time.Hour))},
			want:    StateMaintenance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusForDay(tt.day, tt.history, tt.current, now)
			assert.Equal(t, tt.want, got)
			// 相同输入重复调用结果一致
			assert.Equal(t, got, StatusForDay(tt.day, tt.history, tt.current, now))
		})
	}
}

func TestStatusForDay_DoesNotReorderInput(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []*model.AppStatusHistory{
		entry(false, day.Add(5*time.Hour)),
		entry(true, day.Add(-5*time.Hour)),
	}

	StatusForDay(day, history, false, day.AddDate(0, 0, 5))
	assert.False(t, history[0].Status)
	assert.True(t, history[1].Status)
}

func TestTimeline(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	history := []*model.AppStatusHistory{
		entry(false, now.AddDate(0, 0, -3)),
		entry(true, now.Add(-2*time.Hour)),
	}

	timeline := Timeline(history, true, now, 30)
	require.Len(t, timeline, 30)
	assert.Equal(t, "2026-02-19", timeline[0].Date)
	assert.Equal(t, "2026-03-20", timeline[29].Date)
	assert.Equal(t, StateUnknown, timeline[0].State)
	assert.Equal(t, StateOperational, timeline[27].State)
	assert.Equal(t, StatePartial, timeline[29].State)
}

func setupStatusService(t *testing.T) (*StatusService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewStatusService(
		repository.NewApplicationRepository(db),
		repository.NewStatusHistoryRepository(db),
		testConfig(),
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestStatusService_PublicStatus(t *testing.T) {
	service, db, cleanup := setupStatusService(t)
	defer cleanup()

	now := time.Now().UTC()
	web := testutil.TestApplication(t, db, testutil.WithAppName("Predict Web"))
	api := testutil.TestApplication(t, db, testutil.WithAppName("Predict API"), testutil.InMaintenance("Migration"))
	testutil.TestStatusHistory(t, db, web.ID, false, now.AddDate(0, 0, -40))
	testutil.TestStatusHistory(t, db, api.ID, false, now.AddDate(0, 0, -40))
	testutil.TestStatusHistory(t, db, api.ID, true, now.Add(-time.Minute))

	resp, err := service.PublicStatus()
	require.NoError(t, err)
	assert.False(t, resp.Operational)
	require.Len(t, resp.Apps, 2)

	// 按名称排序
	assert.Equal(t, "Predict API", resp.Apps[0].Name)
	assert.True(t, resp.Apps[0].Maintenance)
	assert.Equal(t, StateMaintenance, resp.Apps[0].State)
	require.Len(t, resp.Apps[0].Timeline, 30)
	assert.Contains(t, []string{StatePartial, StateMaintenance}, resp.Apps[0].Timeline[29].State)

	assert.Equal(t, "Predict Web", resp.Apps[1].Name)
	for _, day := range resp.Apps[1].Timeline {
		assert.Equal(t, StateOperational, day.State)
	}
}

func TestStatusService_PublicStatus_Cached(t *testing.T) {
	service, db, cleanup := setupStatusService(t)
	defer cleanup()

	testutil.TestApplication(t, db)

	first, err := service.PublicStatus()
	require.NoError(t, err)
	require.Len(t, first.Apps, 1)

	testutil.TestApplication(t, db)

	second, err := service.PublicStatus()
	require.NoError(t, err)
	assert.Len(t, second.Apps, 1)
	assert.Same(t, first, second)
}

func TestStatusService_MaintenanceMessage(t *testing.T) {
	service, db, cleanup := setupStatusService(t)
	defer cleanup()

	running := testutil.TestApplication(t, db)
	down := testutil.TestApplication(t, db, testutil.InMaintenance("Retour vers 14h"))
	targeted := testutil.TestApplication(t, db, testutil.InMaintenance("Bêta fermée", "user-1", "user-2"))

	resp, err := service.MaintenanceMessage(running.ID, "")
	require.NoError(t, err)
	assert.False(t, resp.Maintenance)
	assert.Empty(t, resp.Message)

	resp, err = service.MaintenanceMessage(down.ID, "anyone")
	require.NoError(t, err)
	assert.True(t, resp.Maintenance)
	assert.Equal(t, "Retour vers 14h", resp.Message)

	resp, err = service.MaintenanceMessage(targeted.ID, "user-2")
	require.NoError(t, err)
	assert.True(t, resp.Maintenance)

	resp, err = service.MaintenanceMessage(targeted.ID, "user-3")
	require.NoError(t, err)
	assert.False(t, resp.Maintenance)

	resp, err = service.MaintenanceMessage(targeted.ID, "")
	require.NoError(t, err)
	assert.False(t, resp.Maintenance)

	_, err = service.MaintenanceMessage("missing", "")
	assert.Equal(t, ErrApplicationNotFound, err)
}
