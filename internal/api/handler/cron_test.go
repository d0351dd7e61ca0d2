package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/service"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

type cronEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	messenger *fakeMessenger
}

func setupCronHandler(t *testing.T, provider ai.Provider, cfg *config.Config) (*cronEnv, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	env := &cronEnv{db: db, messenger: &fakeMessenger{}}

	appRepo := repository.NewApplicationRepository(db)
	content := service.NewContentService(provider, env.messenger, nil, cfg, nil)
	broadcast := service.NewBroadcastService(
		appRepo,
		repository.NewPlanRepository(db),
		service.NewDiscountService(repository.NewDiscountRepository(db), nil, nil),
		service.NewMaintenanceService(repository.NewMaintenanceEventRepository(db), appRepo, nil, nil),
		content,
		cfg,
		nil,
	)
	handler := NewCronHandler(broadcast, nil)

	router := gin.New()
	router.GET("/cron/daily-summary", handler.DailySummary)
	router.GET("/cron/community-post", handler.CommunityPost)
	router.GET("/cron/status", handler.Status)
	env.router = router

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return env, cleanup
}

func parseCronBody(t *testing.T, body []byte) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCronHandler_DailySummary_AllTopics(t *testing.T) {
	env, cleanup := setupCronHandler(t, &fakeProvider{reply: `{"post": true, "text": "Résumé"}`}, testConfig())
	defer cleanup()

	testutil.TestApplication(t, env.db)

	w := performRequest(env.router, "GET", "/cron/daily-summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := parseCronBody(t, w.Body.Bytes())
	lines := strings.Split(body["message"], "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "status"))
}

func TestCronHandler_DailySummary_SelectedTopics(t *testing.T) {
	env, cleanup := setupCronHandler(t, &fakeProvider{reply: `{"post": true, "text": "Résumé"}`}, testConfig())
	defer cleanup()

	testutil.TestApplication(t, env.db)

	w := performRequest(env.router, "GET", "/cron/daily-summary?types=status&contentTypes=weather", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := parseCronBody(t, w.Body.Bytes())
	lines := strings.Split(body["message"], "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "status"))
	assert.True(t, strings.HasPrefix(lines[1], "weather"))
}

func TestCronHandler_MissingConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Telegram.BotToken = ""

	env, cleanup := setupCronHandler(t, &fakeProvider{reply: "x"}, cfg)
	defer cleanup()

	w := performRequest(env.router, "GET", "/cron/status", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := parseCronBody(t, w.Body.Bytes())
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, env.messenger.Texts())
}

func TestCronHandler_CommunityPost(t *testing.T) {
	env, cleanup := setupCronHandler(t, &fakeProvider{reply: "Votre pronostic du jour ?"}, testConfig())
	defer cleanup()

	w := performRequest(env.router, "GET", "/cron/community-post?theme=tennis", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := parseCronBody(t, w.Body.Bytes())
	assert.Contains(t, body["message"], "community")
	assert.Equal(t, []string{"Votre pronostic du jour ?"}, env.messenger.Texts())
}
