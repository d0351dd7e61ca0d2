package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

type broadcastEnv struct {
	service   *BroadcastService
	db        *gorm.DB
	provider  *fakeProvider
	messenger *fakeMessenger
	sleeps    []time.Duration
}

func setupBroadcastService(t *testing.T) (*broadcastEnv, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testConfig()
	cfg.Broadcast.DelaySeconds = 2

	env := &broadcastEnv{
		db:        db,
		provider:  &fakeProvider{fallback: `{"post": true, "text": "Résumé du jour"}`},
		messenger: &fakeMessenger{},
	}

	appRepo := repository.NewApplicationRepository(db)
	content := NewContentService(env.provider, env.messenger, nil, cfg, nil)
	env.service = NewBroadcastService(
		appRepo,
		repository.NewPlanRepository(db),
		NewDiscountService(repository.NewDiscountRepository(db), nil, nil),
		NewMaintenanceService(repository.NewMaintenanceEventRepository(db), appRepo, nil, nil),
		content,
		cfg,
		nil,
	)
	env.service.sleep = func(ctx context.Context, d time.Duration) error {
		env.sleeps = append(env.sleeps, d)
		return nil
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return env, cleanup
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"status", "pricing", "discounts"}, ParseTopics("status, pricing", "", " discounts "))
	assert.Nil(t, ParseTopics("", " , "))
}

func TestPlanTopics(t *testing.T) {
	tests := []struct {
		name        string
		requested   []string
		wantKnown   []string
		wantUnknown []string
	}{
		{"empty", nil, TopicOrder, nil},
		{"blank", []string{" ", ""}, TopicOrder, nil},
		{"fixed order", []string{"maintenance", "status"}, []string{"status", "maintenance"}, nil},
		{"dedupe", []string{"pricing", "PRICING", "pricing"}, []string{"pricing"}, nil},
		{"unknown kept", []string{"weather", "status", "news", "weather"}, []string{"status"}, []string{"weather", "news"}},
		{"only unknown", []string{"weather"}, nil, []string{"weather"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known, unknown := planTopics(tt.requested)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.wantUnknown, unknown)
		})
	}
}

func TestBroadcastService_StatusAllOperational(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	testutil.TestApplication(t, env.db)

	digest, err := env.service.Digest(TopicStatus)
	require.NoError(t, err)
	assert.Equal(t, AllOperationalText, digest)

	report, err := env.service.RunDailySummary(context.Background(), []string{TopicStatus})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posted)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, "status: post publié (message 1)", report.Lines[0])

	assert.Len(t, env.messenger.Calls("sendMessage"), 1)
	assert.Contains(t, env.provider.Prompts()[0], AllOperationalText)
	assert.Empty(t, env.sleeps)
}

func TestBroadcastService_StatusDigestListsMaintenance(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	testutil.TestApplication(t, env.db, testutil.WithAppName("Predict Web"), testutil.InMaintenance("Retour vers 14h"))
	testutil.TestApplication(t, env.db, testutil.WithAppName("Predict API"))

	digest, err := env.service.Digest(TopicStatus)
	require.NoError(t, err)
	assert.Contains(t, digest, "Predict Web (web) : en maintenance. Message : Retour vers 14h")
	assert.NotContains(t, digest, "Predict API")
}

func TestBroadcastService_EmptyDigestSkipsGeneration(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	report, err := env.service.RunDailySummary(context.Background(), []string{TopicPricing, TopicDiscounts})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pricing: aucune donnée, aucun post généré",
		"discounts: aucune donnée, aucun post généré",
	}, report.Lines)
	assert.Zero(t, report.Posted)
	assert.Empty(t, env.provider.Prompts())
	assert.Empty(t, env.messenger.Calls(""))
}

func TestBroadcastService_NoPost(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	testutil.TestMaintenanceEvent(t, env.db)
	env.provider.fallback = ai.NoPostSentinel

	report, err := env.service.RunDailySummary(context.Background(), []string{TopicMaintenance})
	require.NoError(t, err)
	assert.Equal(t, []string{"maintenance: aucun post généré (NO_POST)"}, report.Lines)
	assert.Empty(t, env.messenger.Calls(""))
}

func TestBroadcastService_NoPostJSONReplies(t *testing.T) {
	replies := []string{
		`"NO_POST"`,
		`{"post": "false", "text": "NO_POST"}`,
		`{"text": "NO_POST"}`,
		"```json\n{\"post\": false, \"text\": \"\"}\n```",
	}

	for _, reply := range replies {
		t.Run(reply, func(t *testing.T) {
			env, cleanup := setupBroadcastService(t)
			defer cleanup()

			testutil.TestMaintenanceEvent(t, env.db)
			env.provider.fallback = reply

			report, err := env.service.RunDailySummary(context.Background(), []string{TopicMaintenance})
			require.NoError(t, err)
			assert.Equal(t, []string{"maintenance: aucun post généré (NO_POST)"}, report.Lines)
			assert.Zero(t, report.Posted)
			assert.Empty(t, env.messenger.Calls("sendMessage"))
			assert.Empty(t, env.messenger.Calls(""))
		})
	}
}

func TestBroadcastService_AllTopicsOneLineEach(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	app := testutil.TestApplication(t, env.db)
	testutil.TestPlan(t, env.db, app.ID)
	testutil.TestDiscountCode(t, env.db)
	testutil.TestMaintenanceEvent(t, env.db)

	// pricing 生成失败，其余主题照常执行
	env.provider.failOn = map[string]error{topicLabel(TopicPricing): errUpstream}

	report, err := env.service.RunDailySummary(context.Background(), []string{"maintenance", "pricing", "weather", "status", "discounts"})
	require.NoError(t, err)
	require.Len(t, report.Lines, 5)

	assert.True(t, strings.HasPrefix(report.Lines[0], "status: post publié"))
	assert.True(t, strings.HasPrefix(report.Lines[1], "pricing: erreur - "))
	assert.Contains(t, report.Lines[1], errUpstream.Error())
	assert.True(t, strings.HasPrefix(report.Lines[2], "discounts: post publié"))
	assert.True(t, strings.HasPrefix(report.Lines[3], "maintenance: post publié"))
	assert.Equal(t, "weather: type de contenu inconnu", report.Lines[4])
	assert.Equal(t, 3, report.Posted)

	assert.Len(t, env.messenger.Calls("sendMessage"), 3)
	// 最后一个主题之后不等待
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, env.sleeps)
}

func TestBroadcastService_PublishFailureIsReported(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	env.messenger.err = errUpstream

	report, err := env.service.RunDailySummary(context.Background(), []string{TopicStatus})
	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	assert.True(t, strings.HasPrefix(report.Lines[0], "status: erreur - "))
	assert.Zero(t, report.Posted)
}

func TestBroadcastService_ConfigErrorBeforeExternalCalls(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	env.service.content.cfg.Telegram.BotToken = ""

	report, err := env.service.RunDailySummary(context.Background(), nil)
	assert.Equal(t, telegram.ErrMissingToken, err)
	assert.Nil(t, report)
	assert.Empty(t, env.provider.Prompts())

	_, err = env.service.RunCommunityPost(context.Background(), "")
	assert.Equal(t, telegram.ErrMissingToken, err)
}

func TestBroadcastService_CanceledContext(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.service.RunDailySummary(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, env.messenger.Calls(""))
}

func TestBroadcastService_RunCommunityPost(t *testing.T) {
	env, cleanup := setupBroadcastService(t)
	defer cleanup()

	env.provider.fallback = "Quel match vous attire ce week-end ?"

	report, err := env.service.RunCommunityPost(context.Background(), "les derbys")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posted)
	assert.Equal(t, "community: post publié (message 1)", report.Message())

	sent := env.messenger.Calls("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, "Quel match vous attire ce week-end ?", sent[0].Text)
	assert.Contains(t, env.provider.Prompts()[0], "les derbys")
}
