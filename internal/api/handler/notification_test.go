package handler

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/service"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

func setupNotificationHandler(t *testing.T, messenger *fakeMessenger) (*gin.Engine, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	handler := NewNotificationHandler(service.NewNotificationService(
		repository.NewNotificationRepository(db),
		messenger,
		nil,
		testConfig(),
		nil,
		nil,
	))

	router := gin.New()
	router.Use(mockAuth("01HADMIN"))
	router.GET("/notifications", handler.List)
	router.POST("/notifications", handler.Create)
	router.GET("/notifications/:id", handler.Get)
	router.POST("/notifications/:id/unpin", handler.Unpin)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return router, cleanup
}

func TestNotificationHandler_Create_TelegramPinned(t *testing.T) {
	messenger := &fakeMessenger{}
	router, cleanup := setupNotificationHandler(t, messenger)
	defer cleanup()

	w := performRequest(router, "POST", "/notifications", dto.CreateNotificationRequest{
		Title:   "Nouveauté",
		Message: "Les pronostics du week-end sont en ligne",
		Channel: model.ChannelTelegram,
		Pin:     true,
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var n model.Notification
	decodeData(t, resp, &n)
	assert.Equal(t, model.NotificationSent, n.Status)
	assert.True(t, n.Pinned)
	assert.NotNil(t, n.SentAt)

	texts := messenger.Texts()
	require.Len(t, texts, 1)
	assert.True(t, strings.HasPrefix(texts[0], "<b>Nouveauté</b>"))

	w = performRequest(router, "POST", "/notifications/"+n.ID+"/unpin", nil)
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/notifications/"+n.ID+"/unpin", nil)
	assert.Equal(t, response.CodeDuplicateAction, parseResponse(t, w).Code)
}

func TestNotificationHandler_Create_EmailQueueDisabled(t *testing.T) {
	router, cleanup := setupNotificationHandler(t, &fakeMessenger{})
	defer cleanup()

	w := performRequest(router, "POST", "/notifications", dto.CreateNotificationRequest{
		Title:   "Newsletter",
		Message: "Bonjour",
		Channel: model.ChannelEmail,
	})
	resp := parseResponse(t, w)

	// 渠道失败记录在通知上，请求本身成功
	require.Equal(t, response.CodeSuccess, resp.Code)
	var n model.Notification
	decodeData(t, resp, &n)
	assert.Equal(t, model.NotificationFailed, n.Status)
	assert.Contains(t, n.Error, "email:")

	w = performRequest(router, "GET", "/notifications", nil)
	var page response.PageData
	decodeData(t, parseResponse(t, w), &page)
	assert.Equal(t, int64(1), page.Total)
}

func TestNotificationHandler_Create_InvalidChannel(t *testing.T) {
	router, cleanup := setupNotificationHandler(t, &fakeMessenger{})
	defer cleanup()

	w := performRequest(router, "POST", "/notifications", map[string]string{
		"title":   "x",
		"message": "y",
		"channel": "sms",
	})
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}

func TestNotificationHandler_Get_NotFound(t *testing.T) {
	router, cleanup := setupNotificationHandler(t, &fakeMessenger{})
	defer cleanup()

	w := performRequest(router, "GET", "/notifications/01HMISSING", nil)
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}
