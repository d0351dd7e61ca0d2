package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/testutil"
)

func setupMediaService(t *testing.T, store ObjectStore) (*MediaService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewMediaService(repository.NewMediaRepository(db), store, testConfig(), nil, nil)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestMediaService_Upload(t *testing.T) {
	store := newFakeStore()
	service, _, cleanup := setupMediaService(t, store)
	defer cleanup()

	item, err := service.Upload(context.Background(), "banner.PNG", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(item.ObjectKey, "media/"))
	assert.True(t, strings.HasSuffix(item.ObjectKey, ".png"))
	assert.Equal(t, "https://cdn.predict.app/"+item.ObjectKey, item.URL)
	assert.Equal(t, int64(9), item.Size)
	assert.Contains(t, store.objects, item.ObjectKey)

	// 未知 MIME 时使用文件扩展名
	item, err = service.Upload(context.Background(), "clip.MOV", "video/quicktime", []byte("mov"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(item.ObjectKey, ".mov"))
}

func TestMediaService_Upload_Rejected(t *testing.T) {
	store := newFakeStore()
	service, _, cleanup := setupMediaService(t, store)
	defer cleanup()

	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        error
	}{
		{"empty", "image/png", nil, ErrEmptyFile},
		{"too large", "image/png", make([]byte, 2048), ErrFileTooLarge},
		{"pdf", "application/pdf", []byte("pdf"), ErrUnsupportedMediaType},
		{"missing type", "", []byte("x"), ErrUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Upload(context.Background(), "file", tt.contentType, tt.data)
			assert.Equal(t, tt.want, err)
		})
	}
	assert.Empty(t, store.objects)
}

func TestMediaService_Upload_NoStorage(t *testing.T) {
	service, _, cleanup := setupMediaService(t, nil)
	defer cleanup()

	_, err := service.Upload(context.Background(), "a.png", "image/png", []byte("x"))
	assert.Equal(t, ErrStorageNotConfigured, err)

	// 外部 URL 仍可登记
	item, err := service.Register(context.Background(), &dto.RegisterMediaRequest{
		URL:  "https://images.example.com/a.jpg",
		Type: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Empty(t, item.ObjectKey)
}

func TestMediaService_StoreGenerated(t *testing.T) {
	store := newFakeStore()
	service, _, cleanup := setupMediaService(t, store)
	defer cleanup()

	item, err := service.StoreGenerated(context.Background(), "image/png", []byte("generated"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(item.ObjectKey, "ai-images/"))
}

func TestMediaService_Delete(t *testing.T) {
	store := newFakeStore()
	service, db, cleanup := setupMediaService(t, store)
	defer cleanup()

	uploaded, err := service.Upload(context.Background(), "a.png", "image/png", []byte("x"))
	require.NoError(t, err)
	external := testutil.TestMedia(t, db)

	require.NoError(t, service.Delete(context.Background(), uploaded.ID))
	assert.Equal(t, []string{uploaded.ObjectKey}, store.deleted)

	require.NoError(t, service.Delete(context.Background(), external.ID))
	assert.Len(t, store.deleted, 1)

	assert.Equal(t, ErrMediaNotFound, service.Delete(context.Background(), external.ID))

	items, total, err := service.List(1, 10, "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}
