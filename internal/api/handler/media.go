package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService
	maxSize      int64
}

func NewMediaHandler(mediaService *service.MediaService, maxSize int64) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		maxSize:      maxSize,
	}
}

// List 媒体库
// GET /api/v1/admin/media?page=&page_size=&type=image/
func (h *MediaHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	items, total, err := h.mediaService.List(page, pageSize, c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Upload 上传图片或视频到对象存储
// POST /api/v1/admin/media (multipart, 字段 file)
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}
	if h.maxSize > 0 && file.Size > h.maxSize {
		response.ParamError(c, service.ErrFileTooLarge.Error())
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}
	defer f.Close()

	// 多读一个字节，交给 service 判断是否超限
	reader := io.Reader(f)
	if h.maxSize > 0 {
		reader = io.LimitReader(f, h.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	item, err := h.mediaService.Upload(c.Request.Context(), file.Filename, contentType, data)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "上传成功", &dto.UploadMediaResponse{
		ID:   item.ID,
		URL:  item.URL,
		Type: item.Type,
		Size: item.Size,
	})
}

// Register 登记外部 URL
// POST /api/v1/admin/media/register
func (h *MediaHandler) Register(c *gin.Context) {
	var req dto.RegisterMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.mediaService.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已登记", item)
}

// Delete 删除媒体
// DELETE /api/v1/admin/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.mediaService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
