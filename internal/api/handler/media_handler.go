package handler

import (
	"net/http"
	"strconv"

	"admincms/internal/api/response"
	"admincms/internal/constants"
	"admincms/internal/service"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MediaHandler 上传文件读取处理器
type MediaHandler struct {
	mediaService service.MediaService
	logger       *logger.Logger
}

// NewMediaHandler 创建文件读取处理器实例
func NewMediaHandler(mediaService service.MediaService, logger *logger.Logger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, logger: logger}
}

// GetMedia 输出文件内容
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	media, rc, err := h.mediaService.Open(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err, constants.ErrMediaNotFound)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(media.OriginalName))
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, media.Size, media.MimeType, rc, nil)
}

