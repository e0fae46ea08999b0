package admin

import (
	"admincms/internal/api/response"
	"admincms/internal/auth"
	"admincms/internal/constants"
	"admincms/internal/service"
	"admincms/internal/types"

	"github.com/gin-gonic/gin"
)

const uploadsIndex = "/admin/uploads"

// UploadAdminHandler 文件上传处理器
type UploadAdminHandler struct {
	Base
	mediaService service.MediaService
}

// NewUploadAdminHandler 创建文件上传处理器实例
func NewUploadAdminHandler(base Base, mediaService service.MediaService) *UploadAdminHandler {
	return &UploadAdminHandler{Base: base, mediaService: mediaService}
}

func (h *UploadAdminHandler) List(c *gin.Context) {
	page, err := h.mediaService.List(c.Request.Context(), params(c), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.List(c, page, h.pending(c))
}

// Store 上传文件，表单字段 file，可选 attachable_type 和 attachable_id
func (h *UploadAdminHandler) Store(c *gin.Context) {
	var req types.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Invalid(c, map[string]string{"file": constants.ErrFileRequired})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.fail(c, err, "")
		return
	}
	defer file.Close()

	media, err := h.mediaService.Upload(c.Request.Context(), service.Upload{
		Name:           header.Filename,
		Size:           header.Size,
		Reader:         file,
		AttachableType: req.AttachableType,
		AttachableID:   req.AttachableID,
	}, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.notify(c, "文件已上传")
	response.Written(c, constants.SuccessUpload, media, uploadsIndex)
}

func (h *UploadAdminHandler) Destroy(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.mediaService.Delete(c.Request.Context(), id, auth.MustGet(c)); err != nil {
		h.fail(c, err, constants.ErrMediaNotFound)
		return
	}
	h.notify(c, "文件已删除")
	response.Written(c, constants.SuccessDelete, nil, uploadsIndex)
}
