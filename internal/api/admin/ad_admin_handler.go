package admin

import (
	"admincms/internal/api/response"
	"admincms/internal/auth"
	"admincms/internal/constants"
	"admincms/internal/fillable"
	"admincms/internal/service"
	"admincms/internal/types"

	"github.com/gin-gonic/gin"
)

const (
	zonesIndex = "/admin/ad-zones"
	adsIndex   = "/admin/advertisements"
)

// AdZoneAdminHandler 广告位管理处理器
type AdZoneAdminHandler struct {
	Base
	zoneService service.AdZoneService
}

// NewAdZoneAdminHandler 创建广告位管理处理器实例
func NewAdZoneAdminHandler(base Base, zoneService service.AdZoneService) *AdZoneAdminHandler {
	return &AdZoneAdminHandler{Base: base, zoneService: zoneService}
}

func (h *AdZoneAdminHandler) List(c *gin.Context) {
	page, err := h.zoneService.List(c.Request.Context(), params(c), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.List(c, page, h.pending(c))
}

func (h *AdZoneAdminHandler) CreateForm(c *gin.Context) {
	response.OK(c, constants.SuccessGet, gin.H{"options": h.zoneService.FormOptions(fillable.Create, auth.MustGet(c))})
}

func (h *AdZoneAdminHandler) Store(c *gin.Context) {
	var req types.AdZoneCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	zone, err := h.zoneService.Create(c.Request.Context(), req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.notify(c, "广告位已创建")
	response.Written(c, constants.SuccessCreate, zone, zonesIndex)
}

func (h *AdZoneAdminHandler) Edit(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	zone, err := h.zoneService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, constants.ErrZoneNotFound)
		return
	}
	opts := h.zoneService.FormOptions(fillable.Update, auth.MustGet(c))
	response.OK(c, constants.SuccessGet, gin.H{"zone": zone, "options": opts})
}

func (h *AdZoneAdminHandler) Update(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	var req types.AdZoneUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	zone, err := h.zoneService.Update(c.Request.Context(), id, req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrZoneNotFound)
		return
	}
	h.notify(c, "广告位已更新")
	response.Written(c, constants.SuccessUpdate, zone, zonesIndex)
}

func (h *AdZoneAdminHandler) Destroy(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.zoneService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, constants.ErrZoneNotFound)
		return
	}
	h.notify(c, "广告位已删除")
	response.Written(c, constants.SuccessDelete, nil, zonesIndex)
}

func (h *AdZoneAdminHandler) ToggleStatus(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	zone, err := h.zoneService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, constants.ErrZoneNotFound)
		return
	}
	h.notify(c, "广告位状态已更新")
	response.Written(c, constants.SuccessToggle, zone, zonesIndex)
}

// AdvertisementAdminHandler 广告管理处理器
type AdvertisementAdminHandler struct {
	Base
	adService service.AdvertisementService
}

// NewAdvertisementAdminHandler 创建广告管理处理器实例
func NewAdvertisementAdminHandler(base Base, adService service.AdvertisementService) *AdvertisementAdminHandler {
	return &AdvertisementAdminHandler{Base: base, adService: adService}
}

func (h *AdvertisementAdminHandler) List(c *gin.Context) {
	page, err := h.adService.List(c.Request.Context(), params(c), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.List(c, page, h.pending(c))
}

func (h *AdvertisementAdminHandler) CreateForm(c *gin.Context) {
	opts, err := h.adService.FormOptions(c.Request.Context(), fillable.Create, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.OK(c, constants.SuccessGet, gin.H{"options": opts})
}

func (h *AdvertisementAdminHandler) Store(c *gin.Context) {
	var req types.AdvertisementCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	ad, err := h.adService.Create(c.Request.Context(), req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.notify(c, "广告已创建")
	response.Written(c, constants.SuccessCreate, ad, adsIndex)
}

func (h *AdvertisementAdminHandler) Edit(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	viewer := auth.MustGet(c)
	ad, err := h.adService.Get(c.Request.Context(), id, viewer)
	if err != nil {
		h.fail(c, err, constants.ErrAdNotFound)
		return
	}
	opts, err := h.adService.FormOptions(c.Request.Context(), fillable.Update, viewer)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.OK(c, constants.SuccessGet, gin.H{"advertisement": ad, "options": opts})
}

func (h *AdvertisementAdminHandler) Update(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	var req types.AdvertisementUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	ad, err := h.adService.Update(c.Request.Context(), id, req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrAdNotFound)
		return
	}
	h.notify(c, "广告已更新")
	response.Written(c, constants.SuccessUpdate, ad, adsIndex)
}

func (h *AdvertisementAdminHandler) Destroy(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.adService.Delete(c.Request.Context(), id, auth.MustGet(c)); err != nil {
		h.fail(c, err, constants.ErrAdNotFound)
		return
	}
	h.notify(c, "广告已删除")
	response.Written(c, constants.SuccessDelete, nil, adsIndex)
}

// ToggleStatus 投放或停用广告
func (h *AdvertisementAdminHandler) ToggleStatus(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	ad, err := h.adService.ToggleStatus(c.Request.Context(), id, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrAdNotFound)
		return
	}
	h.notify(c, "广告状态已更新")
	response.Written(c, constants.SuccessToggle, ad, adsIndex)
}
