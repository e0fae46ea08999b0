package handler

import (
	"admincms/internal/api/response"
	"admincms/internal/constants"
	"admincms/internal/service"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AdHandler 广告处理器
type AdHandler struct {
	adService service.AdvertisementService
	logger    *logger.Logger
}

// NewAdHandler 创建广告处理器实例
func NewAdHandler(adService service.AdvertisementService, logger *logger.Logger) *AdHandler {
	return &AdHandler{
		adService: adService,
		logger:    logger,
	}
}

// GetZoneAds 获取广告位中正在投放的广告
// @Summary 获取广告位广告
// @Tags 广告
// @Produce json
// @Param slug path string true "广告位标识"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/zones/{slug}/ads [get]
func (h *AdHandler) GetZoneAds(c *gin.Context) {
	ads, err := h.adService.RunningForZone(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, h.logger, err, constants.ErrZoneNotFound)
		return
	}
	response.OK(c, constants.SuccessGet, ads)
}
