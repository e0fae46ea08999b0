package admin

import (
	"admincms/internal/api/response"
	"admincms/internal/auth"
	"admincms/internal/query"
	"admincms/pkg/flash"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Base 后台处理器共用的依赖
type Base struct {
	logger *logger.Logger
	// flash 可以为空，此时不发送提示消息
	flash *flash.Store
}

// NewBase 创建后台处理器共用依赖
func NewBase(log *logger.Logger, store *flash.Store) Base {
	return Base{logger: log, flash: store}
}

// notify 写操作成功后给当前用户留一条提示
func (b Base) notify(c *gin.Context, text string) {
	if b.flash == nil {
		return
	}
	p := auth.MustGet(c)
	if err := b.flash.Push(c.Request.Context(), p.UserID, flash.Message{Level: flash.LevelSuccess, Text: text}); err != nil {
		b.logger.Warn("写入提示消息失败", "user_id", p.UserID, "error", err)
	}
}

// pending 取出当前用户待显示的提示
func (b Base) pending(c *gin.Context) *flash.Message {
	if b.flash == nil {
		return nil
	}
	p := auth.MustGet(c)
	msg, err := b.flash.Pop(c.Request.Context(), p.UserID)
	if err != nil {
		b.logger.Warn("读取提示消息失败", "user_id", p.UserID, "error", err)
		return nil
	}
	return msg
}

func (b Base) fail(c *gin.Context, err error, notFound string) {
	response.Error(c, b.logger, err, notFound)
}

func params(c *gin.Context) query.Params {
	return query.ParamsFromValues(c.Request.URL.Query())
}
