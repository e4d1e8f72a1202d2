package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"
	"io"

	"github.com/gin-gonic/gin"
)

// 回调请求体上限
const maxWebhookBody = 1 << 20

type WebhookController struct {
	UserSyncService *service.UserSyncService
}

func NewWebhookController(userSyncService *service.UserSyncService) *WebhookController {
	return &WebhookController{UserSyncService: userSyncService}
}

// @Summary 身份服务回调
// @Description 同步 user.created / user.updated / user.deleted 事件，需要 svix-id、svix-timestamp、svix-signature 头
// @Tags 系统
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /webhooks/identity [post]
func (c *WebhookController) HandleIdentityEvent(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		util.BadRequest(ctx, "Failed to read body")
		return
	}

	if err := c.UserSyncService.HandleWebhook(ctx.Request.Context(), ctx.Request.Header, body); err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"received": true})
}
