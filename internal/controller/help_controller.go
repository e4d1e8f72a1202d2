package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HelpController struct {
	HelpService *service.HelpService
}

func NewHelpController(helpService *service.HelpService) *HelpController {
	return &HelpController{HelpService: helpService}
}

// @Summary AI 助教
// @Description 向 AI 助教提问，context 为当前学习的主题
// @Tags AI
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.HelpRequest true "问题"
// @Success 200 {object} util.Response{data=service.HelpAnswer}
// @Failure 503 {object} util.Response
// @Router /help [post]
func (c *HelpController) Ask(ctx *gin.Context) {
	var req service.HelpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.HelpService.Ask(ctx.Request.Context(), req)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, answer)
}
