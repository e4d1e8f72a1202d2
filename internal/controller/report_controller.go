package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// @Summary 导出学习报告
// @Description 生成 JSON 格式的学习报告并上传到对象存储
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=service.ReportResult}
// @Router /reports/progress [post]
func (c *ReportController) ExportProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.ReportService.Export(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Created(ctx, result)
}
