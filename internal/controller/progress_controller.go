package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 获取当前用户
// @Description 返回本地用户资料与学习进度字段
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /profile [get]
func (c *ProgressController) GetProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.ProgressService.GetUserStats(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, stats.User)
}

// @Summary 获取学习统计
// @Description 已完成课程数、活跃天数、等级信息与连续学习状态
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserStats}
// @Router /stats [get]
func (c *ProgressController) GetStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.ProgressService.GetUserStats(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 获取学习热力图
// @Description 最近 N 天每天的课程数与经验
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param days query int false "天数" default(90)
// @Success 200 {object} util.Response{data=[]service.ActivityDay}
// @Router /activity [get]
func (c *ProgressController) GetActivity(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := util.QueryInt(ctx.Query("days"), util.DefaultActivityDays, 1, util.MaxActivityDays)
	activity, err := c.ProgressService.GetActivity(ctx.Request.Context(), userID, days)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, activity)
}

// @Summary 获取科目进度
// @Description 科目下每个主题、每节课的完成情况
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "科目标识"
// @Success 200 {object} util.Response{data=service.SubjectProgress}
// @Failure 404 {object} util.Response
// @Router /subjects/{slug}/progress [get]
func (c *ProgressController) GetSubjectProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	progress, err := c.ProgressService.GetSubjectProgress(ctx.Request.Context(), userID, ctx.Param("slug"))
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 完成课程
// @Description 发放经验、更新等级与连续学习、解锁徽章。重复完成返回 alreadyCompleted=true
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	lessonID := util.MustParseUint(ctx.Param("id"))
	if lessonID == 0 {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	result, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), userID, lessonID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
