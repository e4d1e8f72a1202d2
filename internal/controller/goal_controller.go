package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GoalController 学习目标

type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

// @Summary 获取所有学习目标
// @Description 获取用户的所有学习目标，最新的在前
// @Tags 学习目标
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Goal}
// @Router /goals [get]
func (c *GoalController) GetUserGoals(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	goals, err := c.GoalService.GetUserGoals(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, goals)
}

// @Summary 创建学习目标
// @Description type 为 lessons/xp/streak 时完成课程会自动更新进度
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param goal body service.GoalRequest true "目标信息"
// @Success 201 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response
// @Router /goals [post]
func (c *GoalController) CreateGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.GoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.CreateGoal(ctx.Request.Context(), userID, req)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Created(ctx, goal)
}

// @Summary 更新目标进度
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Param progress body service.GoalProgressRequest true "当前值"
// @Success 200 {object} util.Response{data=model.Goal}
// @Failure 404 {object} util.Response
// @Router /goals/{id} [patch]
func (c *GoalController) UpdateGoalProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.GoalProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.UpdateGoalProgress(ctx.Request.Context(), userID, ctx.Param("id"), *req.CurrentValue)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, goal)
}

// @Summary 删除学习目标
// @Tags 学习目标
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /goals/{id} [delete]
func (c *GoalController) DeleteGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.GoalService.DeleteGoal(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Goal deleted"})
}
