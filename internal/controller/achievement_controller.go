package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 获取用户成就
// @Description 获取用户的等级、连续学习、徽章和排名
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserAchievements}
// @Router /achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	achievements, err := c.AchievementService.GetUserAchievements(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, achievements)
}

// @Summary 获取徽章列表
// @Description 全部徽章，已获得的附带解锁时间
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.BadgeView}
// @Router /achievements/badges [get]
func (c *AchievementController) GetBadges(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	badges, err := c.AchievementService.GetBadges(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, badges)
}

// @Summary 获取排行榜
// @Description 获取用户经验排行榜
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /achievements/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	limit := util.QueryInt(ctx.Query("limit"), util.DefaultLeaderboardLimit, 1, util.MaxLeaderboardLimit)

	leaderboard, err := c.AchievementService.GetLeaderboard(ctx.Request.Context(), limit)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, leaderboard)
}
