package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	RecommendationService *service.RecommendationService
}

func NewRecommendationController(recommendationService *service.RecommendationService) *RecommendationController {
	return &RecommendationController{RecommendationService: recommendationService}
}

// @Summary 获取推荐主题
// @Description 每个科目的下一个主题、前置已完成的主题、与近期难度匹配的主题
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回数量，最大 20" default(5)
// @Success 200 {object} util.Response{data=[]gamification.Recommendation}
// @Router /recommendations [get]
func (c *RecommendationController) GetRecommendations(ctx *gin.Context) {
	limit := util.QueryInt(ctx.Query("limit"), 0, 0, util.MaxRecommendationLimit)

	recs, err := c.RecommendationService.GetRecommendations(ctx.Request.Context(), util.GetUserID(ctx), limit)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, recs)
}

// @Summary 难度统计
// @Description 各难度已完成课程数与主题总数
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /recommendations/difficulty [get]
func (c *RecommendationController) GetDifficultyStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.RecommendationService.GetDifficultyStats(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
