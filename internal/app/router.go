package app

import (
	"codepath_backend/docs"
	"codepath_backend/internal/config"
	"codepath_backend/internal/middleware"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/monitoring"
	"codepath_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, s.userSync))
	{
		a.registerLearningRoutes(authGroup, c)
		a.registerAchievementRoutes(authGroup, c)
		a.registerPlanningRoutes(authGroup, c)

		// AI 接口按用户单独限流
		help := authGroup.Group("/help")
		help.Use(security.RateLimiter(20, time.Minute, security.KeyByUser(util.CtxUserID)))
		help.POST("", c.help.Ask)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/webhooks/identity", c.webhook.HandleIdentityEvent)
	}
}

func (a *App) registerLearningRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.progress.GetProfile)
	rg.GET("/stats", c.progress.GetStats)
	rg.GET("/activity", c.progress.GetActivity)

	// 课程目录
	rg.GET("/subjects", c.catalog.ListSubjects)
	rg.GET("/subjects/:slug", c.catalog.GetSubject)
	rg.GET("/subjects/:slug/progress", c.progress.GetSubjectProgress)
	rg.GET("/lessons/:id", c.catalog.GetLesson)
	rg.POST("/lessons/:id/complete", c.progress.CompleteLesson)

	// 推荐
	rg.GET("/recommendations", c.recommendation.GetRecommendations)
	rg.GET("/recommendations/difficulty", c.recommendation.GetDifficultyStats)

	rg.POST("/reports/progress", c.report.ExportProgress)
}

func (a *App) registerAchievementRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/achievements", c.achievement.GetUserAchievements)
	rg.GET("/achievements/badges", c.achievement.GetBadges)
	rg.GET("/achievements/leaderboard", c.achievement.GetLeaderboard)
}

func (a *App) registerPlanningRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/goals", c.goal.GetUserGoals)
	rg.POST("/goals", c.goal.CreateGoal)
	rg.PATCH("/goals/:id", c.goal.UpdateGoalProgress)
	rg.DELETE("/goals/:id", c.goal.DeleteGoal)

	rg.GET("/calendar", c.calendar.GetEvents)
	rg.POST("/calendar", c.calendar.CreateEvent)
	rg.PATCH("/calendar/:id/toggle", c.calendar.ToggleEvent)
}
