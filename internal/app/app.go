package app

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/controller"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/service"
	"codepath_backend/pkg/configwatcher"
	"codepath_backend/pkg/database"
	"codepath_backend/pkg/logger"
	"codepath_backend/pkg/monitoring"
	"codepath_backend/pkg/security"
	"codepath_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Rules           *service.RulesHolder
	tracer          *sdktrace.TracerProvider
	stopWatch       context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	streak   *repository.StreakRepository
	badge    *repository.BadgeRepository
	goal     *repository.GoalRepository
	calendar *repository.CalendarRepository
	cache    *repository.CacheRepository
}

type services struct {
	storage        *service.StorageService
	userSync       *service.UserSyncService
	progress       *service.ProgressService
	catalog        *service.CatalogService
	recommendation *service.RecommendationService
	achievement    *service.AchievementService
	goal           *service.GoalService
	calendar       *service.CalendarService
	help           *service.HelpService
	report         *service.ReportService
}

type controllers struct {
	health         *controller.HealthController
	webhook        *controller.WebhookController
	progress       *controller.ProgressController
	catalog        *controller.CatalogController
	recommendation *controller.RecommendationController
	achievement    *controller.AchievementController
	goal           *controller.GoalController
	calendar       *controller.CalendarController
	help           *controller.HelpController
	report         *controller.ReportController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		catalog:  repository.NewCatalogRepository(db),
		progress: repository.NewProgressRepository(db),
		streak:   repository.NewStreakRepository(db),
		badge:    repository.NewBadgeRepository(db),
		goal:     repository.NewGoalRepository(db),
		calendar: repository.NewCalendarRepository(db),
		cache:    repository.NewCacheRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.userSync = service.NewUserSyncService(repos.user, repos.cache, cfg.Webhook)
	s.progress = service.NewProgressService(
		db,
		repos.user,
		repos.catalog,
		repos.progress,
		repos.streak,
		repos.badge,
		repos.goal,
		repos.cache,
		a.Rules,
	)
	s.catalog = service.NewCatalogService(repos.catalog, repos.progress)
	s.recommendation = service.NewRecommendationService(repos.catalog, repos.progress, repos.cache, a.Rules)
	s.achievement = service.NewAchievementService(repos.badge, repos.user, repos.cache, a.Rules)
	s.goal = service.NewGoalService(repos.goal)
	s.calendar = service.NewCalendarService(repos.calendar)
	s.help = service.NewHelpService(cfg.AI)
	s.report = service.NewReportService(s.progress, s.achievement, s.goal, repos.catalog, s.storage)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		health:         controller.NewHealthController(a.DB, a.Redis),
		webhook:        controller.NewWebhookController(s.userSync),
		progress:       controller.NewProgressController(s.progress),
		catalog:        controller.NewCatalogController(s.catalog),
		recommendation: controller.NewRecommendationController(s.recommendation),
		achievement:    controller.NewAchievementController(s.achievement),
		goal:           controller.NewGoalController(s.goal),
		calendar:       controller.NewCalendarController(s.calendar),
		help:           controller.NewHelpController(s.help),
		report:         controller.NewReportController(s.report),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute, security.KeyByIP))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// prepareDatabase 非 release 模式或显式要求时执行迁移，之后按配置写入默认目录
func prepareDatabase(db *gorm.DB, cfg *config.Config) error {
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		if cfg.Gamification.SeedCatalog {
			if err := database.Seed(db); err != nil {
				return err
			}
		}
	}
	return nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := prepareDatabase(db, cfg); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	rules, err := service.NewRules(cfg.Gamification)
	if err != nil {
		logger.Log.Fatal("Invalid gamification config", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Rules:  service.NewRulesHolder(rules),
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis 只用于排行榜和推荐缓存，连接失败时降级为直接查库
	if cfg.Redis.Host != "" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db, app.Redis)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("codepath-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(app.Rules.Reload)
	app.watchConfig()

	return app
}

// watchConfig 配置文件变更时回调已注册的函数
func (a *App) watchConfig() {
	if a.Config.Path == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	reloaders := make([]configwatcher.ConfigReloader, 0, len(a.configCallbacks))
	for _, cb := range a.configCallbacks {
		reloaders = append(reloaders, cb)
	}
	if err := configwatcher.WatchConfig(ctx, a.Config.Path, reloaders...); err != nil {
		cancel()
		logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		return
	}
	a.stopWatch = cancel
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放后台资源
func (a *App) Close(ctx context.Context) {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
