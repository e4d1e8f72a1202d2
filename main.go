// @title CodePath 后端 API
// @version 1.0
// @description CodePath 编程学习平台的后端服务：课程目录、经验等级、连续学习、徽章与推荐。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"codepath_backend/internal/app"
	"codepath_backend/internal/config"
	"codepath_backend/pkg/logger"
	"context"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移和目录初始化，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		application.Close(context.Background())
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
