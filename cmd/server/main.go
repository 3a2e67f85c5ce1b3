package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eduback/internal/auth"
	"github.com/eduback/internal/bootstrap"
	"github.com/eduback/internal/menu"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/internal/user"
	pkgauth "github.com/eduback/pkg/auth"
	"github.com/eduback/pkg/config"
	"github.com/eduback/pkg/database"
	"github.com/eduback/pkg/logger"
	"github.com/eduback/pkg/middleware"
	"go.uber.org/zap"
)

const serviceName = "eduback"

func main() {
	// 加载配置
	if err := config.Init(""); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志
	logger.Init(&cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer database.Close()

	// 初始化Redis(memory 模式下使用内嵌实例)
	if err := database.InitRedis(&cfg.Redis); err != nil {
		logger.Fatal("初始化Redis失败", zap.Error(err))
	}
	defer database.CloseRedis()

	// 迁移与种子数据
	db := database.Get()
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	if err := bootstrap.Seed(db); err != nil {
		logger.Fatal("种子数据写入失败", zap.Error(err))
	}
	logger.Info("数据库迁移完成")

	// 创建Fiber应用
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.Server.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.HTTP.WriteTimeout) * time.Second,
	})

	// 全局中间件
	app.Use(middleware.Recovery())
	app.Use(middleware.Cors())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	// 健康检查
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"service": serviceName,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 组装依赖
	tokenManager := pkgauth.NewTokenManager(&cfg.JWT)
	jwtAuth := middleware.JWTAuth(tokenManager)

	permCache := database.NewCache("rbac")
	rbacRepo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(rbacRepo).
		WithCache(permCache, time.Duration(cfg.Menu.PermCacheTTL)*time.Second)
	assigner := rbac.NewAssigner(rbacRepo, resolver)

	userRepo := user.NewRepository(db)
	menuService := menu.NewService(menu.NewRepository(db), resolver, cfg.Menu.OrphanPolicy)
	authService := auth.NewService(userRepo, resolver, assigner, menuService, tokenManager)

	// 注册路由
	api := app.Group("/api")
	auth.NewController(authService).RegisterRoutes(api, jwtAuth)
	menu.NewController(menuService).RegisterRoutes(api, jwtAuth, resolver)
	rbac.NewController(rbacRepo, assigner, resolver).RegisterRoutes(api, jwtAuth)
	user.NewController(userRepo, resolver).RegisterRoutes(api, jwtAuth)

	// 启动服务
	addr := cfg.Server.HTTP.Addr()
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Fatal("服务启动失败", zap.Error(err))
		}
	}()
	logger.Info("服务就绪", zap.String("addr", addr))

	// 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务...")
	if err := app.Shutdown(); err != nil {
		logger.Error("服务关闭异常", zap.Error(err))
	}
	logger.Info("服务已退出")
}
