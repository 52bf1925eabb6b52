package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/config"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	mfgHandler "github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/handler"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/policy"
	mfgRepo "github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
	mfgService "github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/middleware"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting mfg-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate tables", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// redis 可选，只作库存读缓存
	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := cache.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, stock cache disabled", zap.Error(err))
			cache = nil
		}
	}

	// 初始化依赖
	repos := mfgRepo.NewRepositories(db)
	services := mfgService.NewServices(repos, db, mfgService.Options{
		Cache:              cache,
		AllowNegativeStock: cfg.Stock.AllowNegative,
		Logger:             zapLogger,
	})
	handlers := mfgHandler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mfg-erp"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "service": "mfg-erp"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mfg-erp"})
	})

	// 版本信息
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "mfg-erp",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := router.Group("/api/v1/mfg")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		orders := v1.Group("/orders")
		{
			orders.GET("", middleware.RequirePermission(policy.ActionRead, policy.ResourceOrder), handlers.Order.List)
			orders.POST("", middleware.RequirePermission(policy.ActionCreate, policy.ResourceOrder), handlers.Order.Create)
			orders.POST("/plan", middleware.RequirePermission(policy.ActionCreate, policy.ResourceOrder), handlers.Order.Plan)
			orders.GET("/:id", middleware.RequirePermission(policy.ActionRead, policy.ResourceOrder), handlers.Order.Get)
			orders.POST("/:id/confirm", middleware.RequirePermission(policy.ActionConfirm, policy.ResourceOrder), handlers.Order.Confirm)
			orders.POST("/:id/cancel", middleware.RequirePermission(policy.ActionCancel, policy.ResourceOrder), handlers.Order.Cancel)
			orders.POST("/:id/start", middleware.RequirePermission(policy.ActionExecute, policy.ResourceOrder), handlers.Order.Start)
			orders.POST("/:id/complete", middleware.RequirePermission(policy.ActionExecute, policy.ResourceOrder), handlers.Order.Complete)
		}

		workOrders := v1.Group("/work-orders")
		{
			workOrders.POST("/:id/start", middleware.RequirePermission(policy.ActionExecute, policy.ResourceWorkOrder), handlers.WorkOrder.Start)
			workOrders.POST("/:id/finish", middleware.RequirePermission(policy.ActionExecute, policy.ResourceWorkOrder), handlers.WorkOrder.Finish)
			workOrders.POST("/:id/cancel", middleware.RequirePermission(policy.ActionCancel, policy.ResourceWorkOrder), handlers.WorkOrder.Cancel)
		}

		boms := v1.Group("/boms")
		{
			boms.POST("", middleware.RequirePermission(policy.ActionCreate, policy.ResourceBOM), handlers.BOM.Create)
			boms.GET("/:id", middleware.RequirePermission(policy.ActionRead, policy.ResourceBOM), handlers.BOM.Get)
		}

		stock := v1.Group("/stock")
		{
			stock.POST("/movements", middleware.RequirePermission(policy.ActionAdjust, policy.ResourceStock), handlers.Stock.RecordMovement)
			stock.GET("/ledger", middleware.RequirePermission(policy.ActionRead, policy.ResourceStock), handlers.Stock.ListLedger)
			stock.GET("/ledger/export", middleware.RequirePermission(policy.ActionExport, policy.ResourceStock), handlers.Stock.ExportLedger)
			stock.GET("/:itemId", middleware.RequirePermission(policy.ActionRead, policy.ResourceStock), handlers.Stock.CurrentStock)
		}
	}

	// 启动HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Output == "file" && cfg.FilePath != "" {
		zapCfg.OutputPaths = []string{cfg.FilePath}
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return db, nil
}
