package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnsondatabase/tender-sub001/internal/config"
	"github.com/johnsondatabase/tender-sub001/internal/middleware"
	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/handler"
	"github.com/johnsondatabase/tender-sub001/internal/tender/notify"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
	"github.com/johnsondatabase/tender-sub001/internal/tender/sse"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting tender-crm service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.TenderListing{},
		&entity.LineItem{},
		&entity.AuditLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis not reachable, grid settings will fail until it is", zap.Error(err))
	}

	minioClient := initMinIO(cfg.MinIO, zapLogger)

	repos := repository.NewRepositories(db)
	st := store.New(repos, zapLogger)
	hub := sse.NewHub()
	notifier := notify.New(cfg.Notify.AdminWebhookURL, zapLogger)
	services := service.NewServices(repos, st, hub, notifier, service.NewRedisKV(rdb), zapLogger)
	handlers := handler.NewHandlers(services, hub, handler.NewUploadHandler(minioClient, cfg.MinIO.Bucket))

	// Warm the caches so the first board render does not race the first
	// refetch.
	if err := st.RefreshListings(context.Background()); err != nil {
		zapLogger.Warn("Initial listing cache load failed", zap.Error(err))
	}
	if err := st.RefreshLineItems(context.Background()); err != nil {
		zapLogger.Warn("Initial line-item cache load failed", zap.Error(err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": Version, "build_time": BuildTime})
	})

	api := r.Group("/api/v1", middleware.JWTAuth(cfg.JWT.Secret))

	api.GET("/board", h.Board.GetBoard)
	api.POST("/board/refresh", h.Board.Refresh)

	api.GET("/tenders/code-preview", h.Listing.PreviewCode)
	api.GET("/tenders/:code", h.Listing.GetListing)
	api.POST("/tenders", h.Listing.SaveListing)
	api.DELETE("/tenders/:code", middleware.RequireRole("manager"), h.Listing.DeleteListing)
	api.GET("/tenders/:code/history", h.Listing.History)

	api.POST("/tenders/:code/win", h.Transition.MarkWin)
	api.POST("/tenders/:code/fail", h.Transition.MarkFail)
	api.POST("/tenders/:code/waiting", h.Transition.MarkWaiting)

	api.POST("/grid/query", h.Grid.Query)
	api.POST("/grid/refresh", h.Grid.Refresh)
	api.POST("/grid/selection-stats", h.Grid.SelectionStats)
	api.POST("/grid/export", h.Grid.Export)

	api.GET("/grid/settings/:view", h.Settings.GetSettings)
	api.PUT("/grid/settings/:view", h.Settings.SaveSettings)
	api.DELETE("/grid/settings/:view", h.Settings.ResetSettings)

	api.POST("/upload", h.Upload.Upload)

	api.GET("/sse/events", h.SSE.Stream)
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig, log *zap.Logger) *minio.Client {
	if cfg.Endpoint == "" {
		log.Warn("MinIO not configured, attachment upload disabled")
		return nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Warn("MinIO init failed, attachment upload disabled", zap.Error(err))
		return nil
	}
	return client
}
