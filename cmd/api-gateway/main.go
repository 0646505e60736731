package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rhythmic-hub/enroll-api/api/swagger"
	"github.com/rhythmic-hub/enroll-api/internal/handler"
	"github.com/rhythmic-hub/enroll-api/internal/middleware"
	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/repository"
	"github.com/rhythmic-hub/enroll-api/internal/service"
	"github.com/rhythmic-hub/enroll-api/pkg/cache"
	"github.com/rhythmic-hub/enroll-api/pkg/config"
	"github.com/rhythmic-hub/enroll-api/pkg/database"
	"github.com/rhythmic-hub/enroll-api/pkg/logger"
	corsmiddleware "github.com/rhythmic-hub/enroll-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rhythmic-hub/enroll-api/pkg/middleware/requestid"
	"github.com/rhythmic-hub/enroll-api/pkg/payments"
)

// @title Rhythmic Hub Enrollment API
// @version 1.0.0
// @description Class enrollment and payment reconciliation backend
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog caching disabled", "error", err)
		redisClient = nil
	}

	gateway := payments.NewClient(cfg.Payments)
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, cacheRepo, cfg.Catalog.CacheTTL, validate, logr)
	selectionSvc := service.NewSelectionService(selectionRepo, classRepo, validate, logr)
	checkoutSvc := service.NewCheckoutService(gateway, cfg.Payments.Currency, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, selectionRepo, classRepo, gateway, cfg.Payments.SkipVerify, cfg.Payments.Currency, validate, logr)
	exportSvc := service.NewExportService(paymentRepo, classRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	classHandler := handler.NewClassHandler(classSvc, metricsSvc)
	selectionHandler := handler.NewSelectionHandler(selectionSvc)
	paymentHandler := handler.NewPaymentHandler(checkoutSvc, paymentSvc, exportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/jwt", authHandler.IssueToken)
	api.POST("/users", userHandler.Register)
	api.GET("/classes", classHandler.List)
	api.GET("/classes/:id", classHandler.Get)

	guarded := api.Group("", middleware.JWT(authSvc))
	{
		guarded.GET("/users", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
		guarded.GET("/users/role", userHandler.Role)
		guarded.PATCH("/users/roleUpdate", middleware.RequireRoles(models.RoleAdmin), userHandler.UpdateRole)

		guarded.POST("/classes", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), classHandler.Create)
		guarded.PATCH("/classes/:id/status", middleware.RequireRoles(models.RoleAdmin), classHandler.UpdateStatus)
		guarded.PATCH("/classes/:id/feedback", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), classHandler.Feedback)

		guarded.GET("/selections", selectionHandler.List)
		guarded.POST("/selections", selectionHandler.Create)
		guarded.DELETE("/selections/:id", selectionHandler.Delete)

		guarded.POST("/create-payment-intent", paymentHandler.CreateIntent)
		guarded.POST("/payment", paymentHandler.Reconcile)
		guarded.GET("/payments", paymentHandler.List)
		guarded.GET("/payments/export", middleware.RequireRoles(models.RoleAdmin), paymentHandler.ExportStatement)
		guarded.GET("/payments/:id/receipt", paymentHandler.Receipt)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
