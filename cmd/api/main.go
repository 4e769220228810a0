package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Salmaa-chiboub/coffee-meetings-platform/api/swagger"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/handler"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/middleware"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/repository"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/service"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/cache"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/config"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/database"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/logger"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/mailer"
	corsmiddleware "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/middleware/cors"
	reqidmiddleware "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/middleware/requestid"
)

// @title Coffee Meetings Platform API
// @version 1.0.0
// @description Campaign, matching and evaluation API for HR coffee meetings
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	criteriaRepo := repository.NewCriteriaRepository(db)
	pairRepo := repository.NewPairRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	matchingStore := repository.NewMatchingStore(db, pairRepo, criteriaRepo)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "coffee-meetings-platform",
	})

	campaignSvc := service.NewCampaignService(campaignRepo, cacheSvc, validate, logr)
	employeeSvc := service.NewEmployeeService(campaignRepo, employeeRepo, validate, logr, service.ImportConfig{
		MaxFileSizeBytes: cfg.Import.MaxFileSizeBytes,
		MaxRows:          cfg.Import.MaxRows,
	})
	criteriaSvc := service.NewCriteriaService(campaignRepo, criteriaRepo, employeeRepo, pairRepo, validate, logr)

	var sender mailer.Sender = mailer.NopSender{}
	if cfg.Mail.Enabled {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:        cfg.Mail.Host,
			Port:        cfg.Mail.Port,
			Username:    cfg.Mail.Username,
			Password:    cfg.Mail.Password,
			FromAddress: cfg.Mail.FromAddress,
		})
	}

	notificationSvc := service.NewNotificationService(pairRepo, campaignRepo, evaluationRepo, notificationRepo, sender, logr, service.NotificationConfig{
		MailEnabled:  cfg.Mail.Enabled,
		FrontendURL:  cfg.Mail.FrontendURL,
		QueueWorkers: cfg.Mail.Workers,
		MaxRetries:   cfg.Mail.MaxRetries,
		InAppEnabled: cfg.Notifications.Enabled,
	})

	matchingSvc, err := service.NewMatchingService(campaignRepo, employeeRepo, criteriaRepo, pairRepo, matchingStore, notificationSvc, validate, logr, service.MatchingConfig{
		SolverStrategy: cfg.Matching.SolverStrategy,
		MaxEmployees:   cfg.Matching.MaxEmployees,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to init matching service", "error", err)
	}

	evaluationSvc := service.NewEvaluationService(evaluationRepo, pairRepo, campaignRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(campaignRepo, employeeRepo, pairRepo, evaluationRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Campaigns:     handler.NewCampaignHandler(campaignSvc),
		Employees:     handler.NewEmployeeHandler(employeeSvc),
		Matching:      handler.NewMatchingHandler(criteriaSvc, matchingSvc, metricsSvc),
		Evaluations:   handler.NewEvaluationHandler(evaluationSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
