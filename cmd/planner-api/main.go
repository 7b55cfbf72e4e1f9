package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lesson-planner-api/api/swagger"
	"github.com/noah-isme/lesson-planner-api/internal/handler"
	"github.com/noah-isme/lesson-planner-api/internal/repository"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	"github.com/noah-isme/lesson-planner-api/pkg/cache"
	"github.com/noah-isme/lesson-planner-api/pkg/config"
	"github.com/noah-isme/lesson-planner-api/pkg/database"
	"github.com/noah-isme/lesson-planner-api/pkg/logger"
	"github.com/noah-isme/lesson-planner-api/pkg/sharelink"
)

// @title Lesson Planner API
// @version 1.0.0
// @description Semester timetables generated from a chapter curriculum, with reschedule and advance repairs
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	if cfg.JWT.Secret == "" {
		logr.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TimetableTTL, logr, cfg.Cache.Enabled && cacheRepo.Enabled())
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	semesterSvc := service.NewSemesterService(semesterRepo, validate, logr)
	chapterSvc := service.NewChapterService(chapterRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, semesterRepo, chapterRepo, cacheSvc, metricsSvc, validate, logr, service.TimetableConfig{
		Location:       cfg.Planner.Location(),
		RequestTimeout: cfg.Planner.RequestTimeout,
		CacheTTL:       cfg.Cache.TimetableTTL,
	})
	exportSvc := service.NewExportService(timetableSvc, logr, nil, nil, nil, nil)
	shareSvc := service.NewShareService(
		sharelink.NewSigner(cfg.JWT.Secret, cfg.Share.TTL),
		exportSvc,
		cfg.Share.BaseURL+cfg.APIPrefix+"/shared/timetable/",
		validate,
		logr,
	)

	router := newRouter(routeDeps{
		config:    cfg,
		logger:    logr,
		metrics:   metricsSvc,
		tokens:    authSvc,
		audit:     userRepo,
		counter:   cacheRepo,
		auth:      handler.NewAuthHandler(authSvc),
		semesters: handler.NewSemesterHandler(semesterSvc),
		chapters:  handler.NewChapterHandler(chapterSvc),
		timetable: handler.NewTimetableHandler(timetableSvc, exportSvc),
		share:     handler.NewShareHandler(shareSvc),
		health:    handler.NewMetricsHandler(metricsSvc, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
