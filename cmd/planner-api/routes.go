package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/handler"
	"github.com/noah-isme/lesson-planner-api/internal/middleware"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	"github.com/noah-isme/lesson-planner-api/pkg/config"
	"github.com/noah-isme/lesson-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lesson-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lesson-planner-api/pkg/middleware/requestid"
)

type routeDeps struct {
	config  *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	tokens  middleware.TokenValidator
	audit   middleware.AuditRecorder
	counter middleware.Counter

	auth      *handler.AuthHandler
	semesters *handler.SemesterHandler
	chapters  *handler.ChapterHandler
	timetable *handler.TimetableHandler
	share     *handler.ShareHandler
	health    *handler.MetricsHandler
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.health.Health)
	r.GET("/ready", d.health.Ready)
	if d.config.Metrics.Enabled {
		r.GET("/metrics", d.health.Prometheus)
	}
	if d.config.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.audit, d.logger, action, resource)
	}
	limiter := middleware.RateLimit(d.counter, d.metrics, d.logger, d.config.Auth.RateLimit, d.config.Auth.RateWindow)
	requireAuth := middleware.JWT(d.tokens)

	api := r.Group(d.config.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", limiter, d.auth.Login)
	auth.POST("/register", limiter, audit(models.AuditActionRegister, "users"), d.auth.Register)
	auth.GET("/me", requireAuth, d.auth.Me)

	api.GET("/shared/timetable/:token", d.share.Download)

	protected := api.Group("")
	protected.Use(requireAuth)

	semesters := protected.Group("/semesters")
	semesters.GET("", d.semesters.List)
	semesters.GET("/current", d.semesters.Current)
	semesters.POST("", audit(models.AuditActionSemesterSave, "semesters"), d.semesters.Save)

	chapters := protected.Group("/chapters")
	chapters.GET("", d.chapters.List)
	chapters.POST("", audit(models.AuditActionChapterSave, "chapters"), d.chapters.Save)

	timetable := protected.Group("/timetable")
	timetable.GET("", d.timetable.Get)
	timetable.GET("/today", d.timetable.Today)
	timetable.GET("/versions", d.timetable.Versions)
	timetable.GET("/export", d.timetable.Export)
	timetable.PUT("", audit(models.AuditActionTimetableSave, "timetables"), d.timetable.Save)
	timetable.POST("/generate", audit(models.AuditActionTimetableGenerate, "timetables"), d.timetable.Generate)
	timetable.POST("/reschedule", audit(models.AuditActionReschedule, "timetables"), d.timetable.Reschedule)
	timetable.POST("/advance", audit(models.AuditActionAdvance, "timetables"), d.timetable.Advance)
	timetable.POST("/share", d.share.Create)

	protected.GET("/planner/overview", d.timetable.Overview)

	return r
}
