package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/student-records-api/internal/handler"
	"github.com/noah-isme/student-records-api/internal/middleware"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/repository"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/cache"
	"github.com/noah-isme/student-records-api/pkg/config"
	"github.com/noah-isme/student-records-api/pkg/database"
	"github.com/noah-isme/student-records-api/pkg/export"
	"github.com/noah-isme/student-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheEnabled := redisClient != nil && (cfg.Reports.CacheEnabled || cfg.Dashboard.CacheEnabled)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cacheEnabled)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	eventRepo := repository.NewEventRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "student-records-api",
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, studentRepo, cacheSvc, export.NewCSVExporter(), validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, cacheSvc, validate, logr, cfg.Reports.LowAttendanceThreshold)
	certificateSvc := service.NewCertificateService(certificateRepo, studentRepo, cacheSvc, validate, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	reportSvc := service.NewReportService(studentRepo, certificateRepo, cacheSvc, export.NewPDFExporter(), logr)
	dashboardSvc := service.NewDashboardService(studentSvc, scheduleSvc, attendanceSvc, eventSvc, certificateSvc, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	selfOrAdmin := middleware.RBAC(string(models.RoleAdmin), "SELF")

	me := authed.Group("/me")
	{
		me.GET("/dashboard", dashboardHandler.MyDashboard)
		me.GET("/report", reportHandler.MyReport)
		me.GET("/schedule", scheduleHandler.MySchedule)
		me.GET("/attendance", attendanceHandler.MyAttendance)
		me.GET("/certificates", certificateHandler.Mine)
		me.POST("/certificates", certificateHandler.Submit)
		me.PATCH("/photo", studentHandler.UpdatePhoto)
	}

	students := authed.Group("/students")
	{
		// Reads addressed by record ID admit the owning student as well.
		students.GET("", adminOnly, studentHandler.List)
		students.POST("", adminOnly, studentHandler.Create)
		students.GET("/:id", selfOrAdmin, studentHandler.Get)
		students.PUT("/:id", adminOnly, studentHandler.Update)
		students.DELETE("/:id", adminOnly, studentHandler.Delete)
		students.GET("/:id/semesters", selfOrAdmin, studentHandler.Semesters)
		students.POST("/:id/semesters", adminOnly, studentHandler.AddSemester)
		students.POST("/:id/skills", adminOnly, studentHandler.AddSkill)
		students.PUT("/:id/feedback", adminOnly, studentHandler.UpsertFeedback)
		students.GET("/:id/report", selfOrAdmin, reportHandler.StudentReport)
		students.GET("/:id/report/pdf", selfOrAdmin, reportHandler.StudentReportPDF)
		students.GET("/:id/schedule", selfOrAdmin, scheduleHandler.StudentSchedule)
		students.GET("/:id/schedule/slots", selfOrAdmin, scheduleHandler.StudentSlots)
		students.PUT("/:id/schedule/days", adminOnly, scheduleHandler.UpsertDay)
		students.DELETE("/:id/schedule/days/:day", adminOnly, scheduleHandler.DeleteDay)
		students.GET("/:id/schedule/export", selfOrAdmin, scheduleHandler.ExportCSV)
		students.GET("/:id/attendance", selfOrAdmin, attendanceHandler.StudentAttendance)
		students.PUT("/:id/attendance", adminOnly, attendanceHandler.UpdateSnapshot)
		students.POST("/:id/attendance/events", adminOnly, attendanceHandler.RecordEvent)
		students.GET("/:id/attendance/events", selfOrAdmin, attendanceHandler.Events)
		students.GET("/:id/certificates", selfOrAdmin, certificateHandler.ForStudent)
	}

	certificates := authed.Group("/certificates", adminOnly)
	{
		certificates.GET("/pending", certificateHandler.Pending)
		certificates.PUT("/:id/review", certificateHandler.Review)
	}

	events := authed.Group("/events")
	{
		events.GET("", eventHandler.List)
		events.GET("/upcoming", eventHandler.Upcoming)
		events.GET("/calendar", eventHandler.Calendar)
		events.POST("", adminOnly, eventHandler.Create)
		events.PUT("/:id", adminOnly, eventHandler.Update)
		events.DELETE("/:id", adminOnly, eventHandler.Delete)
	}

	authed.GET("/dashboard/admin", adminOnly, dashboardHandler.AdminOverview)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
