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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/akazantsev/timetable-api/api/swagger"
	"github.com/akazantsev/timetable-api/internal/handler"
	"github.com/akazantsev/timetable-api/internal/middleware"
	"github.com/akazantsev/timetable-api/internal/models"
	"github.com/akazantsev/timetable-api/internal/repository"
	"github.com/akazantsev/timetable-api/internal/service"
	"github.com/akazantsev/timetable-api/pkg/cache"
	"github.com/akazantsev/timetable-api/pkg/config"
	"github.com/akazantsev/timetable-api/pkg/database"
	"github.com/akazantsev/timetable-api/pkg/export"
	"github.com/akazantsev/timetable-api/pkg/logger"
	corsmiddleware "github.com/akazantsev/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/akazantsev/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description University class timetable backend with conflict detection
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	lessonRepo := repository.NewLessonRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	lessonTypeRepo := repository.NewLessonTypeRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving without cache", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
		}
	}

	validate := validator.New()

	conflictSvc := service.NewConflictService(lessonRepo, logr, cfg.Schedule.AllowParallelSubgroups)

	lessonSvc := newLessonService(cfg, lessonRepo, conflictSvc, cacheRepo, metricsSvc, validate, logr)
	mutationSvc := service.NewMutationService(lessonRepo, conflictSvc, validate, logr)
	finderSvc := service.NewSlotFinderService(lessonRepo, timeSlotRepo, conflictSvc, validate, cfg.Schedule.OptimalSlotLimit, logr)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, validate, logr)
	lessonTypeSvc := service.NewLessonTypeService(lessonTypeRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	exportSvc := service.NewExportService(lessonRepo, timeSlotRepo,
		export.NewXLSXExporter(cfg.Export.SheetName), export.NewCSVExporter(), export.NewPDFExporter(),
		validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	mutationHandler := handler.NewMutationHandler(mutationSvc, lessonSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc, finderSvc)
	timeSlotHandler := handler.NewTimeSlotHandler(timeSlotSvc)
	lessonTypeHandler := handler.NewLessonTypeHandler(lessonTypeSvc)
	userHandler := handler.NewUserHandler(userSvc)
	directoryHandler := handler.NewDirectoryHandler(lessonSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/init", authHandler.Init)
	api.POST("/auth/login", authHandler.Login)

	// Read endpoints stay public so display boards and the public site can
	// consume the schedule without a token.
	api.GET("/lessons", lessonHandler.List)
	api.GET("/lessons/:id", lessonHandler.Get)
	api.GET("/lessons/:id/optimal-slots", conflictHandler.OptimalSlots)
	api.GET("/schedule/group/:value", lessonHandler.WeekByGroup)
	api.GET("/schedule/teacher/:value", lessonHandler.WeekByTeacher)
	api.GET("/schedule/auditory/:value", lessonHandler.WeekByAuditory)
	api.GET("/schedule/date/:date", lessonHandler.ListByDate)
	api.GET("/schedule/week/usage", lessonHandler.UsageStats)
	api.GET("/schedule/week/conflicts", conflictHandler.WeekConflicts)
	api.GET("/schedule/availability", conflictHandler.Availability)
	api.GET("/schedule/export/:dimension/:value", exportHandler.Export)
	api.GET("/time-slots", timeSlotHandler.List)
	api.GET("/lesson-types", lessonTypeHandler.List)
	api.GET("/groups", directoryHandler.Groups)
	api.GET("/teachers", directoryHandler.Teachers)
	api.GET("/auditories", directoryHandler.Auditories)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/lessons", lessonHandler.Create)
	authed.PUT("/lessons/:id", lessonHandler.Update)
	authed.DELETE("/lessons/:id", lessonHandler.Delete)
	authed.POST("/schedule/move", mutationHandler.Move)
	authed.POST("/schedule/swap", mutationHandler.Swap)
	authed.DELETE("/schedule/week", lessonHandler.DeleteWeek)
	authed.POST("/time-slots", timeSlotHandler.Create)
	authed.PUT("/time-slots/:id", timeSlotHandler.Update)
	authed.DELETE("/time-slots/:id", timeSlotHandler.Delete)
	authed.POST("/time-slots/reorder", timeSlotHandler.Reorder)
	authed.POST("/time-slots/init", timeSlotHandler.Init)
	authed.POST("/lesson-types", lessonTypeHandler.Create)
	authed.PUT("/lesson-types/:id", lessonTypeHandler.Update)
	authed.DELETE("/lesson-types/:id", lessonTypeHandler.Delete)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/system/metrics", metricsHandler.System)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newLessonService assembles the lesson service with an optional
// metrics-instrumented cache. A disabled cache wires through as nil.
func newLessonService(cfg *config.Config, lessonRepo *repository.LessonRepository, conflicts *service.ConflictService, cacheRepo *repository.CacheRepository, metrics *service.MetricsService, validate *validator.Validate, logr *zap.Logger) *service.LessonService {
	if cacheRepo == nil {
		return service.NewLessonService(lessonRepo, conflicts, nil, cfg.Cache.TTL, validate, logr)
	}
	return service.NewLessonService(lessonRepo, conflicts, service.InstrumentCache(cacheRepo, metrics), cfg.Cache.TTL, validate, logr)
}
