package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	_ "github.com/eadl-dev/acadtrack-api/api/swagger"
	"github.com/eadl-dev/acadtrack-api/internal/repository"
	"github.com/eadl-dev/acadtrack-api/internal/router"
	"github.com/eadl-dev/acadtrack-api/internal/service"
	"github.com/eadl-dev/acadtrack-api/pkg/cache"
	"github.com/eadl-dev/acadtrack-api/pkg/config"
	"github.com/eadl-dev/acadtrack-api/pkg/database"
	"github.com/eadl-dev/acadtrack-api/pkg/logger"
)

// @title AcadTrack API
// @version 1.0.0
// @description Academic scheduling service: personnel, courses, rooms, sessions and teaching assignments.
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	// The cache is optional; catalog listings fall through to Postgres
	// when Redis is absent.
	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}
	store := cache.NewStore(redisClient, cfg.Cache.TTL)

	validate := validator.New()
	metrics := service.NewMetricsService()

	personnelRepo := repository.NewPersonnelRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	gate := service.NewAvailabilityGate(roomRepo)
	sessionValidator := service.NewSessionValidator(validate)

	auditService := service.NewAuditService(auditRepo, 2, 64, logr)
	defer auditService.Close()

	authService := service.NewAuthService(personnelRepo, auditService, cfg.JWT, validate, logr)
	personnelService := service.NewPersonnelService(personnelRepo, sessionRepo, assignmentRepo, store, validate, logr)
	courseService := service.NewCourseService(courseRepo, sessionRepo, assignmentRepo, store, validate, logr)
	roomService := service.NewRoomService(roomRepo, sessionRepo, validate, logr)
	sessionService := service.NewSessionService(sessionRepo, courseRepo, personnelRepo, gate, sessionValidator, metrics, logr)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, personnelRepo, logr)

	r := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      logr,
		Metrics:     metrics,
		Audit:       auditService,
		Auth:        authService,
		Personnel:   personnelService,
		Courses:     courseService,
		Rooms:       roomService,
		Sessions:    sessionService,
		Assignments: assignmentService,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
