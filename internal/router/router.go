package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/handler"
	"github.com/eadl-dev/acadtrack-api/internal/middleware"
	"github.com/eadl-dev/acadtrack-api/internal/models"
	"github.com/eadl-dev/acadtrack-api/internal/service"
	"github.com/eadl-dev/acadtrack-api/pkg/config"
	"github.com/eadl-dev/acadtrack-api/pkg/logger"
	corsmiddleware "github.com/eadl-dev/acadtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eadl-dev/acadtrack-api/pkg/middleware/requestid"
)

// Dependencies carries everything the route table needs.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Audit   *service.AuditService

	Auth        *service.AuthService
	Personnel   *service.PersonnelService
	Courses     *service.CourseService
	Rooms       *service.RoomService
	Sessions    *service.SessionService
	Assignments *service.AssignmentService
}

// New builds the gin engine with the full route table. Mutations require a
// token; catalog writes and bulk deletes are restricted to administrative
// and director roles.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	metricsHandler := handler.NewMetricsHandler(deps.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Personnel)
	personnelHandler := handler.NewPersonnelHandler(deps.Personnel)
	courseHandler := handler.NewCourseHandler(deps.Courses)
	roomHandler := handler.NewRoomHandler(deps.Rooms)
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	assignmentHandler := handler.NewAssignmentHandler(deps.Assignments)

	authed := middleware.JWT(deps.Auth)
	adminOnly := middleware.RequireRoles(models.RoleAdministrative, models.RoleDirector)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", middleware.Audit(deps.Audit, models.AuditActionRegister, "personnel"), authHandler.Register)
		auth.GET("/me", authed, authHandler.Me)
	}

	personnel := api.Group("/personnel", authed)
	{
		personnel.GET("", personnelHandler.List)
		personnel.GET("/count", personnelHandler.Count)
		personnel.GET("/:code", personnelHandler.Get)
		personnel.POST("", adminOnly, middleware.Audit(deps.Audit, models.AuditActionCreate, "personnel"), personnelHandler.Create)
		personnel.PUT("/:code", adminOnly, middleware.Audit(deps.Audit, models.AuditActionUpdate, "personnel"), personnelHandler.Update)
		personnel.DELETE("/:code", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "personnel"), personnelHandler.Delete)
		personnel.DELETE("", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "personnel"), personnelHandler.DeleteAll)
	}

	courses := api.Group("/courses", authed)
	{
		courses.GET("", courseHandler.List)
		courses.GET("/count", courseHandler.Count)
		courses.GET("/:code", courseHandler.Get)
		courses.POST("", adminOnly, middleware.Audit(deps.Audit, models.AuditActionCreate, "course"), courseHandler.Create)
		courses.PUT("/:code", adminOnly, middleware.Audit(deps.Audit, models.AuditActionUpdate, "course"), courseHandler.Update)
		courses.DELETE("/:code", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "course"), courseHandler.Delete)
	}

	rooms := api.Group("/rooms", authed)
	{
		rooms.GET("", roomHandler.List)
		rooms.GET("/count", roomHandler.Count)
		rooms.GET("/:code", roomHandler.Get)
		rooms.POST("", adminOnly, middleware.Audit(deps.Audit, models.AuditActionCreate, "room"), roomHandler.Create)
		rooms.PUT("/:code", adminOnly, middleware.Audit(deps.Audit, models.AuditActionUpdate, "room"), roomHandler.Update)
		rooms.DELETE("/:code", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "room"), roomHandler.Delete)
	}

	sessions := api.Group("/sessions", authed)
	{
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("", middleware.Audit(deps.Audit, models.AuditActionCreate, "session"), sessionHandler.Create)
		sessions.PUT("/:id", middleware.Audit(deps.Audit, models.AuditActionUpdate, "session"), sessionHandler.Update)
		sessions.DELETE("/:id", middleware.Audit(deps.Audit, models.AuditActionDelete, "session"), sessionHandler.Delete)
		sessions.DELETE("", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "session"), sessionHandler.DeleteAll)
	}

	assignments := api.Group("/assignments", authed)
	{
		assignments.GET("", assignmentHandler.List)
		assignments.GET("/:course/:personnel", assignmentHandler.Get)
		assignments.POST("", adminOnly, middleware.Audit(deps.Audit, models.AuditActionCreate, "assignment"), assignmentHandler.Create)
		assignments.DELETE("/:course/:personnel", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "assignment"), assignmentHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}
