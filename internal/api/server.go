package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/festhub/festhub-api/docs"
	v1 "github.com/festhub/festhub-api/internal/api/handler/v1"
	"github.com/festhub/festhub-api/internal/api/middleware"
	"github.com/festhub/festhub-api/internal/config"
	"github.com/festhub/festhub-api/internal/notification"
	"github.com/festhub/festhub-api/internal/repository"
	"github.com/festhub/festhub-api/internal/repository/dao"
	"github.com/festhub/festhub-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client, publisher *notification.Publisher) *Server {
	if conf.API.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db, publisher)
	registrationHandler := s.initRegistrationHandler(db, publisher)
	teamHandler := s.initTeamHandler(db, publisher)
	attendanceHandler := s.initAttendanceHandler(db)
	s.MountHandlers(s.rateLimit(rdb), userHandler, eventHandler, registrationHandler, teamHandler, attendanceHandler)

	return s
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB, publisher *notification.Publisher) *v1.EventHandler {
	eventDAO := dao.NewEventDAO(db)
	repo := repository.NewEventRepository(eventDAO)
	svc := service.NewEventService(repo)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	regSvc := service.NewRegistrationService(repository.NewRegistrationRepository(dao.NewRegistrationDAO(db)), repo, userRepo, publisher)
	uSvc := service.NewUserService(userRepo)
	handler := v1.NewEventHandler(svc, regSvc, uSvc)

	return handler
}

func (s *Server) initRegistrationHandler(db *gorm.DB, publisher *notification.Publisher) *v1.RegistrationHandler {
	repo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewRegistrationService(repo, eventRepo, userRepo, publisher)
	uSvc := service.NewUserService(userRepo)
	handler := v1.NewRegistrationHandler(svc, uSvc)

	return handler
}

func (s *Server) initTeamHandler(db *gorm.DB, publisher *notification.Publisher) *v1.TeamHandler {
	teamRepo := repository.NewTeamRepository(dao.NewTeamDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewTeamService(teamRepo, regRepo, eventRepo, userRepo, publisher)
	uSvc := service.NewUserService(userRepo)
	handler := v1.NewTeamHandler(svc, uSvc)

	return handler
}

func (s *Server) initAttendanceHandler(db *gorm.DB) *v1.AttendanceHandler {
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	auditRepo := repository.NewAuditLogRepository(dao.NewAuditLogDAO(db))
	svc := service.NewAttendanceService(regRepo, eventRepo, auditRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewAttendanceHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

// rateLimit builds the handler for the registration and team-join routes.
// Other routes stay unthrottled. Without configuration it is a pass-through.
func (s *Server) rateLimit(rdb *redis.Client) gin.HandlerFunc {
	if s.Config.RateLimit == nil || s.Config.RateLimit.Requests <= 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	limiter := middleware.NewRateLimiter(rdb, s.Config.RateLimit.Requests, s.Config.RateLimit.WindowSeconds)
	return limiter.Limit()
}

func (s *Server) MountHandlers(
	limit gin.HandlerFunc,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	registrationHandler *v1.RegistrationHandler,
	teamHandler *v1.TeamHandler,
	attendanceHandler *v1.AttendanceHandler,
) {
	const basePath = "/api/v1"

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/users/:userID", userHandler.HandleGetUser)

		authed.POST("/events", eventHandler.HandleCreateEvent)
		authed.GET("/events", eventHandler.HandleListEvents)
		authed.GET("/organizer/events", eventHandler.HandleListOrganizedEvents)
		authed.GET("/events/:eventID", eventHandler.HandleGetEvent)
		authed.PATCH("/events/:eventID", eventHandler.HandleUpdateEvent)
		authed.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		authed.POST("/events/:eventID/publish", eventHandler.HandlePublishEvent)
		authed.POST("/events/:eventID/status", eventHandler.HandleAdvanceStatus)

		authed.POST("/events/:eventID/register", limit, registrationHandler.HandleRegister)
		authed.GET("/events/:eventID/registrations", registrationHandler.HandleListEventRegistrations)
		authed.GET("/registrations", registrationHandler.HandleListMyRegistrations)
		authed.PATCH("/registrations/:registrationID/status", registrationHandler.HandleChangeRegistrationStatus)

		authed.POST("/events/:eventID/teams", limit, teamHandler.HandleCreateTeam)
		authed.GET("/events/:eventID/team", teamHandler.HandleGetMyTeam)
		authed.POST("/teams/join", limit, teamHandler.HandleJoinTeam)
		authed.GET("/teams/:teamID", teamHandler.HandleGetTeam)
		// PATCH so the param segment doesn't clash with POST /teams/join in gin's route tree.
		authed.PATCH("/teams/:teamID/members/:memberID/accept", teamHandler.HandleAcceptMember)

		authed.POST("/events/:eventID/attendance/scan", attendanceHandler.HandleScanTicket)
		authed.PATCH("/events/:eventID/attendance/:registrationID", attendanceHandler.HandleOverrideAttendance)
		authed.GET("/events/:eventID/attendance/report", attendanceHandler.HandleAttendanceReport)
		authed.GET("/events/:eventID/attendance/audit", attendanceHandler.HandleAuditTrail)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "FestHub API"
	docs.SwaggerInfo.Description = "Event registration, team formation and attendance tracking."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
