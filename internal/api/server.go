package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/eventure/eventure-api/docs"
	v1 "github.com/eventure/eventure-api/internal/api/handler/v1"
	"github.com/eventure/eventure-api/internal/api/middleware"
	"github.com/eventure/eventure-api/internal/config"
	"github.com/eventure/eventure-api/internal/pkg/storage"
	"github.com/eventure/eventure-api/internal/pkg/ticketcode"
	"github.com/eventure/eventure-api/internal/repository"
	"github.com/eventure/eventure-api/internal/repository/dao"
	"github.com/eventure/eventure-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	registrations *service.RegistrationService
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	registrationRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))

	images, err := storage.NewLocalStore(conf.Uploads.Dir, conf.Uploads.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("storage.NewLocalStore -> %w", err)
	}

	gate := service.NewGate(userRepo)
	catalog := service.NewCatalogService(eventRepo, images)
	registrations := service.NewRegistrationService(
		registrationRepo,
		catalog,
		userRepo,
		ticketcode.NewGenerator(),
		newPaymentProcessor(conf.Payment),
		service.NewLogNotifier(),
	)
	s.registrations = registrations

	authHandler := v1.NewAuthHandler(conf.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(service.NewUserService(userRepo), gate)
	eventHandler := v1.NewEventHandler(catalog, registrations, gate)
	registrationHandler := v1.NewRegistrationHandler(registrations, catalog)
	s.MountHandlers(authHandler, userHandler, eventHandler, registrationHandler)

	return s, nil
}

// Registrations exposes the registration service so the app can start
// its background hold reaper.
func (s *Server) Registrations() *service.RegistrationService {
	return s.registrations
}

func newPaymentProcessor(conf *config.PaymentConfig) service.PaymentProcessor {
	if conf.Provider == "stripe" {
		return service.NewStripeProcessor(conf.StripeAPIKey)
	}

	return service.NewPaymentSimulator(conf.SimulatedDelay)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	registrationHandler *v1.RegistrationHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	public := s.Router.Group(basePath)
	{
		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)
		public.GET("/events/:eventID/seats", eventHandler.HandleGetSeats)
	}

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/users/:userID", userHandler.HandleGetUser)

		authed.POST("/events", eventHandler.HandleCreateEvent)
		authed.POST("/events/:eventID/image", eventHandler.HandleUploadImage)
		authed.PATCH("/events/:eventID/status", eventHandler.HandleSetStatus)
		authed.GET("/events/:eventID/registrations", eventHandler.HandleListEventRegistrations)
		authed.GET("/host/events", eventHandler.HandleListHostEvents)

		authed.POST("/events/:eventID/decision", eventHandler.HandleDecideEvent)
		authed.GET("/admin/events/pending", eventHandler.HandleListPendingEvents)
		authed.POST("/admin/users/:userID/roles", userHandler.HandleGrantRole)

		authed.POST("/events/:eventID/registrations", registrationHandler.HandleRegister)
		authed.GET("/registrations", registrationHandler.HandleListMyRegistrations)
		authed.GET("/registrations/:registrationID/qrcode", registrationHandler.HandleTicketQRCode)
		authed.DELETE("/registrations/:registrationID", registrationHandler.HandleCancel)
	}

	s.Router.Static(s.Config.Uploads.BaseURL, s.Config.Uploads.Dir)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Eventure API"
	docs.SwaggerInfo.Description = "Event registration and ticketing API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
