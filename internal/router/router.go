package router

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/anonto42/effisocial/backend/internal/handlers"
	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/realtime"
	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/internal/services"
	"github.com/anonto42/effisocial/backend/pkg/config"
	"github.com/anonto42/effisocial/backend/pkg/log"
	"github.com/anonto42/effisocial/backend/pkg/metrics"
	"github.com/anonto42/effisocial/backend/validators"
)

// Repositories groups the stores the services are built on.
type Repositories struct {
	Users         repositories.UserRepository
	Friendships   repositories.FriendshipRepository
	Groups        repositories.GroupRepository
	Notifications repositories.NotificationRepository
	Posts         interface {
		repositories.PostRepository
		repositories.PostStatsRepository
	}
	Messages repositories.MessageRepository
}

// NewRepositories builds the PostgreSQL and MongoDB repositories.
func NewRepositories(pgdb *gorm.DB, mdb *mongo.Database) *Repositories {
	return &Repositories{
		Users:         repositories.NewPostgresUserRepository(pgdb),
		Friendships:   repositories.NewPostgresFriendshipRepository(pgdb),
		Groups:        repositories.NewPostgresGroupRepository(pgdb),
		Notifications: repositories.NewPostgresNotificationRepository(pgdb),
		Posts:         repositories.NewMongoPostRepository(mdb),
		Messages:      repositories.NewMongoMessageRepository(mdb),
	}
}

type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Friends       *services.FriendService
	Groups        *services.GroupService
	Posts         *services.PostService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Stats         *services.StatsService
}

// NewServices wires the services. media and verifier may be nil.
func NewServices(cfg *config.Config, repos *Repositories, hub *realtime.Hub, media services.MediaStore, verifier services.IDTokenVerifier) *Services {
	inbox := services.NewNotificationService(repos.Notifications, hub)
	return &Services{
		Auth:          services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.JWTTTL, verifier),
		Users:         services.NewUserService(repos.Users, repos.Groups, media),
		Friends:       services.NewFriendService(repos.Users, repos.Friendships, inbox),
		Groups:        services.NewGroupService(repos.Groups, repos.Users, repos.Posts, media, inbox),
		Posts:         services.NewPostService(repos.Posts, repos.Groups, repos.Users, media),
		Messages:      services.NewMessageService(repos.Messages, repos.Users, media, hub),
		Notifications: inbox,
		Stats:         services.NewStatsService(repos.Users, repos.Friendships, repos.Groups, repos.Posts, repos.Messages, hub),
	}
}

// SetupRoutes configures the error handler, validator and every route.
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *Services, hub *realtime.Hub) {
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = validators.NewValidator()
	e.Use(middleware.PrometheusMiddleware())

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.Static("/uploads", cfg.UploadDir)

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	// Realtime sessions authenticate with the token query parameter
	e.GET("/ws", handlers.NewWSHandler(hub).Connect, middleware.WebSocketAuthMiddleware(cfg.JWTSecret))

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(svc.Auth)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api", auth)
	authHandler.RegisterMeRoute(api.Group("/auth"))

	users := api.Group("/users")
	handlers.NewFriendshipHandler(svc.Friends).RegisterFriendshipRoutes(users)
	handlers.NewUserHandler(svc.Users, hub).RegisterProfileRoutes(users)

	handlers.NewGroupHandler(svc.Groups).RegisterGroupRoutes(api.Group("/groups"))

	posts := api.Group("/posts")
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(posts)
	handlers.NewCommentHandler(svc.Posts).RegisterCommentRoutes(posts)
	handlers.NewLikeHandler(svc.Posts).RegisterLikeRoutes(posts)

	handlers.NewMessageHandler(svc.Messages).RegisterMessageRoutes(api.Group("/messages"))
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api.Group("/notifications"))
	handlers.NewStatsHandler(svc.Stats).RegisterStatsRoutes(api.Group("/stats"))

	logger := log.WithComponent("router")
	logger.Info().Int("routes", len(e.Routes())).Msg("routes configured")
}
