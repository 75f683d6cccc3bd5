// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/media"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	accountService  *service.AccountService
	profileService  *service.ProfileService
	postService     *service.PostService
	commentService  *service.CommentService
	tagService      *service.TagService
	reactionService *service.ReactionService
	feedService     *service.FeedService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient(), media.NewLocalStore(cfg))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redis client disables rate limiting and token revocation.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store media.Store) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),

		accountService:  service.NewAccountService(userRepo),
		profileService:  service.NewProfileService(profileRepo, userRepo, postRepo, store, cfg.PageSize),
		postService:     service.NewPostService(postRepo, profileRepo, tagRepo, store),
		commentService:  service.NewCommentService(commentRepo, postRepo, profileRepo),
		tagService:      service.NewTagService(tagRepo, cfg.PageSize),
		reactionService: service.NewReactionService(reactionRepo, profileRepo),
		feedService: service.NewFeedService(postRepo, commentRepo, profileRepo, tagRepo, service.FeedConfig{
			RecencyWindow: cfg.RecencyWindow(),
			PageSize:      cfg.PageSize,
		}),
	}
	return s, nil
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Agora API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, &models.AppError{Code: codeForStatus(fe.Code), Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) bodyLimit() int {
	// Uploads plus multipart overhead.
	if s.config.MediaMaxUploadMB > 0 {
		return (s.config.MediaMaxUploadMB + 1) * 1024 * 1024
	}
	return 4 * 1024 * 1024
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagates request, user and trace IDs into the user context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled browser clients still see CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.MediaRoot != "" {
		app.Static(s.config.MediaURL, s.config.MediaRoot)
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Agora Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := s.AuthRequired()

	// Accounts
	user := api.Group("/user")
	user.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	user.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	user.Post("/logout", auth, s.Logout)
	user.Get("/me", auth, s.GetMe)
	user.Patch("/me", auth, s.UpdateMe)
	user.Delete("/me", auth, s.DeleteMe)

	// Profiles. Specific /:id/<resource> routes come before the generic /:id.
	profiles := api.Group("/profiles")
	profiles.Get("/", s.ListProfiles)
	profiles.Post("/", auth, s.CreateProfile)
	profiles.Get("/me", auth, s.GetMyProfile)
	profiles.Post("/:id/follow", auth, middleware.RateLimit(s.redis, 60, time.Minute, "follow"), s.ToggleFollow)
	profiles.Post("/:id/picture", auth, middleware.RateLimit(s.redis, 10, 10*time.Minute, "picture"), s.UploadProfilePicture)
	profiles.Get("/:id/posts", s.GetProfilePosts)
	profiles.Get("/:id/followings", s.GetFollowings)
	profiles.Get("/:id/followers", s.GetFollowers)
	profiles.Get("/:id", s.GetProfile)
	profiles.Patch("/:id", auth, s.UpdateProfile)
	profiles.Delete("/:id", auth, s.DeleteProfile)

	// Posts
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", auth, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/liked", auth, s.GetLikedPosts)
	posts.Get("/disliked", auth, s.GetDislikedPosts)
	posts.Post("/:id/like", auth, middleware.RateLimit(s.redis, 120, time.Minute, "react"), s.LikePost)
	posts.Post("/:id/dislike", auth, middleware.RateLimit(s.redis, 120, time.Minute, "react"), s.DislikePost)
	posts.Get("/:id/profiles-liked", s.GetProfilesLiked)
	posts.Get("/:id/profiles-disliked", s.GetProfilesDisliked)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Post("/:id/comments", auth, middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/comments/:commentId", s.GetCommentReplies)
	posts.Get("/:id", s.GetPost)
	posts.Patch("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	// Comments
	comments := api.Group("/comments")
	comments.Post("/:id/like", auth, middleware.RateLimit(s.redis, 120, time.Minute, "react"), s.LikeComment)
	comments.Post("/:id/dislike", auth, middleware.RateLimit(s.redis, 120, time.Minute, "react"), s.DislikeComment)
	comments.Get("/:id", s.GetComment)
	comments.Patch("/:id", auth, s.UpdateComment)
	comments.Delete("/:id", auth, s.DeleteComment)

	// Tags
	tags := api.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Post("/", auth, middleware.RateLimit(s.redis, 20, time.Minute, "create_tag"), s.CreateTag)
	tags.Get("/:id", s.GetTag)
}

// AuthRequired enforces a valid bearer token, consulting Redis for revoked tokens when available.
func (s *Server) AuthRequired() fiber.Handler {
	var checker middleware.RevocationChecker
	if s.redis != nil {
		checker = cache.RevocationChecker(s.redis)
	}
	return middleware.AuthRequired(s.config.JWTSecret, checker)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs rate limiting and revocation, so its absence degrades rather than fails.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
