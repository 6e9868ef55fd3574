// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/featureflags"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	shutdownCtx       context.Context
	shutdownFn        context.CancelFunc
	notifier          *notifications.Notifier
	featureFlags      *featureflags.Manager
	userService       *service.UserService
	followService     *service.FollowService
	tweetService      *service.TweetService
	engagementService *service.EngagementService
	replyService      *service.ReplyService
	badgeService      *service.BadgeService
	searchService     *service.SearchService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Get(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	retry := repository.WithRetry(database.RetryPolicyFromConfig(cfg))

	userRepo := repository.NewUserRepository(db, retry)
	followRepo := repository.NewFollowRepository(db, retry)
	tweetRepo := repository.NewTweetRepository(db, retry)
	replyRepo := repository.NewReplyRepository(db, retry)
	engagementRepo := repository.NewEngagementRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("chirp-api"),
		featureFlags:   flags,
	}

	// A nil publisher keeps events off when Redis is unavailable.
	var publisher notifications.Publisher
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		publisher = server.notifier
	}

	server.userService = service.NewUserService(userRepo, followRepo, flags)
	server.followService = service.NewFollowService(userRepo, followRepo, publisher)
	server.tweetService = service.NewTweetService(userRepo, tweetRepo, replyRepo, publisher)
	server.engagementService = service.NewEngagementService(tweetRepo, replyRepo, engagementRepo, publisher)
	server.replyService = service.NewReplyService(tweetRepo, replyRepo, publisher)
	server.badgeService = service.NewBadgeService(userRepo)
	server.searchService = service.NewSearchService(userRepo, tweetRepo, flags,
		time.Duration(cfg.SearchTimeoutMS)*time.Millisecond)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, "60")
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  models.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	authed := s.AuthRequired()

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Chirp Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", authed, s.Logout)

	// Own profile
	api.Get("/profile", authed, s.GetMyProfile)
	api.Put("/profile", authed, s.UpdateMyProfile)

	// User routes; /suggestions must precede /:handle
	users := api.Group("/users")
	users.Get("/suggestions", authed, s.GetSuggestions)
	users.Get("/:handle/tweets", s.GetUserTweets)
	users.Get("/:handle/followers", s.GetFollowers)
	users.Get("/:handle/following", s.GetFollowing)
	users.Get("/:handle/follow", s.GetFollowStatus)
	users.Post("/:handle/follow", authed, s.FollowUser)
	users.Delete("/:handle/follow", authed, s.UnfollowUser)
	users.Get("/:handle", s.GetUserProfile)

	// Tweet routes
	tweets := api.Group("/tweets")
	tweets.Get("/", s.GetTweets)
	tweets.Post("/", authed, middleware.RateLimit(
		s.redis, 30, 5*time.Minute, "create_tweet"), s.CreateTweet)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	tweets.Post("/:id/like", authed, s.LikeTweet)
	tweets.Delete("/:id/like", authed, s.UnlikeTweet)
	tweets.Post("/:id/retweet", authed, s.RetweetTweet)
	tweets.Delete("/:id/retweet", authed, s.UnretweetTweet)
	tweets.Get("/:id/replies", s.GetReplies)
	tweets.Post("/:id/replies", authed, s.CreateReply)
	tweets.Post("/:id/replies/:replyId/like", authed, s.LikeReply)
	tweets.Delete("/:id/replies/:replyId/like", authed, s.UnlikeReply)
	tweets.Delete("/:id/replies/:replyId", authed, s.DeleteReply)
	tweets.Get("/:id", s.GetTweet)
	tweets.Delete("/:id", authed, s.DeleteTweet)

	// Search routes
	searchLimit := middleware.RateLimit(s.redis, 30, time.Minute, "search")
	api.Get("/search/hashtag", searchLimit, s.SearchHashtag)
	api.Get("/search", searchLimit, s.Search)
	api.Get("/trending/hashtags", s.GetTrendingHashtags)

	// Admin routes. Badge handlers check admin rights in the service so that
	// the 403 precedes any look at the body or the target.
	admin := api.Group("/admin")
	admin.Post("/users/:handle/badges", authed, s.GrantBadge)
	admin.Delete("/users/:handle/badges", authed, s.RevokeBadge)
	admin.Get("/feature-flags", authed, s.AdminRequired(), s.GetFeatureFlags)
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: rate limits fail open and events are skipped.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus == "unhealthy" || redisStatus == "unhealthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus == "unavailable":
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		if err := s.badgeService.RequireAdmin(c.UserContext(), userID); err != nil {
			return s.respondError(c, err)
		}
		return c.Next()
	}
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Chirp API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
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

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier != nil {
		err := s.notifier.StartUserSubscriber(s.shutdownCtx, func(userID string, ev notifications.Event) {
			middleware.Logger.Debug("event delivered",
				slog.String("recipient_id", userID),
				slog.String("type", ev.Type),
				slog.String("actor_id", ev.ActorID),
			)
		})
		if err != nil {
			middleware.Logger.Warn("event subscriber not started", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
