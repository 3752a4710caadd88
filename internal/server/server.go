// Package server contains HTTP and WebSocket handlers for the forum API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "stackit/docs" // swagger docs
	"stackit/internal/bootstrap"
	"stackit/internal/config"
	"stackit/internal/featureflags"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/notifications"
	"stackit/internal/promotion"
	"stackit/internal/repository"
	"stackit/internal/service"

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
	appOnce        sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	tagRepo      repository.TagRepository
	voteRepo     repository.VoteRepository
	reportRepo   repository.ReportRepository

	questionService *service.QuestionService
	answerService   *service.AnswerService
	voteService     *service.VoteService
	tagService      *service.TagService
	userService     *service.UserService
	adminService    *service.AdminService
	reportService   *service.ReportService

	tokens       *tokenManager
	tickets      *ticketStore
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager
	promotionJob *promotion.Job
	scheduler    *promotion.Scheduler
}

// NewServer connects the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps wires repositories, services and background workers
// around already-open connections. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("stackit-api"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		userRepo:       repository.NewUserRepository(db),
		questionRepo:   repository.NewQuestionRepository(db),
		answerRepo:     repository.NewAnswerRepository(db),
		tagRepo:        repository.NewTagRepository(db),
		voteRepo:       repository.NewVoteRepository(db),
		reportRepo:     repository.NewReportRepository(db),
		tokens:         newTokenManager(cfg),
		tickets:        newTicketStore(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.hub = notifications.NewHub()
	s.notifier = notifications.NewNotifier(redisClient).WithLocalHub(s.hub)

	s.questionService = service.NewQuestionService(s.questionRepo, s.tagRepo)
	s.answerService = service.NewAnswerService(s.questionRepo, s.answerRepo, s.notifier)
	s.voteService = service.NewVoteService(s.questionRepo, s.answerRepo, s.voteRepo)
	s.tagService = service.NewTagService(s.tagRepo, s.questionRepo)
	s.userService = service.NewUserService(s.userRepo)
	s.adminService = service.NewAdminService(s.userRepo, repository.NewStatsRepository(db))
	s.reportService = service.NewReportService(s.reportRepo, s.questionRepo, s.answerRepo)

	s.promotionJob = promotion.NewJob(s.userRepo, cfg.PromotionThreshold, s.notifier)
	s.scheduler = promotion.NewScheduler(s.promotionJob, cfg.PromotionSchedule)

	return s, nil
}

// App returns the configured fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	s.appOnce.Do(func() {
		app := fiber.New(fiber.Config{
			AppName:      "StackIt API",
			ErrorHandler: s.handleError,
		})
		s.SetupMiddleware(app)
		s.SetupRoutes(app)
		s.app = app
	})
	return s.app
}

// handleError turns errors that escaped a handler into the JSON error shape.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, &models.AppError{
			Code:    codeForStatus(fe.Code),
			Message: fe.Message,
		})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "Too many requests, please try again later.",
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

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "StackIt API Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	questions := api.Group("/questions")
	questions.Get("/", s.OptionalAuth(), s.ListQuestions)
	questions.Post("/", s.AuthRequired(), s.RequireRole(models.RoleUser, models.RoleAdmin),
		middleware.RateLimit(s.redis, 5, time.Minute, "create_question"), s.CreateQuestion)
	// Specific /:id/<resource> routes before the generic /:id ones
	questions.Get("/:questionId/answers", s.OptionalAuth(), s.ListAnswers)
	questions.Post("/:questionId/answers", s.AuthRequired(), s.RequireRole(models.RoleUser, models.RoleAdmin),
		middleware.RateLimit(s.redis, 10, time.Minute, "create_answer"), s.CreateAnswer)
	questions.Patch("/:id/status", s.AuthRequired(), s.UpdateQuestionStatus)
	questions.Post("/:id/votes", s.AuthRequired(), s.VotingEnabled(), s.CastQuestionVote)
	questions.Delete("/:id/votes", s.AuthRequired(), s.VotingEnabled(), s.RetractQuestionVote)
	questions.Get("/:id", s.OptionalAuth(), s.GetQuestion)
	questions.Put("/:id", s.AuthRequired(), s.ReplaceQuestion)
	questions.Patch("/:id", s.AuthRequired(), s.PatchQuestion)
	questions.Delete("/:id", s.AuthRequired(), s.DeleteQuestion)

	answers := api.Group("/answers", s.AuthRequired())
	answers.Patch("/:answerId/status", s.UpdateAnswerStatus)
	answers.Patch("/:answerId/accept", s.ToggleAcceptAnswer)
	answers.Post("/:answerId/votes", s.VotingEnabled(), s.CastAnswerVote)
	answers.Delete("/:answerId/votes", s.VotingEnabled(), s.RetractAnswerVote)
	answers.Put("/:answerId", s.ReplaceAnswer)
	answers.Patch("/:answerId", s.PatchAnswer)
	answers.Delete("/:answerId", s.DeleteAnswer)

	tags := api.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Get("/trending", s.TrendingTags)
	tags.Get("/search/:query", s.SearchTags)
	tags.Get("/:tagName/questions", s.QuestionsByTag)

	user := api.Group("/user", s.AuthRequired())
	user.Get("/profile", s.GetProfile)
	user.Put("/profile", s.UpdateProfile)
	user.Get("/questions", s.ListOwnQuestions)
	user.Get("/answers", s.ListOwnAnswers)

	api.Post("/reports", s.AuthRequired(),
		middleware.RateLimit(s.redis, 10, 10*time.Minute, "create_report"), s.CreateReport)

	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/users", s.AdminListUsers)
	admin.Patch("/users/:id/ban", s.AdminToggleBan)
	admin.Patch("/users/:id", s.AdminUpdateUser)
	admin.Delete("/questions/:id", s.AdminHardDeleteQuestion)
	admin.Get("/stats", s.AdminStats)
	admin.Get("/reports", s.AdminListReports)
	admin.Patch("/reports/:id/resolve", s.AdminResolveReport)
	admin.Post("/promotions/run", s.AdminRunPromotions)
	admin.Get("/feature-flags", s.GetFeatureFlags)

	ws := api.Group("/ws")
	ws.Post("/ticket", s.AuthRequired(), s.IssueWSTicket)
	ws.Get("/", s.RequireUpgrade, s.AuthRequired(), s.WebsocketHandler())
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
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := "healthy"
	code := fiber.StatusOK
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// StartBackground wires the notification hub to Redis and starts the
// promotion scheduler unless the promotion_job flag is off.
func (s *Server) StartBackground() error {
	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		slog.Error("failed to start notification wiring", slog.String("error", err.Error()))
	}

	if !s.featureFlags.Enabled(featureflags.PromotionJob, 0) {
		slog.Info("promotion scheduler disabled by feature flag")
		return nil
	}
	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("start promotion scheduler: %w", err)
	}
	return nil
}

// Start starts background workers and serves HTTP until the listener stops.
func (s *Server) Start() error {
	app := s.App()
	if err := s.StartBackground(); err != nil {
		return err
	}
	slog.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.scheduler.Stop(ctx); err != nil {
		slog.Error("error stopping promotion scheduler", slog.String("error", err.Error()))
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		slog.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
