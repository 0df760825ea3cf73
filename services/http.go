// services/http.go
package services

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"

	_ "github.com/serenity-path/aura_api/docs"
	"github.com/serenity-path/aura_api/services/handlers"
	"github.com/serenity-path/aura_api/shared"
)

// HttpService owns the fiber app and the route table.
type HttpService struct {
	context.DefaultService

	logger zerolog.Logger
	app    *fiber.App
	port   int

	authSvc      *AuthService
	quizSvc      *QuizService
	progressSvc  *ProgressService
	contentSvc   *ContentService
	monitorSvc   *MonitoringService
	rateLimitSvc *RateLimitService
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	svc.logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", svc.Id()).Logger()

	svc.port = 8000
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			svc.port = port
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.quizSvc = svc.Service(QUIZ_SVC).(*QuizService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	svc.app = fiber.New(fiber.Config{
		AppName:      "Aura API",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: svc.errorHandler,
	})

	svc.app.Use(recover.New())
	svc.app.Use(cors.New(cors.Config{
		AllowOrigins: envOr("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	svc.app.Use(svc.monitorSvc.Middleware())

	svc.registerRoutes()

	addr := ":" + strconv.Itoa(svc.port)
	svc.logger.Info().Str("addr", addr).Msg("HTTP server listening")
	return svc.app.Listen(addr)
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	svc.logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}

// ==================== ROUTES ====================

func (svc *HttpService) registerRoutes() {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	userHandler := handlers.NewUserHandler(svc.authSvc, svc.progressSvc)
	quizHandler := handlers.NewQuizHandler(svc.quizSvc)
	progressHandler := handlers.NewProgressHandler(svc.progressSvc)
	contentHandler := handlers.NewContentHandler(svc.contentSvc)
	adminHandler := handlers.NewAdminHandler(svc.contentSvc)

	svc.app.Get("/ping", func(c *fiber.Ctx) error {
		return shared.ResponseOK(c, fiber.Map{"status": "ok"})
	})
	svc.app.Get("/swagger/*", swagger.HandlerDefault)

	api := svc.app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Use(svc.rateLimitSvc.Middleware("auth", 10, time.Minute))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	requireAuth := svc.authSvc.RequiredAuth()

	user := api.Group("/user", requireAuth)
	user.Get("/me", userHandler.Me)
	user.Get("/settings", userHandler.GetSettings)
	user.Put("/settings", userHandler.UpdateSettings)

	challenge := api.Group("/challenge", requireAuth)
	challenge.Get("/today", quizHandler.Today)
	challenge.Post("/session", quizHandler.StartSession)
	challenge.Post("/session/answer",
		svc.rateLimitSvc.Middleware("answer", 60, time.Minute), quizHandler.SubmitAnswer)
	challenge.Post("/session/complete", quizHandler.CompleteSession)

	progress := api.Group("/progress", requireAuth)
	progress.Get("/", progressHandler.GetProgress)
	progress.Get("/achievements", progressHandler.GetAchievements)

	api.Get("/leaderboard", requireAuth, progressHandler.GetLeaderboard)
	api.Get("/content/categories", contentHandler.GetCategories)

	admin := api.Group("/admin", requireAuth, svc.authSvc.RequireRole(shared.RoleAdmin))
	admin.Post("/questions", adminHandler.CreateQuestion)
	admin.Get("/questions", adminHandler.GetQuestionBank)
	admin.Post("/achievements/:id/badge", adminHandler.UploadBadge)
}
