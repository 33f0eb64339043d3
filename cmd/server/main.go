package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/pto-approval-api/internal/config"
	"github.com/yukikurage/pto-approval-api/internal/constants"
	"github.com/yukikurage/pto-approval-api/internal/database"
	"github.com/yukikurage/pto-approval-api/internal/handlers"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/middleware"
	"github.com/yukikurage/pto-approval-api/internal/notify"
	"github.com/yukikurage/pto-approval-api/internal/repository"
	"github.com/yukikurage/pto-approval-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.IsProduction())

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", constants.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", constants.HeaderRequestID},
		AllowCredentials: true,
	}))

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create session store")
	}
	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	requestRepo := repository.NewPTORequestRepository(db)

	// Services
	ledger := services.NewLedger(cfg.HoursPerDay)
	ptoService := services.NewPTOService(
		userRepo,
		requestRepo,
		ledger,
		services.NewRoleGate(),
		newDispatcher(cfg, logger),
		logger,
		services.PTOServiceOptions{ReserveOnCreate: cfg.ReserveOnCreate},
	)
	directoryService := services.NewDirectoryService(userRepo, departmentRepo, logger)
	authService := services.NewAuthService(userRepo)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey, ledger, logger)
	}

	handlers.RegisterRoutes(r, userRepo, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		PTORequests: handlers.NewPTORequestHandler(ptoService, aiService),
		Team:        handlers.NewTeamHandler(ptoService, directoryService),
		Admin:       handlers.NewAdminHandler(directoryService, ptoService),
	})

	// Start server
	addr := ":" + cfg.HTTPPort
	logger.WithField("addr", addr).Info("Server starting")
	if err := r.Run(addr); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.SessionStore == "cookie" {
		return cookie.NewStore([]byte(cfg.SessionSecret)), nil
	}

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	return redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
}

// newDispatcher fans notifications out to every configured channel, falling
// back to the log when none is configured
func newDispatcher(cfg *config.Config, logger *logrus.Logger) notify.Dispatcher {
	var channels notify.Multi

	if cfg.ResendAPIKey != "" {
		channels = append(channels, notify.NewResendDispatcher(cfg.ResendAPIKey, cfg.MailFrom))
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notify.NewTelegramDispatcher(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.WithError(err).Warn("Telegram notifications disabled")
		} else {
			channels = append(channels, telegram)
		}
	}

	if len(channels) == 0 {
		logger.Info("No notification channel configured, logging notifications")
		return notify.NewLogDispatcher(logger)
	}
	return channels
}
