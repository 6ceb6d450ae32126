package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/controller"
	"github.com/lshigami/quizx/internal/database"
	"github.com/lshigami/quizx/internal/logger"
	"github.com/lshigami/quizx/internal/middleware"
	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/monitoring"
	"github.com/lshigami/quizx/internal/repository"
	"github.com/lshigami/quizx/internal/service"
	"github.com/lshigami/quizx/internal/store"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quiz X API
// @version 1.0
// @description Session API for AI-generated science quizzes with usage quotas, history and certificates.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Storage
		fx.Provide(
			store.NewProvider,
			repository.NewAccountRepository,
		),

		fx.Provide(
			service.NewGeminiQuizService,
			service.NewAuthService,
			service.NewCertificateService,
			service.NewSessionManager,
			service.NewSessionTokenService,
		),

		fx.Provide(controller.NewSessionController),

		// Migrations run before the server hook is appended so requests never
		// see a missing table.
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	logger.Configure(cfg)
	monitoring.Init()

	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())
	r.Use(monitoring.MetricsMiddleware())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 || cfg.Server.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSAllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", monitoring.PrometheusHandler())

	return r
}

// RegisterRoutes wires the HTTP surface onto router. Background work started
// by middleware ends with ctx.
func RegisterRoutes(ctx context.Context, router *gin.Engine, cfg *config.Config, tokens service.SessionTokenService, sessionCtrl *controller.SessionController) {
	router.GET("/healthz", sessionCtrl.Health)

	api := router.Group("/api/v1")
	api.POST("/sessions", sessionCtrl.CreateSession)

	session := api.Group("/session", middleware.SessionToken(tokens))
	{
		session.GET("", sessionCtrl.GetSession)
		session.POST("/quiz", middleware.RateLimiter(ctx, cfg.RateLimit.QuizStartsPerMinute, time.Minute), sessionCtrl.StartQuiz)
		session.PUT("/answers/:index", sessionCtrl.SelectAnswer)
		session.PUT("/position", sessionCtrl.Navigate)
		session.POST("/finish", sessionCtrl.Finish)
		session.POST("/retry", sessionCtrl.Retry)
		session.POST("/home", sessionCtrl.Home)

		session.POST("/auth/signup", sessionCtrl.SignUp)
		session.POST("/auth/signin", sessionCtrl.SignIn)
		session.POST("/auth/federated", sessionCtrl.SignInFederated)
		session.POST("/logout", sessionCtrl.Logout)
		session.POST("/upgrade", sessionCtrl.Upgrade)

		session.PUT("/modals", sessionCtrl.SetModal)
		session.PUT("/theme", sessionCtrl.SetTheme)
		session.DELETE("/notice", sessionCtrl.DismissNotice)

		session.GET("/history", sessionCtrl.GetHistory)
		session.GET("/stats", sessionCtrl.GetStats)
		session.GET("/certificate", sessionCtrl.GetCertificate)
	}
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tokens service.SessionTokenService,
	sessionCtrl *controller.SessionController,
) {
	routesCtx, stopRoutes := context.WithCancel(context.Background())
	RegisterRoutes(routesCtx, router, cfg, tokens, sessionCtrl)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quiz X API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			defer stopRoutes()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := db.AutoMigrate(&model.StoreEntry{}, &model.Account{}); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
