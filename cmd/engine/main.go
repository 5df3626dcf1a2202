package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/agent"
	"github.com/ksred/tradepulse/internal/auth"
	"github.com/ksred/tradepulse/internal/broker"
	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/control"
	"github.com/ksred/tradepulse/internal/database"
	"github.com/ksred/tradepulse/internal/decision"
	"github.com/ksred/tradepulse/internal/executor"
	"github.com/ksred/tradepulse/internal/journal"
	"github.com/ksred/tradepulse/internal/risk"
	"github.com/ksred/tradepulse/pkg/middleware"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		zlog.Fatal().Str("key", key).Str("value", raw).Msg("invalid numeric environment variable")
	}
	return value
}

// main wires the pipeline (bus, decision engine, agent, executor, paper
// broker, journal) and serves the control plane, with graceful shutdown.
func main() {
	db, err := database.NewDatabase(os.Getenv("DB_PATH"))
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}
	journalDB := journal.NewDatabase(db)

	// Account limits consumed by the risk gate; supplied here, never read
	// from the environment inside the core.
	account := risk.AccountSnapshot{
		Capital:          envFloat("CAPITAL", 100000),
		MaxRiskPerTrade:  envFloat("MAX_RISK_PER_TRADE", 0.02),
		MaxTotalExposure: envFloat("MAX_TOTAL_EXPOSURE", 50000),
		MaxDailyLoss:     envFloat("MAX_DAILY_LOSS", 5000),
	}

	eventBus := bus.NewEventBus()
	prices := control.NewPriceCache()
	paperBroker := broker.NewPaperBroker(broker.WithFillPrice(prices.Get))

	engine := decision.NewEngine(
		decision.MomentumScorer{},
		decision.RuleBasedExplainer{},
		decision.WithRiskFraction(envFloat("RISK_FRACTION", decision.DefaultRiskFraction)),
	)

	tradeAgent := agent.NewAgent(eventBus, engine, account, journalDB)
	orderExecutor := executor.NewExecutor(eventBus, paperBroker, journalDB)

	pipelineCtx, pipelineCancel := context.WithCancel(context.Background())
	defer pipelineCancel()
	go tradeAgent.Run(pipelineCtx)
	go orderExecutor.Run(pipelineCtx)

	// Control plane
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "tradepulse-secret-key"
	}
	authService := auth.NewService(jwtSecret)
	apiKey, apiSecret := os.Getenv("API_KEY"), os.Getenv("API_SECRET")
	if apiKey == "" {
		apiKey, apiSecret = auth.DemoAPIKey, auth.DemoAPISecret
	}
	authService.RegisterAPICredentials(apiKey, apiSecret)

	router := gin.Default()
	router.Use(middleware.RateLimit())
	setupRoutes(
		router,
		auth.NewGinHandlers(authService),
		control.NewGinHandlers(eventBus, tradeAgent, paperBroker, journalDB, prices),
		authService,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down engine...")

	// Stop consuming at the next queue-wait boundary, then drain the server.
	tradeAgent.Stop()
	pipelineCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Engine exiting")
}

// setupRoutes configures the control-plane endpoints:
// - Auth routes: public token issuance
// - Ingestion and views: JWT-protected
// - Control routes (kill switch): JWT-protected
func setupRoutes(
	router *gin.Engine,
	authHandlers *auth.GinHandlers,
	controlHandlers *control.GinHandlers,
	authService *auth.Service,
) {
	router.GET("/health", controlHandlers.HealthHandler())

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", authHandlers.GenerateTokenHandler())
		}

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(authService))
		{
			protected.POST("/ticks", controlHandlers.IngestTickHandler())
			protected.GET("/positions", controlHandlers.PositionsHandler())
			protected.GET("/fills", controlHandlers.FillsHandler())

			controlGroup := protected.Group("/control")
			{
				controlGroup.GET("/status", controlHandlers.StatusHandler())
				controlGroup.GET("/alerts", controlHandlers.AlertsHandler())
				controlGroup.POST("/kill", controlHandlers.KillHandler())
				controlGroup.POST("/revive", controlHandlers.ReviveHandler())
			}
		}
	}
}
