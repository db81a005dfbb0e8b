package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limpide/limpide/internal/config"
	"github.com/limpide/limpide/internal/database"
	"github.com/limpide/limpide/internal/events"
	"github.com/limpide/limpide/internal/modules/accounts"
	"github.com/limpide/limpide/internal/modules/education"
	"github.com/limpide/limpide/internal/modules/marketdata"
	"github.com/limpide/limpide/internal/modules/portfolio"
	"github.com/limpide/limpide/internal/scheduler"
	"github.com/limpide/limpide/internal/server"
	"github.com/limpide/limpide/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Limpide")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(accounts.Schema, marketdata.Schema, portfolio.Schema, education.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventManager := events.NewManager(log)

	// Repositories
	users := accounts.NewUserRepository(db.Conn(), log)
	profiles := accounts.NewProfileRepository(db.Conn(), log)
	quizResponses := accounts.NewQuizResponseRepository(db.Conn(), log)
	assets := marketdata.NewRepository(db.Conn(), eventManager, log)
	portfolios := portfolio.NewRepository(db.Conn(), log)
	history := portfolio.NewHistoryRepository(db.Conn(), log)
	progress := education.NewRepository(db.Conn(), log)

	// Seed the asset directory
	if cfg.SeedAssets {
		if err := marketdata.Seed(assets, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed assets")
		}
	}

	// Services
	accountsService := accounts.NewService(users, profiles, quizResponses, eventManager, log)
	curriculum := education.NewCurriculum(cfg.CurriculumDir, log)
	learning := education.NewService(curriculum, progress, eventManager, log)
	builder := portfolio.NewBuilder(portfolios, history, assets, profiles, eventManager, log)
	valuation := portfolio.NewValuation(portfolios, log)
	clarity := portfolio.NewClarity(portfolios, progress)

	// Handlers
	accountsHandler := accounts.NewHandler(accountsService, profiles, log)
	assetsHandler := marketdata.NewHandler(assets, log)
	portfolioHandler := portfolio.NewHandler(portfolios, builder, valuation, clarity, history, log)
	educationHandler := education.NewHandler(learning, curriculum, progress, profiles, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	snapshotJob := scheduler.NewSnapshotJob(portfolios, valuation, history, eventManager, log)
	if err := sched.AddJob(cfg.SnapshotSchedule, snapshotJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot job")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DevMode: cfg.DevMode,

		Users:     users,
		Profiles:  profiles,
		Accounts:  accountsHandler,
		Assets:    assetsHandler,
		Portfolio: portfolioHandler,
		Education: educationHandler,

		Portfolios: portfolios,
		Valuation:  valuation,
		Clarity:    clarity,
		Learning:   learning,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
