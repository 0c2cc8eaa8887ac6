package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/times-table-bot/internal/config"
	httpapi "github.com/aliskhannn/times-table-bot/internal/delivery/http"
	"github.com/aliskhannn/times-table-bot/internal/delivery/telegram"
	"github.com/aliskhannn/times-table-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/times-table-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/times-table-bot/internal/infra/sqlite"
	"github.com/aliskhannn/times-table-bot/internal/infra/timer"
	"github.com/aliskhannn/times-table-bot/internal/logger"
	"github.com/aliskhannn/times-table-bot/internal/service"
	"github.com/aliskhannn/times-table-bot/internal/storage"
)

func main() {
	os.Exit(start())
}

// start runs the bot and returns the process exit code. Deferred cleanup
// runs before main exits.
func start() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("bot stopped with error", zap.Error(err))
		return 1
	}

	lg.Info("shutdown complete")
	return 0
}

// storageBackend is the repository set of one database driver.
type storageBackend struct {
	transactor service.Transactor
	settings   service.SettingsRepository
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*storageBackend, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		lg.Info("using sqlite storage", zap.String("path", cfg.DB.SQLitePath))

		return &storageBackend{
			transactor: sqlite.NewTransactor(db),
			settings:   sqlite.NewSettingsRepository(db),
			close:      func() { _ = db.Close() },
		}, nil

	default:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, err
		}

		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections), // bounded by config.Validate
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		lg.Info("using postgres storage")

		return &storageBackend{
			transactor: pgrepo.NewTransactor(postgres.NewTransactor(pool)),
			settings:   pgrepo.NewSettingsRepository(pool),
			close:      pool.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	backend, err := openStorage(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer backend.close()

	deferrer := timer.NewGocronDeferrer()
	defer deferrer.Stop()

	quizCfg := service.QuizConfig{
		AdvanceDelay:         cfg.Quiz.AdvanceDelay,
		CelebrationThreshold: cfg.Quiz.CelebrationThreshold,
		MinOperand:           cfg.Quiz.MinOperand,
		MaxOperand:           cfg.Quiz.MaxOperand,
	}

	userService := service.NewUserService(backend.transactor)
	settingsService := service.NewSettingsService(backend.settings)
	sessions := service.NewSessionService(
		storage.NewSessionStore[int64, *service.QuizEngine](),
		settingsService,
		deferrer,
		quizCfg,
		lg,
	)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{Command: "quiz", Description: "Show the current question"},
		{Command: "mode", Description: "Switch between multiplication and division"},
		{Command: "stats", Description: "Show your score"},
		{Command: "stop", Description: "Finish the quiz"},
		{Command: "help", Description: "Help"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	handler := telegram.NewHandler(bot, lg, userService, sessions)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return handler.Run(ctx)
	})

	g.Go(func() error {
		return service.NewSessionSweeper(sessions, cfg.Sessions.SweepSchedule, cfg.Sessions.IdleTTL, lg.Named("telegram_sweeper")).Start(ctx)
	})

	if cfg.HTTP.Enabled {
		if cfg.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		sessionHandler := httpapi.NewSessionHandler(deferrer, quizCfg, lg)
		router := httpapi.NewRouter(httpapi.RouterConfig{
			SessionHandler: sessionHandler,
			Logger:         lg,
		})

		g.Go(func() error {
			return httpapi.NewServer(cfg.HTTP.Addr, router, lg).Run(ctx)
		})
		g.Go(func() error {
			return service.NewSessionSweeper(sessionHandler, cfg.Sessions.SweepSchedule, cfg.Sessions.IdleTTL, lg.Named("http_sweeper")).Start(ctx)
		})
	}

	return g.Wait()
}
