package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NasaVasa/reservewatch/internal/config"
	"github.com/NasaVasa/reservewatch/internal/delivery/httpapi"
	"github.com/NasaVasa/reservewatch/internal/delivery/telegram"
	"github.com/NasaVasa/reservewatch/internal/infra/db"
	"github.com/NasaVasa/reservewatch/internal/infra/exchange"
	"github.com/NasaVasa/reservewatch/internal/infra/log"
	"github.com/NasaVasa/reservewatch/internal/infra/tracing"
	"github.com/NasaVasa/reservewatch/internal/notify"
	"github.com/NasaVasa/reservewatch/internal/scheduler"
	"github.com/NasaVasa/reservewatch/internal/usecase"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	jobs      *usecase.Jobs
	scheduler *scheduler.Scheduler
	server    *http.Server
	hub       *notify.Hub
	bot       *telegram.Bot
	logger    *zap.Logger
	cleanups  []func(ctx context.Context) error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	a := &App{logger: logger}

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		return nil, err
	}
	a.cleanups = append(a.cleanups, shutdownTracing)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.cleanups = append(a.cleanups, func(context.Context) error { return db.Close(dbConn) })

	triggerRepo := db.NewTriggerRepository(dbConn)
	reserveRepo := db.NewReserveRepository(dbConn)
	orderRepo := db.NewOrderRepository(dbConn)
	exchangeClient := exchange.NewClient(cfg.ExchangeBaseURL, cfg.ExchangeTimeout, cfg.ExchangeRPS, logger)

	a.hub = notify.NewHub(logger)
	notifier := notify.NewMulti(cfg.AppLinkBase, logger, a.hub)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			a.Shutdown()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		notifier.AddSink(notify.NewRedisPublisher(client, cfg.RedisChannel))
		a.cleanups = append(a.cleanups, func(context.Context) error { return client.Close() })
		logger.Info("redis notifications enabled", zap.String("channel", cfg.RedisChannel))
	}

	a.scheduler = scheduler.New(ctx, logger)
	reserveCheck := usecase.NewReserveCheck(triggerRepo, reserveRepo, exchangeClient, notifier, logger)
	orderWatch := usecase.NewOrderWatch(orderRepo, exchangeClient, notifier, logger)
	a.jobs = usecase.NewJobs(
		a.scheduler,
		reserveCheck,
		orderWatch,
		notifier,
		usecase.Schedule{Interval: cfg.ReserveCheckInterval, Flex: cfg.ReserveCheckFlex},
		usecase.Schedule{Interval: cfg.OrderPollInterval, Flex: cfg.OrderPollFlex},
		logger,
	)

	triggerUC := usecase.NewTriggerUsecase(triggerRepo, reserveRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, exchangeClient)

	if cfg.TelegramBotToken != "" {
		api, err := telegram.NewAPI(cfg.TelegramBotToken)
		if err != nil {
			a.Shutdown()
			return nil, err
		}
		if cfg.TelegramChatID != 0 {
			notifier.AddSink(telegram.NewNotifier(api, cfg.TelegramChatID, logger))
		}
		handlers := telegram.NewHandlers(triggerUC, orderUC, a.jobs, cfg.TelegramChatID, logger)
		a.bot = telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)
	}

	handler := httpapi.NewHandler(triggerUC, orderUC, a.jobs, a.hub, logger)
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("reservewatch service starting", zap.String("http_addr", a.server.Addr))
	a.jobs.Start()

	errs := make(chan error, 2)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	if a.bot != nil {
		go func() {
			if err := a.bot.Start(ctx); err != nil {
				errs <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	}

	a.logger.Info("reservewatch service started", zap.Bool("telegram", a.bot != nil))
	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		return err
	}
}

func (a *App) Shutdown() {
	a.logger.Info("reservewatch service shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to stop http server", zap.Error(err))
		}
	}
	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](ctx); err != nil {
			a.logger.Warn("cleanup failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
