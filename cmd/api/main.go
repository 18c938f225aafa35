package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/serenityspa/spa-platform/cmd/mainconfig"
	"github.com/serenityspa/spa-platform/internal/api/router"
	"github.com/serenityspa/spa-platform/internal/bookings"
	"github.com/serenityspa/spa-platform/internal/catalog"
	appconfig "github.com/serenityspa/spa-platform/internal/config"
	"github.com/serenityspa/spa-platform/internal/events"
	"github.com/serenityspa/spa-platform/internal/notify"
	"github.com/serenityspa/spa-platform/internal/observability/metrics"
	"github.com/serenityspa/spa-platform/internal/spa"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting spa-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Spa profile and the calendar derived from it
	profile := spa.ProfileFromConfig(cfg)

	var spaStore *spa.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, serving static spa profile", "error", err)
		} else {
			spaStore = spa.NewStore(redisClient)
			if stored, err := spaStore.Get(ctx); err == nil {
				profile = stored
			}
		}
	}

	calendar, err := profile.Calendar()
	if err != nil {
		logger.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	// Storage: postgres when configured, in-memory otherwise
	var (
		catalogRepo  catalog.Repository
		bookingStore bookings.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		catalogRepo = catalog.NewPostgresRepository(pool)
		bookingStore = bookings.NewPostgresStore(pool)
		logger.Info("using postgres storage")
	} else {
		memRepo := catalog.NewInMemoryRepository()
		if err := catalog.Seed(ctx, memRepo); err != nil {
			logger.Error("failed to seed service catalog", "error", err)
			os.Exit(1)
		}
		catalogRepo = memRepo
		bookingStore = bookings.NewInMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Notification queue: SQS in production, in-memory with an in-process
	// dispatcher otherwise.
	var queue events.QueueClient
	runInlineDispatcher := false
	if cfg.UseMemoryQueue || cfg.NotificationQueueURL == "" {
		queue = events.NewMemoryQueue(256)
		runInlineDispatcher = true
		logger.Info("using in-memory notification queue with inline dispatcher")
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue = events.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotificationQueueURL)
		logger.Info("using SQS notification queue", "queue_url", cfg.NotificationQueueURL)
	}
	publisher := events.NewPublisher(queue, logger)

	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()
	var dispatcher *notify.Dispatcher
	if runInlineDispatcher {
		sender, err := buildEmailSender(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to configure email sender", "error", err)
			os.Exit(1)
		}
		renderer := notify.NewRenderer(profile, notify.WithBaseURL(cfg.PublicBaseURL))
		dispatcher = notify.NewDispatcher(queue, sender, renderer, logger,
			notify.WithWorkerCount(cfg.WorkerCount))
		dispatcher.Start(dispatcherCtx)
	}

	// Metrics
	schedMetrics := metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)

	ledger := bookings.NewLedger(bookingStore, catalogRepo, calendar, logger,
		bookings.WithPublisher(publisher),
		bookings.WithMetrics(schedMetrics),
		bookings.WithLocation(profile.Location()),
	)

	r := router.New(&router.Config{
		Logger:             logger,
		CatalogHandler:     catalog.NewHandler(catalogRepo, logger),
		BookingsHandler:    bookings.NewHandler(ledger, logger),
		SpaHandler:         spa.NewHandler(spaStore, profile, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingRateLimit:   cfg.BookingRateLimit,
		BookingRateBurst:   cfg.BookingRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if dispatcher != nil {
		stopDispatcher()
		dispatcher.Wait()
	}

	logger.Info("server stopped")
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("SENDGRID_API_KEY not set, falling back to stub email sender")
			return notify.NewStubEmailSender(logger), nil
		}
		return sender, nil
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender == nil {
			return notify.NewStubEmailSender(logger), nil
		}
		return sender, nil
	default:
		return notify.NewStubEmailSender(logger), nil
	}
}
