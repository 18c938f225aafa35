package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/serenityspa/spa-platform/cmd/mainconfig"
	appconfig "github.com/serenityspa/spa-platform/internal/config"
	"github.com/serenityspa/spa-platform/internal/events"
	"github.com/serenityspa/spa-platform/internal/notify"
	"github.com/serenityspa/spa-platform/internal/spa"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.UseMemoryQueue {
		logger.Error("notify worker cannot run when USE_MEMORY_QUEUE=true; the API process dispatches inline instead")
		os.Exit(1)
	}
	if cfg.NotificationQueueURL == "" {
		logger.Error("notify worker requires NOTIFICATION_QUEUE_URL")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := events.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotificationQueueURL)

	// The spa profile supplies the identity rendered into emails.
	profile := spa.ProfileFromConfig(cfg)
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, using static spa profile", "error", err)
		} else if stored, err := spa.NewStore(redisClient).Get(ctx); err == nil {
			profile = stored
		}
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); s != nil {
			sender = s
		}
	}
	if sender == nil {
		logger.Warn("email provider not configured, using stub sender", "provider", cfg.EmailProvider)
		sender = notify.NewStubEmailSender(logger)
	}

	renderer := notify.NewRenderer(profile, notify.WithBaseURL(cfg.PublicBaseURL))
	dispatcher := notify.NewDispatcher(queue, sender, renderer, logger,
		notify.WithWorkerCount(cfg.WorkerCount))
	dispatcher.Start(ctx)
	logger.Info("notify worker started", "workers", cfg.WorkerCount, "queue_url", cfg.NotificationQueueURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("notify worker shutting down")
	cancel()

	done := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("notify worker stopped")
	case <-time.After(cfg.ShutdownTimeout):
		logger.Error("notify worker shutdown timed out")
	}
}
