package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	auth "github.com/nexotv/nexo-auth"
	"github.com/nexotv/nexo-auth/config"
	"github.com/nexotv/nexo-auth/mailer"
)

// The worker drains the email queue filled by the server when
// EMAIL_QUEUE is enabled.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	z, err := auth.NewZapProduction(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %s", err)
	}
	defer z.Sync()
	logger := auth.NewZapLogger(z.Named("worker"))

	sender, err := mailer.NewSMTPSender(cfg.Mailer())
	if err != nil {
		log.Fatalf("smtp: %s", err)
	}

	templates, err := mailer.NewTemplates(cfg.EmailAppName)
	if err != nil {
		log.Fatalf("templates: %s", err)
	}

	redisOpt, err := cfg.RedisOpt()
	if err != nil {
		log.Fatalf("redis: %s", err)
	}

	worker := mailer.NewWorker(
		redisOpt,
		cfg.WorkerConcurrency,
		mailer.NewTemplateNotifier(templates, sender),
		logger,
	)

	go func() {
		logger.Info("email worker started", "redis", redisOpt.Addr, "concurrency", cfg.WorkerConcurrency)
		if err := worker.Run(); err != nil {
			logger.Error("email worker stopped", "error", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch

	logger.Info("shutting down email worker")
	worker.Shutdown()
}
