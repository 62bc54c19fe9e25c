package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	auth "github.com/nexotv/nexo-auth"
	"github.com/nexotv/nexo-auth/activitymap"
	"github.com/nexotv/nexo-auth/config"
	"github.com/nexotv/nexo-auth/mailer"
)

type App struct {
	config   *config.Config
	zap      *zap.Logger
	logger   auth.Logger
	bunDB    *bun.DB
	repo     auth.RepositoryManager
	notifier auth.Notifier
	async    *mailer.AsyncNotifier
	closers  []func() error
	srv      router.Server[*fiber.App]
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	app := &App{config: cfg}

	steps := []func(context.Context, *App) error{
		WithLogger,
		WithPersistence,
		WithNotifier,
		WithHTTPAuth,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			log.Fatalf("startup: %s", err)
		}
	}

	go func() {
		app.logger.Info("http server listening", "addr", cfg.AppAddr)
		if err := app.srv.Serve(cfg.AppAddr); err != nil {
			app.logger.Error("http server stopped", "error", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch,
		os.Interrupt,
		syscall.SIGTERM,
	)
	<-ch

	app.logger.Info("shutting down")
	app.Shutdown()
}

func WithLogger(_ context.Context, app *App) error {
	z, err := auth.NewZapProduction(app.config.LogLevel, app.config.LogFormat)
	if err != nil {
		return err
	}
	app.zap = z
	app.logger = auth.NewZapLogger(z)
	app.closers = append(app.closers, func() error {
		_ = z.Sync()
		return nil
	})
	return nil
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := auth.OpenDB(app.config.DBDriver, app.config.DBDSN)
	if err != nil {
		return err
	}
	if app.config.DBDriver == auth.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	repo := auth.NewRepositoryManager(db, auth.WithHashidIDs(app.config.HashidIDs))
	repo.MustValidate()

	if err := repo.CreateSchema(ctx); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = repo
	app.closers = append(app.closers, db.Close)
	return nil
}

func WithNotifier(_ context.Context, app *App) error {
	if app.config.EmailQueue {
		redisOpt, err := app.config.RedisOpt()
		if err != nil {
			return err
		}
		q := mailer.NewQueueNotifier(redisOpt, app.logger)
		app.notifier = q
		app.closers = append(app.closers, q.Close)
		app.logger.Info("email notifications queued", "redis", redisOpt.Addr)
		return nil
	}

	sender, err := mailer.NewSMTPSender(app.config.Mailer())
	if err != nil {
		return err
	}

	templates, err := mailer.NewTemplates(app.config.EmailAppName)
	if err != nil {
		return err
	}

	async := mailer.NewAsyncNotifier(
		mailer.NewTemplateNotifier(templates, sender),
		app.config.EmailTimeout,
		app.logger,
	)
	app.notifier = async
	app.async = async
	app.closers = append(app.closers, func() error {
		async.Wait()
		return nil
	})
	return nil
}

func WithHTTPAuth(_ context.Context, app *App) error {
	tokens := auth.NewTokenServiceFromConfig(app.config, app.logger)

	auther := auth.NewAuthenticator(app.repo.Users(), tokens).
		WithLogger(app.logger).
		WithNotifier(app.notifier).
		WithActivitySink(activitymap.LogSink(app.logger))

	// queued deliveries fail on the worker, in-process ones report here
	if app.async != nil {
		app.async.OnError = auther.NotificationFailed
	}

	guard := auth.NewHTTPAuthenticator(auther, app.config)
	guard.Logger = app.logger

	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			AppName:      "nexo-auth",
			ReadTimeout:  app.config.AppReadTimeout,
			WriteTimeout: app.config.AppWriteTimeout,
		})
	})

	srv.Router().Get("/health", func(c router.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}).SetName("health.get")

	auth.RegisterAuthRoutes(srv.Router(),
		auth.WithControllerAuther(auther),
		auth.WithControllerGuard(guard),
		auth.WithControllerLogger(app.logger),
		auth.WithControllerDebug(app.config.Debug),
	)

	app.srv = srv
	return nil
}

func (a *App) Shutdown() {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown", "error", err)
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("shutdown close error", "error", err)
		}
	}
}
