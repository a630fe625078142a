package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebalance/internal/ai"
	"github.com/terraincognita07/bitebalance/internal/api"
	"github.com/terraincognita07/bitebalance/internal/cache"
	"github.com/terraincognita07/bitebalance/internal/cli"
	"github.com/terraincognita07/bitebalance/internal/config"
	"github.com/terraincognita07/bitebalance/internal/db"
	"github.com/terraincognita07/bitebalance/internal/jobs"
	"github.com/terraincognita07/bitebalance/internal/logger"
	"github.com/terraincognita07/bitebalance/internal/mailer"
	"github.com/terraincognita07/bitebalance/internal/metrics"
	"github.com/terraincognita07/bitebalance/internal/services"
)

const limiterPruneSchedule = "@every 1h"

func main() {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := serve(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func runCommand(args []string) error {
	switch args[0] {
	case "reset-password":
		if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
			return errors.New("usage: bitebalance reset-password <email>")
		}
		databaseURL, dbPath, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		return cli.RunResetPasswordCommand(db.Options{DatabaseURL: databaseURL, SQLitePath: dbPath}, args[1], os.Stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	time.Local = cfg.Location

	database, err := db.Open(db.Options{
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.DBPath,
		Logger:      logger.Gorm(log),
	})
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	recorder := metrics.New()
	policy := cfg.NutritionPolicy()
	options := api.Options{
		SecretKey:      cfg.SecretKey,
		Location:       cfg.Location,
		CookieSecure:   cfg.CookieSecure,
		Nutrition:      &policy,
		AdminEmails:    cfg.AdminPolicy,
		Logger:         log,
		Metrics:        recorder,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	if cfg.RedisURL != "" {
		foodCache, err := cache.NewRedis(lifecycleCtx, cfg.RedisURL, cfg.FoodsCacheTTL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, food search runs uncached")
		} else {
			defer foodCache.Close()
			options.FoodCache = foodCache
		}
	}

	options.Mailer = warningMailer(lifecycleCtx, cfg, log)

	generator, err := ai.New(lifecycleCtx, ai.Settings{
		Provider:     cfg.AIProvider,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
	})
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		log.WithField("provider", cfg.AIProvider).Info("AI provider not configured")
	case err != nil:
		return fmt.Errorf("ai init failed: %w", err)
	default:
		defer generator.Close()
		options.TextGenerator = generator
	}

	handler, err := api.NewHandler(database, options)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	scheduler := jobs.New(log, cfg.Location)
	if err := scheduler.AddChallengeEvaluation(cfg.ChallengeSchedule, handler.Challenges(), recorder); err != nil {
		return err
	}
	if err := scheduler.AddTask(limiterPruneSchedule, "limiter-prune", func() error {
		handler.PruneLimiters()
		return nil
	}); err != nil {
		return err
	}

	app := newApp(handler, recorder, cfg.CookieSecure)

	scheduler.Start()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		scheduler.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"postgres": cfg.UsesPostgres(),
		"tz":       cfg.Location.String(),
	}).Info("BiteBalance listening")
	return app.Listen(":" + cfg.Port)
}

func warningMailer(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) services.WarningMailer {
	if strings.TrimSpace(cfg.MailFrom) == "" {
		return mailer.NewLog(log)
	}
	ses, err := mailer.NewSES(ctx, cfg.AWSRegion, cfg.MailFrom)
	if err != nil {
		log.WithError(err).Warn("SES unavailable, warnings are only logged")
		return mailer.NewLog(log)
	}
	return ses
}

func newApp(handler *api.Handler, recorder *metrics.Recorder, cookieSecure bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "BiteBalance",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(compress.New())
	app.Use(recorder.Middleware)
	app.Use(csrf.New(csrfMiddlewareConfig(cookieSecure)))

	app.Get("/metrics", recorder.Handler())
	api.RegisterRoutes(app, handler)
	return app
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		Next:           skipCSRF,
		KeyLookup:      "form:csrf_token",
		CookieName:     "bitebalance_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
	}
}

// skipCSRF leaves only form and multipart bodies to the token check.
func skipCSRF(c *fiber.Ctx) bool {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
	return !strings.HasPrefix(contentType, fiber.MIMEApplicationForm) &&
		!strings.HasPrefix(contentType, fiber.MIMEMultipartForm)
}
