package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localdink/internal/api"
	"localdink/internal/assistant"
	"localdink/internal/config"
	"localdink/internal/courts"
	"localdink/internal/daemon"
	"localdink/internal/database"
	"localdink/internal/groups"
	"localdink/internal/hydrate"
	"localdink/internal/logger"
	"localdink/internal/middleware"
	"localdink/internal/notify"
	"localdink/internal/players"
	"localdink/internal/ratelimit"
	"localdink/internal/rsvp"
	"localdink/internal/sessions"
	"localdink/internal/sms"
	"localdink/internal/storage"
	"localdink/internal/telemetry"
	"localdink/internal/validator"

	"github.com/gofiber/fiber/v2"
	fiberlimiter "github.com/gofiber/fiber/v2/middleware/limiter"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal", "signal", sig.String())
		cancel()
	}()

	cfg := config.NewConfig()

	log := logger.New(cfg)

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		log.Error("Failed to initialize telemetry", "error", err)
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	if handler := tel.Handler(nil); handler != nil {
		log = slog.New(logger.NewMultiHandler(log.Handler(), handler))
		slog.SetDefault(log)
	}

	// Postgres
	db := database.NewDatabase()
	if err := db.Connect(ctx, cfg.Database.DSN()); err != nil {
		log.Error("Failed to connect to database", "error", err)
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error("Failed to migrate database", "error", err)
		return err
	}

	// Redis backs the rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Session store
	sessionStorage := postgres.New(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		Table:    "sessions",
		Reset:    false,
	})

	sessionStore := fibersession.New(fibersession.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:session_id",
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == config.EnvironmentProduction,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     30 * 24 * time.Hour,
	})

	fileStorage, err := storage.New(cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		return err
	}

	smsClient := sms.NewClient(sms.Config{
		AccountSID: cfg.SMS.AccountSID,
		AuthToken:  cfg.SMS.AuthToken,
		From:       cfg.SMS.From,
		BaseURL:    cfg.SMS.BaseURL,
	})

	robin, err := assistant.New(ctx, log, cfg.Assistant.APIKey, cfg.Assistant.Model)
	if err != nil {
		log.Error("Failed to initialize assistant", "error", err)
		return err
	}

	router := notify.NewRouter(log, &db, smsClient)
	rsvpManager := rsvp.NewManager(log, &db, &router)
	hydrator := hydrate.NewHydrator(&db)

	playerManager := players.NewManager(log, &db, fileStorage)
	courtManager := courts.NewManager(log, &db)
	groupManager := groups.NewManager(log, &db)
	sessionManager := sessions.NewManager(log, &db, rsvpManager, hydrator, &router)

	limiter := ratelimit.NewRateLimiter(redisClient)

	handler := api.NewHandler(api.HandlerParams{
		Logger:    log,
		Store:     sessionStore,
		Validator: validator.New(),
		DB:        &db,
		Players:   playerManager,
		Courts:    courtManager,
		Groups:    groupManager,
		Sessions:  sessionManager,
		RSVP:      rsvpManager,
		Robin:     robin,
		Limiter:   limiter,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(middleware.Logger(log))
	if tel.IsEnabled() {
		app.Use(telemetry.FiberMiddleware(cfg.Telemetry.ServiceName))
	}

	// Per-IP throttle on the auth endpoints; the redis limiter inside the
	// handlers throttles per account.
	authLimiter := fiberlimiter.New(fiberlimiter.Config{
		Max:        20,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		},
	})
	app.Use("/api/register", authLimiter)
	app.Use("/api/login", authLimiter)

	handler.RegisterRoutes(app)

	// Supervised background daemons
	manager := daemon.NewManager(log)
	manager.Add("rsvp-sweep", daemon.SweepTask(rsvpManager, log, time.Minute))
	manager.Add("notification-cleanup", daemon.CleanupTask(&db, log, time.Hour))

	log.Info("Starting supervised daemons...")
	manager.Start(ctx)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Info("Starting HTTP server...", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("Failed to shut down HTTP server", "error", err)
	}

	manager.Wait()
	log.Info("All daemons stopped")

	return nil
}
