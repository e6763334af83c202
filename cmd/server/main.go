package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sonicalchemist/api/internal/catalog"
	"github.com/sonicalchemist/api/internal/client"
	"github.com/sonicalchemist/api/internal/composer"
	"github.com/sonicalchemist/api/internal/config"
	"github.com/sonicalchemist/api/internal/handler"
	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/internal/middleware"
	"github.com/sonicalchemist/api/internal/observability"
	"github.com/sonicalchemist/api/internal/schema"
	"github.com/sonicalchemist/api/internal/service"
	"github.com/sonicalchemist/api/internal/web"
	ws "github.com/sonicalchemist/api/internal/websocket"
	"github.com/sonicalchemist/api/pkg/response"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Server.Env,
			Release:          "sonicalchemist-api",
			EnableTracing:    true,
			TracesSampleRate: cfg.Sentry.SampleRate,
			Debug:            !cfg.Server.IsProduction(),
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not available, rate limiting disabled", logger.Fields{"error": err.Error()})
	}

	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Provider and tracing
	provider, err := client.NewTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM provider: %v", err)
	}
	tracer := observability.NewTracer(ctx, &cfg.Langfuse)
	defer tracer.Flush(context.Background())

	validate := schema.New()

	// Initialize services
	invoker := service.NewInvoker(provider, tracer, validate)
	soundtrackService := service.NewSoundtrackService(invoker, validate)
	metadataService := service.NewMetadataService(invoker, validate)

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Composer sessions
	registry := composer.NewRegistry(
		composer.SessionFactory(soundtrackService, validate, composer.ParsePolicy(cfg.Composer.SubmitPolicy), hub),
		time.Duration(cfg.Composer.SessionTTL)*time.Minute,
	)
	go registry.Run(ctx)
	defer registry.Close()

	// Initialize handlers
	soundtrackHandler := handler.NewSoundtrackHandler(soundtrackService)
	metadataHandler := handler.NewMetadataHandler(metadataService)
	catalogHandler := handler.NewCatalogHandler(cat)
	composerHandler := handler.NewComposerHandler(registry, renderer, cat)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: accessLogFormat(cfg.Server.LogLevel),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"provider": provider.Name(),
			"services": fiber.Map{
				"llm":      provider.Name() != "mock",
				"redis":    redisClient.Ping(c.UserContext()).Err() == nil,
				"langfuse": tracer.IsEnabled(),
				"sentry":   sentry.CurrentHub().Client() != nil,
			},
			"sessions": registry.Len(),
		})
	})

	// Composer page
	app.Get("/", composerHandler.Page)
	compose := app.Group("/compose", rateLimiter.ComposeLimit(cfg.RateLimit.ComposePerMin))
	compose.Post("/", composerHandler.Submit)
	compose.Post("/export/:format", composerHandler.Export)

	// API routes
	api := app.Group("/api")
	api.Get("/catalog", catalogHandler.List)
	api.Get("/composer/state", composerHandler.State)
	api.Post("/soundtrack/generate", rateLimiter.SoundtrackLimit(cfg.RateLimit.SoundtrackPerMin), soundtrackHandler.Generate)
	api.Post("/metadata/summarize", rateLimiter.MetadataLimit(cfg.RateLimit.MetadataPerMin), metadataHandler.Summarize)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/sessions/:sessionId", func(c *fiber.Ctx) error {
		if _, ok := registry.Get(c.Params("sessionId")); !ok {
			return response.NotFound(c, "Composer session not found")
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("sessionId"))
	}))

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	logger.Info("Server starting", logger.Fields{
		"addr":     addr,
		"provider": provider.Name(),
		"env":      cfg.Server.Env,
	})
	if err := app.Listen(addr); err != nil {
		logger.Error("Server error", err, nil)
		os.Exit(1)
	}
}

func accessLogFormat(level string) string {
	if level == "debug" {
		return "[${time}] ${status} - ${latency} ${method} ${path} ${reqHeaders} ${body}\n"
	}
	return "[${time}] ${status} - ${latency} ${method} ${path}\n"
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		logger.Error("Unhandled error", err, logger.WithContext(c))
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
