package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sonicalchemist/api/internal/catalog"
	"github.com/sonicalchemist/api/internal/client"
	"github.com/sonicalchemist/api/internal/composer"
	"github.com/sonicalchemist/api/internal/config"
	"github.com/sonicalchemist/api/internal/handler"
	"github.com/sonicalchemist/api/internal/middleware"
	"github.com/sonicalchemist/api/internal/observability"
	"github.com/sonicalchemist/api/internal/schema"
	"github.com/sonicalchemist/api/internal/service"
	"github.com/sonicalchemist/api/internal/web"
	ws "github.com/sonicalchemist/api/internal/websocket"
)

// testApp holds all components needed for testing
type testApp struct {
	app      *fiber.App
	registry *composer.Registry
}

// stubProvider answers every call with a fixed output or error.
type stubProvider struct {
	output string
	err    error
}

func (p *stubProvider) Generate(ctx context.Context, req *client.GenerationRequest) (*client.GenerationResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &client.GenerationResponse{RawOutput: p.output, Model: "stub"}, nil
}

func (p *stubProvider) Name() string       { return "stub" }
func (p *stubProvider) IsConfigured() bool { return true }

// setupApp creates a Fiber app identical to main.go but with an unconfigured
// provider, so the mock fallback answers every flow.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	provider, err := client.NewTextGenerator(context.Background(), &config.Config{
		LLM: config.LLMConfig{Provider: "groq"}, // no API key, falls back to mock
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return setupAppWithProvider(t, provider)
}

// setupAppWithProvider wires the full route table around provider.
func setupAppWithProvider(t *testing.T, provider client.TextGenerator) *testApp {
	t.Helper()

	// Redis (localhost). The limiter fails open when it is not running.
	redisClient := redis.NewClient(&redis.Options{
		Addr:       "localhost:6379",
		DB:         15, // use DB 15 for tests to avoid collision
		MaxRetries: -1,
	})
	t.Cleanup(func() { redisClient.Close() })

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	validate := schema.New()
	invoker := service.NewInvoker(provider, observability.Disabled(), validate)
	soundtrackService := service.NewSoundtrackService(invoker, validate)
	metadataService := service.NewMetadataService(invoker, validate)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	registry := composer.NewRegistry(
		composer.SessionFactory(soundtrackService, validate, composer.PolicyReject, hub),
		30*time.Minute,
	)
	t.Cleanup(registry.Close)

	soundtrackHandler := handler.NewSoundtrackHandler(soundtrackService)
	metadataHandler := handler.NewMetadataHandler(metadataService)
	catalogHandler := handler.NewCatalogHandler(cat)
	composerHandler := handler.NewComposerHandler(registry, renderer, cat)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New()
	app.Use(middleware.RequestID())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"provider": provider.Name(),
			"services": fiber.Map{
				"llm":      provider.Name() != "mock",
				"langfuse": false,
				"sentry":   false,
			},
			"sessions": registry.Len(),
		})
	})

	// Use very high rate limits so tests don't get blocked
	app.Get("/", composerHandler.Page)
	compose := app.Group("/compose", rateLimiter.ComposeLimit(10000))
	compose.Post("/", composerHandler.Submit)
	compose.Post("/export/:format", composerHandler.Export)

	api := app.Group("/api")
	api.Get("/catalog", catalogHandler.List)
	api.Get("/composer/state", composerHandler.State)
	api.Post("/soundtrack/generate", rateLimiter.SoundtrackLimit(10000), soundtrackHandler.Generate)
	api.Post("/metadata/summarize", rateLimiter.MetadataLimit(10000), metadataHandler.Summarize)

	return &testApp{app: app, registry: registry}
}

// loadEnvFile loads the repository .env for real-provider tests.
func loadEnvFile(t *testing.T) {
	t.Helper()
	for _, path := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				t.Logf("failed to load %s: %v", path, err)
			}
			return
		}
	}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doFormRequest posts an urlencoded form, optionally with a session cookie.
func doFormRequest(app *fiber.App, path, form, session string) (*http.Response, error) {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	if session != "" {
		headers["Cookie"] = handler.SessionCookie + "=" + session
	}

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return app.Test(req, -1)
}

// sessionCookie returns the session id issued in resp, if any.
func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == handler.SessionCookie {
			return c.Value
		}
	}
	return ""
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorBody returns the "error" object of an error envelope.
func errorBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	return errObj
}
