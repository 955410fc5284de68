package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/storefront/middleware/ratelimit"
	"github.com/example/storefront/modules/auth"
	"github.com/example/storefront/modules/cache"
	"github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/directory"
	"github.com/example/storefront/modules/feedback"
	"github.com/example/storefront/modules/orders"
)

// Config holds HTTP API configuration.
type Config struct {
	Port int

	// RateLimit is the default per-IP limit for API routes. The auth
	// endpoints get a stricter limit.
	RateLimit       int
	RateLimitWindow time.Duration
	AuthRateLimit   int
}

// DefaultConfig returns the default API configuration.
func DefaultConfig() Config {
	return Config{
		Port:            3000,
		RateLimit:       100,
		RateLimitWindow: time.Minute,
		AuthRateLimit:   10,
	}
}

// APIModule is the HTTP API module.
type APIModule struct {
	config        Config
	app           *fiber.App
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	cacheModule   *cache.Module
	handlers      *Handlers
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. The cache module supplies the
// Redis client backing the rate limiter; with a nil cache module rate
// limiting is disabled.
func NewModule(config Config, cacheModule *cache.Module) *APIModule {
	return &APIModule{
		config:      config,
		cacheModule: cacheModule,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// SetCatalog wires the catalog service and feed client. Called after
// all modules have started.
func (m *APIModule) SetCatalog(service *catalog.Service, feed *catalog.FeedClient) {
	m.handlers.catalog = service
	m.handlers.feed = feed
}

// SetOrders wires the order service.
func (m *APIModule) SetOrders(service *orders.Service) {
	m.handlers.orders = service
}

// SetDirectory wires the directory service.
func (m *APIModule) SetDirectory(service *directory.Service) {
	m.handlers.directory = service
}

// SetFeedback wires the feedback service.
func (m *APIModule) SetFeedback(service *feedback.Service) {
	m.handlers.feedback = service
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.handlers = NewHandlers(m.authContainer, m.authAdapter)
	m.setupRoutes()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.config.Port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.config.Port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.config.Port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	handlers := m.handlers

	// Health check endpoint
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	v1 := m.app.Group("/api/v1")

	// Per-IP rate limiting, stricter on the auth endpoints.
	if m.cacheModule != nil && m.cacheModule.GetClient() != nil {
		client := m.cacheModule.GetClient()
		v1.Use(ratelimit.New(client, "api",
			ratelimit.WithDefaultLimit(m.config.RateLimit, m.config.RateLimitWindow)))
		v1.Group("/auth").Use(ratelimit.New(client, "auth",
			ratelimit.WithRouteLimit("auth", m.config.AuthRateLimit, m.config.RateLimitWindow)))
	} else {
		log.Println("[api] Rate limiting disabled, no Redis client")
	}

	// Public auth routes
	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Get("/verify", AuthMiddleware(m.authAdapter), handlers.Verify)

	// Admin user directory
	users := v1.Group("/users")
	users.Post("/", handlers.CreateMember)
	users.Get("/", handlers.ListMembers)
	users.Put("/:id", handlers.UpdateMember)
	users.Delete("/:id", handlers.DeleteMember)

	// Product catalog
	products := v1.Group("/products")
	products.Get("/feed", handlers.ProductFeed)
	products.Get("/", handlers.ListProducts)
	products.Get("/:id", handlers.GetProduct)
	products.Post("/", handlers.CreateProduct)
	products.Put("/:id", handlers.UpdateProduct)
	products.Delete("/:id", handlers.DeleteProduct)

	// Orders require authentication
	orderRoutes := v1.Group("/orders")
	orderRoutes.Use(AuthMiddleware(m.authAdapter))
	orderRoutes.Post("/", handlers.CreateOrder)
	orderRoutes.Get("/", handlers.ListOrders)
	orderRoutes.Get("/:id", handlers.GetOrder)

	// Feedback
	v1.Post("/feedback", handlers.SubmitFeedback)

	// Cache statistics
	v1.Get("/cache/stats", handlers.CacheStats)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
