package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	apimod "github.com/example/storefront/modules/api"
	authmod "github.com/example/storefront/modules/auth"
	cachemod "github.com/example/storefront/modules/cache"
	catalogmod "github.com/example/storefront/modules/catalog"
	directorymod "github.com/example/storefront/modules/directory"
	feedbackmod "github.com/example/storefront/modules/feedback"
	mailermod "github.com/example/storefront/modules/mailer"
	ordersmod "github.com/example/storefront/modules/orders"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	dbPath := getEnv("DB_PATH", "./storefront.db")
	httpPort := getEnvInt("HTTP_PORT", 3000)
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")
	jwtSecret := getEnv("JWT_SECRET", "change-me-in-production")
	tokenTTL := getEnvDuration("TOKEN_TTL", time.Hour)
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)
	smtpHost := getEnv("SMTP_HOST", "")
	smtpPort := getEnvInt("SMTP_PORT", 587)
	smtpUser := getEnv("SMTP_USER", "")
	smtpPassword := getEnv("SMTP_PASSWORD", "")
	smtpFrom := getEnv("SMTP_FROM", smtpUser)

	log.Println("=== Storefront ===")
	log.Printf("Database: %s", dbPath)
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Redis: %s", redisAddr)
	log.Printf("NATS: %s", natsURL)

	// Create modules
	authConfig := authmod.DefaultConfig()
	authConfig.DBPath = dbPath
	authConfig.JWT.SecretKey = jwtSecret
	authConfig.JWT.TokenTTL = tokenTTL
	authModule := authmod.NewModule(authConfig)

	cacheConfig := cachemod.DefaultConfig()
	cacheConfig.RedisAddr = redisAddr
	cacheConfig.TTL = cacheTTL
	cacheModule := cachemod.NewModule(cacheConfig)

	catalogModule := catalogmod.NewModule(dbPath, catalogmod.DefaultFeedConfig())
	ordersModule := ordersmod.NewModule(dbPath)
	directoryModule := directorymod.NewModule(dbPath)
	feedbackModule := feedbackmod.NewModule(dbPath)

	mailerConfig := mailermod.DefaultConfig()
	mailerConfig.Queue.URL = natsURL
	mailerConfig.SMTP = mailermod.SMTPConfig{
		Host:     smtpHost,
		Port:     smtpPort,
		Username: smtpUser,
		Password: smtpPassword,
		From:     smtpFrom,
	}
	mailerModule := mailermod.NewModule(mailerConfig)

	apiConfig := apimod.DefaultConfig()
	apiConfig.Port = httpPort
	apiModule := apimod.NewModule(apiConfig, cacheModule)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Register modules
	app.Register(cacheModule)
	app.Register(authModule)
	app.Register(catalogModule)
	app.Register(ordersModule)
	app.Register(directoryModule)
	app.Register(feedbackModule)
	app.Register(mailerModule)
	app.Register(apiModule)

	// Start modules (this handles Init and Start)
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	// Wire up dependencies after start
	catalogModule.SetCache(cacheModule.GetCache())
	feedbackModule.SetMailer(mailerModule)
	apiModule.SetCatalog(catalogModule.GetService(), catalogModule.GetFeed())
	apiModule.SetOrders(ordersModule.GetService())
	apiModule.SetDirectory(directoryModule.GetService())
	apiModule.SetFeedback(feedbackModule.GetService())

	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", httpPort)
	log.Println("Endpoints:")
	log.Println("  GET    /health                  - Health check")
	log.Println("  POST   /api/v1/auth/register    - Create account")
	log.Println("  POST   /api/v1/auth/login       - Log in")
	log.Println("  GET    /api/v1/auth/verify      - Verify bearer token")
	log.Println("  CRUD   /api/v1/users            - Admin user directory")
	log.Println("  CRUD   /api/v1/products         - Product catalog (cached)")
	log.Println("  GET    /api/v1/products/feed    - External product feed")
	log.Println("  POST   /api/v1/orders           - Place order (auth)")
	log.Println("  GET    /api/v1/orders           - List own orders (auth)")
	log.Println("  POST   /api/v1/feedback         - Submit feedback")
	log.Println("  GET    /api/v1/cache/stats      - Cache statistics")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	// Setup graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
