package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	apimod "github.com/example/user-auth-service/modules/api"
	authmod "github.com/example/user-auth-service/modules/auth"
	cachemod "github.com/example/user-auth-service/modules/cache"
	filesmod "github.com/example/user-auth-service/modules/files"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	httpPort := getEnvInt("HTTP_PORT", 3000)
	dbPath := getEnv("AUTH_DB_PATH", "./users.db")
	corsOrigin := getEnv("CORS_ORIGIN", "http://localhost:5173")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")
	natsBucket := getEnv("NATS_BUCKET", "profile-pictures")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)

	log.Println("=== User Auth Service ===")
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Database: %s", dbPath)
	log.Printf("NATS: %s (bucket: %s)", natsURL, natsBucket)
	log.Printf("Redis: %s (TTL: %s)", redisAddr, cacheTTL)

	// Create modules
	cacheModule := cachemod.NewModule(redisAddr, "users:", cacheTTL)
	authModule := authmod.NewModule(dbPath)
	filesModule := filesmod.NewModule(natsURL, natsBucket)
	apiModule := apimod.NewModule(httpPort, corsOrigin)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(cacheModule)
	app.Register(authModule)
	app.Register(filesModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wire the cache into the auth read path after start
	authModule.SetCache(cacheModule.GetCache())

	printStartupInfo(httpPort)

	// Graceful shutdown
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

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  GET    /health      - Health check")
	log.Println("  GET    /users       - List users (cached)")
	log.Println("  POST   /users       - Register, sets refresh cookie")
	log.Println("  POST   /login       - Login, sets refresh cookie")
	log.Println("  GET    /token       - New access token from refresh cookie")
	log.Println("  POST   /token       - Same as GET /token")
	log.Println("  POST   /logout      - Clear session and refresh cookie")
	log.Println("  GET    /files/:id   - Serve a stored profile picture")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /users/:id    - Get a user")
	log.Println("  PUT    /users/:id    - Update name/division/profile picture")
	log.Println("  DELETE /users/:id    - Delete a user")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
