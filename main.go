package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	authmod "github.com/example/workspace-live/modules/auth"
	cachemod "github.com/example/workspace-live/modules/cache"
	chatmod "github.com/example/workspace-live/modules/chat"
	gatewaymod "github.com/example/workspace-live/modules/gateway"
	membershipmod "github.com/example/workspace-live/modules/membership"
	realtimemod "github.com/example/workspace-live/modules/realtime"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== workspace-live - realtime fan-out gateway ===")

	redisAddr := os.Getenv("REDIS_ADDR")
	cacheTTL := getEnvDuration("AUTHZ_CACHE_TTL", 30*time.Second)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	authModule := authmod.NewModule()
	membershipModule := membershipmod.NewModule()
	chatModule := chatmod.NewModule()
	realtimeModule := realtimemod.NewModule()
	gatewayModule := gatewaymod.NewModule()

	var cacheModule *cachemod.Module
	if redisAddr != "" {
		cacheModule = cachemod.NewModule(redisAddr, "authz:", cacheTTL)
		app.Register(cacheModule)
	}

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	app.Register(authModule)       // Token authentication
	app.Register(membershipModule) // Access-control oracle
	app.Register(chatModule)       // Chat persistence
	app.Register(realtimeModule)   // Group registry + event consumer
	app.Register(gatewayModule)    // HTTP/WebSocket server

	// Inject collaborators not exposed via ServiceContainer. The
	// membership and chat modules delegate through themselves, so they
	// can be wired before Start even though their services only exist
	// once Start has run. Registration order guarantees both start
	// before the gateway accepts connections.
	realtimeModule.SetAuthorizer(membershipModule)
	realtimeModule.SetChatStore(chatModule)
	gatewayModule.SetRealtime(realtimeModule)
	gatewayModule.SetAuthorizer(membershipModule)
	gatewayModule.SetChatHistory(chatModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// The cache client exists only after the cache module starts.
	if cacheModule != nil {
		membershipModule.SetCache(cacheModule.GetCache())
	}

	printStartupInfo()

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

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("WebSocket endpoints (ws://localhost:%s):", port)
	log.Println("  /ws/live-updates/:workspaceID?token=...     - workspace live updates")
	log.Println("  /ws/chat/:workspaceID/:roomType/:roomID?token=... - chat rooms")
	log.Println("    roomType: workspace | project | direct")
	log.Println("")
	log.Printf("HTTP endpoints (http://localhost:%s):", port)
	log.Println("  GET  /health")
	log.Println("  POST /internal/events - publish a live event")
	log.Println("  GET  /api/v1/chat/:workspaceID/:roomType/:roomID/history")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
