package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	chatdomain "github.com/example/workspace-live/domain/chat"
	"github.com/example/workspace-live/events"
	"github.com/example/workspace-live/modules/auth"
	"github.com/example/workspace-live/modules/realtime"
)

// ChatHistory provides read access to stored chat messages.
type ChatHistory interface {
	History(ctx context.Context, roomType, roomID, workspaceID string, limit int) ([]chatdomain.Message, error)
}

// GatewayModule is the Fiber HTTP/WebSocket server. It owns the
// connection lifecycle and the internal event-ingest surface.
type GatewayModule struct {
	app      *fiber.App
	port     string
	authPort auth.Port
	rt       *realtime.Module
	authz    realtime.Authorizer
	history  ChatHistory
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*GatewayModule)(nil)
var _ mono.DependentModule = (*GatewayModule)(nil)
var _ mono.EventBusAwareModule = (*GatewayModule)(nil)
var _ mono.EventEmitterModule = (*GatewayModule)(nil)
var _ mono.HealthCheckableModule = (*GatewayModule)(nil)

// NewModule creates a new GatewayModule.
func NewModule() *GatewayModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	return &GatewayModule{
		port: port,
	}
}

// Name returns the module name.
func (m *GatewayModule) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *GatewayModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *GatewayModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAdapter(container)
	}
}

// SetRealtime injects the realtime module (called from main.go).
func (m *GatewayModule) SetRealtime(rt *realtime.Module) {
	m.rt = rt
}

// SetAuthorizer injects the membership oracle (called from main.go).
func (m *GatewayModule) SetAuthorizer(authz realtime.Authorizer) {
	m.authz = authz
}

// SetChatHistory injects the chat history reader (called from
// main.go).
func (m *GatewayModule) SetChatHistory(history ChatHistory) {
	m.history = history
}

// SetEventBus receives the EventBus from the framework.
func (m *GatewayModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *GatewayModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.WorkspaceUpdatedV1.ToBase(),
		events.UserNotifiedV1.ToBase(),
		events.ProjectUpdatedV1.ToBase(),
		events.TimesheetUpdatedV1.ToBase(),
		events.TimeEntryUpdatedV1.ToBase(),
	}
}

// Start initializes and starts the Fiber server.
func (m *GatewayModule) Start(_ context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.rt == nil {
		return fmt.Errorf("realtime dependency not set")
	}
	if m.authz == nil {
		return fmt.Errorf("membership authorizer dependency not set")
	}
	if m.history == nil {
		return fmt.Errorf("chat history dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "workspace-live",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:8080"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	m.registerRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[gateway] Server started on :%s", m.port)
	return nil
}

// Stop gracefully shuts down the server.
func (m *GatewayModule) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	log.Println("[gateway] Server stopped")
	return nil
}

// Health returns the health status.
func (m *GatewayModule) Health(_ context.Context) mono.HealthStatus {
	registry := m.rt.Registry()
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":     m.port,
			"sessions": registry.SessionCount(),
		},
	}
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *GatewayModule) registerRoutes() {
	m.app.Get("/health", m.handleHealthCheck)

	// WebSocket upgrade middleware
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	m.app.Get("/ws/live-updates/:workspaceID", websocket.New(m.handleLiveUpdates))
	m.app.Get("/ws/chat/:workspaceID/:roomType/:roomID", websocket.New(m.handleChat))

	// Internal surface for the business backend
	m.app.Post("/internal/events", m.handleIngestEvent)

	api := m.app.Group("/api/v1")
	api.Get("/chat/:workspaceID/:roomType/:roomID/history", m.handleChatHistory)
}

// errorHandler handles errors globally.
func (m *GatewayModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("[gateway] HTTP error: code=%d message=%s error=%v", code, message, err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
