package chat

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/workspace-live/domain/chat"
)

// Module provides chat persistence as a mono module.
type Module struct {
	db      *gorm.DB
	service *Service
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new chat module.
func NewModule() *Module {
	dbPath := os.Getenv("WORKSPACE_LIVE_DB_PATH")
	if dbPath == "" {
		dbPath = "workspace_live.db"
	}
	return &Module{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Start initializes the database and creates the service.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Room{}, &domain.Message{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(NewRepository(db))

	log.Printf("[chat] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop stops the module and closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// Service returns the chat persistence service.
func (m *Module) Service() *Service {
	return m.service
}

// SaveMessage delegates to the service. The module itself satisfies
// the chat store interface so it can be injected before its own Start
// has created the service.
func (m *Module) SaveMessage(ctx context.Context, roomType, roomID, workspaceID, userID, content string) (*domain.Message, error) {
	if m.service == nil {
		return nil, fmt.Errorf("chat module not started")
	}
	return m.service.SaveMessage(ctx, roomType, roomID, workspaceID, userID, content)
}

// History delegates to the service.
func (m *Module) History(ctx context.Context, roomType, roomID, workspaceID string, limit int) ([]domain.Message, error) {
	if m.service == nil {
		return nil, fmt.Errorf("chat module not started")
	}
	return m.service.History(ctx, roomType, roomID, workspaceID, limit)
}
