package membership

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/workspace-live/domain/membership"
	"github.com/example/workspace-live/modules/cache"
)

// Module provides the membership oracle as a mono module.
type Module struct {
	db     *gorm.DB
	oracle *Oracle
	dbPath string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new membership module.
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
	return "membership"
}

// Start initializes the database and creates the oracle.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Membership{}, &domain.Project{}, &domain.ProjectMember{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.oracle = NewOracle(NewRepository(db))

	log.Printf("[membership] Module started (database: %s)", m.dbPath)
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
	log.Println("[membership] Module stopped")
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

// SetCache wires the cache layer into the oracle (called from
// main.go). Optional.
func (m *Module) SetCache(c *cache.Cache) {
	if m.oracle != nil {
		m.oracle.SetCache(c)
	}
}

// Oracle returns the membership oracle for other modules to use.
func (m *Module) Oracle() *Oracle {
	return m.oracle
}

// HasWorkspaceAccess delegates to the oracle. The module itself
// satisfies the authorizer interface so it can be injected before its
// own Start has created the oracle.
func (m *Module) HasWorkspaceAccess(ctx context.Context, userID, workspaceID string) (bool, error) {
	if m.oracle == nil {
		return false, fmt.Errorf("membership module not started")
	}
	return m.oracle.HasWorkspaceAccess(ctx, userID, workspaceID)
}

// HasProjectAccess delegates to the oracle.
func (m *Module) HasProjectAccess(ctx context.Context, userID, workspaceID, projectID string) (bool, error) {
	if m.oracle == nil {
		return false, fmt.Errorf("membership module not started")
	}
	return m.oracle.HasProjectAccess(ctx, userID, workspaceID, projectID)
}
