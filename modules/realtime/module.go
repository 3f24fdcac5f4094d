package realtime

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/workspace-live/events"
)

// Module owns the group registry and the message router, and consumes
// business events off the EventBus, fanning each out to its group.
type Module struct {
	registry *Registry
	router   *Router
	authz    Authorizer
	store    ChatStore
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new realtime module.
func NewModule() *Module {
	return &Module{
		registry: NewRegistry(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "realtime"
}

// SetAuthorizer injects the membership oracle (called from main.go).
func (m *Module) SetAuthorizer(authz Authorizer) {
	m.authz = authz
}

// SetChatStore injects the chat persistence adapter (called from
// main.go).
func (m *Module) SetChatStore(store ChatStore) {
	m.store = store
}

// Start validates wiring and builds the router.
func (m *Module) Start(_ context.Context) error {
	if m.authz == nil {
		return fmt.Errorf("authorizer dependency not set")
	}
	if m.store == nil {
		return fmt.Errorf("chat store dependency not set")
	}
	m.router = NewRouter(m.registry, m.authz, m.store, slog.Default())
	log.Println("[realtime] Module started")
	return nil
}

// Stop shuts down the module, closing every live session. Each
// session's disconnect path removes it from its groups.
func (m *Module) Stop(_ context.Context) error {
	count := m.registry.SessionCount()
	m.registry.CloseAll()
	log.Printf("[realtime] Module stopped - %d sessions were connected", count)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"sessions": m.registry.SessionCount(),
			"groups":   m.registry.GroupCount(),
		},
	}
}

// Registry returns the group registry for the gateway to use.
func (m *Module) Registry() *Registry {
	return m.registry
}

// Router returns the inbound message router for the gateway to use.
func (m *Module) Router() *Router {
	return m.router
}

// RegisterEventConsumers subscribes to the business-side live events.
func (m *Module) RegisterEventConsumers(reg mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		reg, events.WorkspaceUpdatedV1, m.handleWorkspaceUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register WorkspaceUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		reg, events.UserNotifiedV1, m.handleUserNotified, m,
	); err != nil {
		return fmt.Errorf("failed to register UserNotified consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		reg, events.ProjectUpdatedV1, m.handleProjectUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register ProjectUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		reg, events.TimesheetUpdatedV1, m.handleTimesheetUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TimesheetUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		reg, events.TimeEntryUpdatedV1, m.handleTimeEntryUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TimeEntryUpdated consumer: %w", err)
	}

	log.Println("[realtime] Registered event consumers: WorkspaceUpdated, UserNotified, ProjectUpdated, TimesheetUpdated, TimeEntryUpdated")
	return nil
}

func (m *Module) handleWorkspaceUpdated(_ context.Context, event events.WorkspaceUpdatedEvent, _ *mono.Msg) error {
	m.registry.Broadcast(WorkspaceGroup(event.WorkspaceID), updateEvent{
		Type:      "workspace_update",
		EventType: event.EventType,
		Data:      event.Data,
	})
	return nil
}

func (m *Module) handleUserNotified(_ context.Context, event events.UserNotifiedEvent, _ *mono.Msg) error {
	m.registry.Broadcast(UserGroup(event.UserID), userNotificationEvent{
		Type:             "user_notification",
		NotificationType: event.NotificationType,
		Message:          event.Message,
		Data:             event.Data,
		Timestamp:        event.Timestamp,
	})
	return nil
}

func (m *Module) handleProjectUpdated(_ context.Context, event events.ProjectUpdatedEvent, _ *mono.Msg) error {
	m.registry.Broadcast(ProjectGroup(event.ProjectID), updateEvent{
		Type:      "project_update",
		EventType: event.EventType,
		Data:      event.Data,
	})
	return nil
}

func (m *Module) handleTimesheetUpdated(_ context.Context, event events.TimesheetUpdatedEvent, _ *mono.Msg) error {
	m.registry.Broadcast(TimesheetGroup(event.WorkspaceID), updateEvent{
		Type:      "timesheet_update",
		EventType: event.EventType,
		Data:      event.Data,
	})
	return nil
}

func (m *Module) handleTimeEntryUpdated(_ context.Context, event events.TimeEntryUpdatedEvent, _ *mono.Msg) error {
	m.registry.Broadcast(TimesheetGroup(event.WorkspaceID), updateEvent{
		Type:      "time_entry_update",
		EventType: event.EventType,
		Data:      event.Data,
	})
	return nil
}
