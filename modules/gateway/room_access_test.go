package gateway

import (
	"context"
	"errors"
	"testing"
)

// stubAuthz answers access checks from fixed maps.
type stubAuthz struct {
	workspaces map[string]bool // key: userID|workspaceID
	projects   map[string]bool // key: userID|projectID
	err        error
}

func (s *stubAuthz) HasWorkspaceAccess(_ context.Context, userID, workspaceID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.workspaces[userID+"|"+workspaceID], nil
}

func (s *stubAuthz) HasProjectAccess(_ context.Context, userID, _, projectID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.projects[userID+"|"+projectID], nil
}

func TestCheckRoomAccess(t *testing.T) {
	authz := &stubAuthz{
		workspaces: map[string]bool{
			"user-1|ws-1": true,
			"user-2|ws-1": true,
		},
		projects: map[string]bool{
			"user-1|p-1": true,
		},
	}

	tests := []struct {
		name     string
		userID   string
		roomType string
		roomID   string
		want     bool
	}{
		{
			name:     "workspace room matching scope",
			userID:   "user-1",
			roomType: "workspace",
			roomID:   "ws-1",
			want:     true,
		},
		{
			name:     "workspace room for a different workspace",
			userID:   "user-1",
			roomType: "workspace",
			roomID:   "ws-2",
			want:     false,
		},
		{
			name:     "project room with access",
			userID:   "user-1",
			roomType: "project",
			roomID:   "p-1",
			want:     true,
		},
		{
			name:     "project room without access",
			userID:   "user-2",
			roomType: "project",
			roomID:   "p-1",
			want:     false,
		},
		{
			name:     "direct room as first participant",
			userID:   "user-1",
			roomType: "direct",
			roomID:   "user-1__user-2",
			want:     true,
		},
		{
			name:     "direct room as second participant",
			userID:   "user-2",
			roomType: "direct",
			roomID:   "user-1__user-2",
			want:     true,
		},
		{
			name:     "direct room for two other users",
			userID:   "user-3",
			roomType: "direct",
			roomID:   "user-1__user-2",
			want:     false,
		},
		{
			name:     "direct room with counterpart outside workspace",
			userID:   "user-1",
			roomType: "direct",
			roomID:   "user-1__user-9",
			want:     false,
		},
		{
			name:     "direct room with missing counterpart",
			userID:   "user-1",
			roomType: "direct",
			roomID:   "user-1__",
			want:     false,
		},
		{
			name:     "direct room without delimiter",
			userID:   "user-1",
			roomType: "direct",
			roomID:   "user-1",
			want:     false,
		},
		{
			name:     "direct room with three participants",
			userID:   "user-1",
			roomType: "direct",
			roomID:   "user-1__user-2__user-3",
			want:     false,
		},
		{
			name:     "unknown room type",
			userID:   "user-1",
			roomType: "broadcast",
			roomID:   "ws-1",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkRoomAccess(context.Background(), authz, tt.userID, "ws-1", tt.roomType, tt.roomID)
			if err != nil {
				t.Fatalf("checkRoomAccess() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("checkRoomAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckRoomAccess_AuthzError(t *testing.T) {
	authz := &stubAuthz{err: errors.New("store down")}

	// Workspace rooms never hit the oracle; the error must not surface.
	ok, err := checkRoomAccess(context.Background(), authz, "user-1", "ws-1", "workspace", "ws-1")
	if err != nil {
		t.Fatalf("checkRoomAccess(workspace) error = %v", err)
	}
	if !ok {
		t.Error("checkRoomAccess(workspace) = false, want true")
	}

	// Oracle-backed room types propagate the failure.
	for _, roomType := range []string{"project", "direct"} {
		roomID := "p-1"
		if roomType == "direct" {
			roomID = "user-1__user-2"
		}
		if _, err := checkRoomAccess(context.Background(), authz, "user-1", "ws-1", roomType, roomID); err == nil {
			t.Errorf("checkRoomAccess(%s) error = nil, want store error", roomType)
		}
	}
}
