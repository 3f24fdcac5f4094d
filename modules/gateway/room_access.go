package gateway

import (
	"context"
	"strings"

	"github.com/example/workspace-live/modules/realtime"
)

// Room types accepted on the chat path.
const (
	RoomTypeWorkspace = "workspace"
	RoomTypeProject   = "project"
	RoomTypeDirect    = "direct"
)

// directRoomDelimiter separates the two user ids in a direct room id.
const directRoomDelimiter = "__"

// checkRoomAccess decides whether the user may join a chat room.
// Workspace access has already been verified by the caller.
//
//   - workspace rooms: the room id must be the workspace scope itself.
//   - project rooms: the project must belong to the workspace scope,
//     or the user must be an explicit project member.
//   - direct rooms: the room id names exactly two users; the
//     connecting user must be one of them and the other must hold
//     active workspace access.
//
// Unknown room types and unparseable direct room ids are rejected.
func checkRoomAccess(ctx context.Context, authz realtime.Authorizer, userID, workspaceID, roomType, roomID string) (bool, error) {
	switch roomType {
	case RoomTypeWorkspace:
		return roomID == workspaceID, nil

	case RoomTypeProject:
		return authz.HasProjectAccess(ctx, userID, workspaceID, roomID)

	case RoomTypeDirect:
		parts := strings.Split(roomID, directRoomDelimiter)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return false, nil
		}

		var other string
		switch userID {
		case parts[0]:
			other = parts[1]
		case parts[1]:
			other = parts[0]
		default:
			return false, nil
		}
		return authz.HasWorkspaceAccess(ctx, other, workspaceID)

	default:
		return false, nil
	}
}
