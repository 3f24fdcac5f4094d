package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/example/workspace-live/domain/chat"
)

// Repository stores chat rooms and messages using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetOrCreateRoom returns the room for the given scope, creating it on
// first use. Rooms have no explicit lifecycle beyond this.
func (r *Repository) GetOrCreateRoom(ctx context.Context, roomType, roomID, workspaceID, createdBy string) (*domain.Room, error) {
	var room domain.Room
	result := r.db.WithContext(ctx).
		First(&room, "room_type = ? AND room_id = ? AND workspace_id = ?", roomType, roomID, workspaceID)
	if result.Error == nil {
		return &room, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	room = domain.Room{
		ID:          uuid.New().String(),
		RoomType:    roomType,
		RoomID:      roomID,
		WorkspaceID: workspaceID,
		Name:        fmt.Sprintf("%s %s", roomType, roomID),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateMessage inserts a message into the room.
func (r *Repository) CreateMessage(ctx context.Context, roomPK, userID, content string) (*domain.Message, error) {
	msg := domain.Message{
		ID:        uuid.New().String(),
		RoomPK:    roomPK,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns the most recent messages for the room, oldest
// first.
func (r *Repository) History(ctx context.Context, roomPK string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("room_pk = ?", roomPK).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
