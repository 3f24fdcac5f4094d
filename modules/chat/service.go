package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	domain "github.com/example/workspace-live/domain/chat"
)

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 5000

// Validation errors.
var (
	ErrMessageEmpty   = errors.New("message content cannot be empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrMessageInvalid = errors.New("message contains invalid characters")
)

// ValidateMessage validates message content.
func ValidateMessage(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrMessageEmpty
	}
	if len(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(content) {
		return ErrMessageInvalid
	}
	return nil
}

// Service is the chat persistence adapter: it durably stores messages
// before they are broadcast.
type Service struct {
	repo *Repository
}

// NewService creates a new Service.
func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// SaveMessage stores a message in its room, creating the room on
// first use. The returned message is immutable once broadcast.
func (s *Service) SaveMessage(ctx context.Context, roomType, roomID, workspaceID, userID, content string) (*domain.Message, error) {
	if err := ValidateMessage(content); err != nil {
		return nil, err
	}

	room, err := s.repo.GetOrCreateRoom(ctx, roomType, roomID, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room: %w", err)
	}

	msg, err := s.repo.CreateMessage(ctx, room.ID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return msg, nil
}

// History returns up to limit recent messages for the room scope,
// oldest first. An unknown room has no history.
func (s *Service) History(ctx context.Context, roomType, roomID, workspaceID string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	room, err := s.repo.GetOrCreateRoom(ctx, roomType, roomID, workspaceID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room: %w", err)
	}
	return s.repo.History(ctx, room.ID, limit)
}
