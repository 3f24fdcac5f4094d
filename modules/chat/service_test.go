package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/workspace-live/domain/chat"
)

func setupChatTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "chat_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Room{}, &domain.Message{}))

	return NewService(NewRepository(db)), db
}

func TestService_SaveMessage(t *testing.T) {
	service, db := setupChatTest(t)
	ctx := context.Background()

	msg, err := service.SaveMessage(ctx, "workspace", "ws-1", "ws-1", "user-1", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "user-1", msg.UserID)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.CreatedAt.IsZero())

	// A second message in the same scope reuses the room.
	_, err = service.SaveMessage(ctx, "workspace", "ws-1", "ws-1", "user-2", "hi back")
	require.NoError(t, err)

	var roomCount int64
	require.NoError(t, db.Model(&domain.Room{}).Count(&roomCount).Error)
	assert.Equal(t, int64(1), roomCount)

	// A different scope gets its own room.
	_, err = service.SaveMessage(ctx, "direct", "user-1__user-2", "ws-1", "user-1", "psst")
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Room{}).Count(&roomCount).Error)
	assert.Equal(t, int64(2), roomCount)
}

func TestService_SaveMessageValidation(t *testing.T) {
	service, _ := setupChatTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty content", content: "", wantErr: ErrMessageEmpty},
		{name: "whitespace only", content: "  \n\t ", wantErr: ErrMessageEmpty},
		{name: "over length limit", content: strings.Repeat("a", MaxMessageLength+1), wantErr: ErrMessageTooLong},
		{name: "invalid utf-8", content: string([]byte{0xff, 0xfe}), wantErr: ErrMessageInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SaveMessage(ctx, "workspace", "ws-1", "ws-1", "user-1", tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Exactly at the limit is fine.
	_, err := service.SaveMessage(ctx, "workspace", "ws-1", "ws-1", "user-1", strings.Repeat("a", MaxMessageLength))
	assert.NoError(t, err)
}

func TestService_History(t *testing.T) {
	service, _ := setupChatTest(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.SaveMessage(ctx, "workspace", "ws-1", "ws-1", "user-1", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	messages, err := service.History(ctx, "workspace", "ws-1", "ws-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 5)

	// Oldest first.
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}

	// The limit keeps the most recent messages.
	recent, err := service.History(ctx, "workspace", "ws-1", "ws-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "message 3", recent[0].Content)
	assert.Equal(t, "message 4", recent[1].Content)
}

func TestService_HistoryUnknownRoom(t *testing.T) {
	service, _ := setupChatTest(t)

	messages, err := service.History(context.Background(), "workspace", "ws-9", "ws-9", 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestService_HistoryLimitClamping(t *testing.T) {
	service, _ := setupChatTest(t)
	ctx := context.Background()

	// Out-of-range limits fall back to the default without error.
	for _, limit := range []int{0, -5, 1000} {
		_, err := service.History(ctx, "workspace", "ws-1", "ws-1", limit)
		assert.NoError(t, err, "limit %d", limit)
	}
}
