package chat

import "time"

// Room identifies a chat room by type and id within a workspace.
// Rooms are created lazily on first message.
type Room struct {
	ID          string `gorm:"primaryKey;type:text"`
	RoomType    string `gorm:"index:idx_chat_rooms_scope,unique;not null;type:text"`
	RoomID      string `gorm:"index:idx_chat_rooms_scope,unique;not null;type:text"`
	WorkspaceID string `gorm:"index:idx_chat_rooms_scope,unique;not null;type:text"`
	Name        string `gorm:"type:text"`
	CreatedBy   string `gorm:"type:text"`
	CreatedAt   time.Time
}

// TableName returns the table name for the Room entity.
func (Room) TableName() string {
	return "chat_rooms"
}

// Message is a durably stored chat message. Messages are immutable
// once broadcast.
type Message struct {
	ID        string `gorm:"primaryKey;type:text"`
	RoomPK    string `gorm:"column:room_pk;index;not null;type:text"`
	UserID    string `gorm:"index;not null;type:text"`
	Content   string `gorm:"not null;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Message entity.
func (Message) TableName() string {
	return "chat_messages"
}
