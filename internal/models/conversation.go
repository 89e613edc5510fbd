package models

import (
	"time"
)

// ChatSession 会话表：门户侧一个聊天窗口对应一条记录
type ChatSession struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	SessionID string    `gorm:"column:session_id;size:255;not null;uniqueIndex" json:"session_id"`
	UserID    string    `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	LabID     string    `gorm:"column:lab_id;size:255;index" json:"lab_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage 消息表：问题与回答各存一条
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	SessionID string    `gorm:"column:session_id;size:255;not null;index" json:"session_id"`
	Role      string    `gorm:"column:role;size:20;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Route     string    `gorm:"column:route;size:32" json:"route"`
	Sources   string    `gorm:"type:jsonb;column:sources" json:"sources"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
