package domain

import "time"

// ChatSender author of a chat message
type ChatSender string

const (
	SenderAdmin ChatSender = "ADMIN"
	SenderUser  ChatSender = "USER"
)

// ChatMessage message exchanged with a member over LINE
type ChatMessage struct {
	ID        int64
	MemberID  int64
	Sender    ChatSender
	Content   string
	IsRead    bool
	CreatedAt time.Time
}
