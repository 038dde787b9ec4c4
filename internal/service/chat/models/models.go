package models

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// MessageResponse отправленное сообщение
type MessageResponse struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"memberId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnreadCountResponse количество непрочитанных сообщений
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// FromDomainMessage конвертирует доменное сообщение в ответ
func FromDomainMessage(m *domain.ChatMessage) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		MemberID:  m.MemberID,
		Sender:    string(m.Sender),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
