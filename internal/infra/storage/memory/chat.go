package memory

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	chatRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/chat"
)

// ChatRepository журнал чата в памяти
type ChatRepository struct {
	s *Store
}

// Create сохраняет сообщение
func (r *ChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("chat.Create"); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", chatRepo.ErrExecQuery, err)
	}

	msg.ID = r.s.st.id()
	msg.CreatedAt = r.s.now()
	r.s.st.chat = append(r.s.st.chat, *msg)
	return msg, nil
}

// CountUnread считает непрочитанные сообщения от участников
func (r *ChatRepository) CountUnread(ctx context.Context) (int, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("chat.CountUnread"); err != nil {
		return 0, fmt.Errorf("%w: CountUnread - execute query: %w", chatRepo.ErrExecQuery, err)
	}

	count := 0
	for _, m := range r.s.st.chat {
		if m.Sender == domain.SenderUser && !m.IsRead {
			count++
		}
	}
	return count, nil
}
