package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	memberRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/member"
)

// MemberRepository участники и журнал баланса в памяти
type MemberRepository struct {
	s *Store
}

// GetByID получает участника по ID
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("members.GetByID"); err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan member: %w", memberRepo.ErrScanRow, err)
	}

	m, ok := r.s.st.members[id]
	if !ok {
		return nil, memberRepo.ErrMemberNotFound
	}
	return &m, nil
}

// AdjustPrepaidBalance изменяет баланс и добавляет запись в журнал
func (r *MemberRepository) AdjustPrepaidBalance(ctx context.Context, memberID, delta int64, kind domain.PrepaidTransactionKind, bookingID *int64) (int64, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("members.AdjustPrepaidBalance"); err != nil {
		return 0, fmt.Errorf("%w: AdjustPrepaidBalance - execute update: %w", memberRepo.ErrExecQuery, err)
	}

	m, ok := r.s.st.members[memberID]
	if !ok {
		return 0, fmt.Errorf("%w: member id=%d, delta=%d", memberRepo.ErrInsufficientBalance, memberID, delta)
	}

	m.PrepaidBalance += delta
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("%w: member id=%d, delta=%d: %w", memberRepo.ErrInsufficientBalance, memberID, delta, err)
	}
	m.UpdatedAt = r.s.now()
	r.s.st.members[memberID] = m

	r.s.st.prepaidTxs = append(r.s.st.prepaidTxs, domain.PrepaidTransaction{
		ID:           r.s.st.id(),
		MemberID:     memberID,
		BookingID:    bookingID,
		Kind:         kind,
		Amount:       delta,
		BalanceAfter: m.PrepaidBalance,
		CreatedAt:    m.UpdatedAt,
	})

	return m.PrepaidBalance, nil
}

// GetTransactions возвращает журнал движения баланса (сначала новые)
func (r *MemberRepository) GetTransactions(ctx context.Context, memberID int64) ([]*domain.PrepaidTransaction, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("members.GetTransactions"); err != nil {
		return nil, fmt.Errorf("%w: GetTransactions - execute query: %w", memberRepo.ErrExecQuery, err)
	}

	out := make([]*domain.PrepaidTransaction, 0)
	for _, tx := range r.s.st.prepaidTxs {
		if tx.MemberID == memberID {
			tx := tx
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
