package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	s *Store
}

// denormalize заполняет поля для чтения, вызывается под блокировкой
func (r *BookingRepository) denormalize(b domain.Booking) *domain.Booking {
	if m, ok := r.s.st.members[b.MemberID]; ok {
		b.MemberName = m.Name
		b.MemberLineID = m.LineUserID
	}
	if st, ok := r.s.st.staff[b.StaffID]; ok {
		b.StaffName = st.Name
	}
	if b.ServiceMenuID != nil {
		if menu, ok := r.s.st.menus[*b.ServiceMenuID]; ok {
			name := menu.Name
			b.ServiceMenuName = &name
		}
	}
	return &b
}

func (r *BookingRepository) filter(match func(b domain.Booking) bool) []*domain.Booking {
	out := make([]*domain.Booking, 0)
	for _, b := range r.s.st.bookings {
		if match(b) {
			out = append(out, r.denormalize(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Create сохраняет бронирование; пересечение подтверждённых бронирований тренера
// отклоняется так же, как exclusion constraint в Postgres
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.Create"); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", bookingRepo.ErrExecQuery, err)
	}

	if booking.Status == domain.StatusConfirmed {
		for _, other := range r.s.st.bookings {
			if other.StaffID == booking.StaffID && other.IsActive() && other.Overlaps(booking.StartTime, booking.EndTime) {
				return nil, fmt.Errorf("%w: Create - overlaps booking id=%d: %w",
					bookingRepo.ErrExecQuery, other.ID, txmanager.ErrConflict)
			}
		}
	}

	now := r.s.now()
	booking.ID = r.s.st.id()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.s.st.bookings[booking.ID] = *booking

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.GetByID"); err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", bookingRepo.ErrScanRow, err)
	}

	b, ok := r.s.st.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.denormalize(b), nil
}

// GetByMemberID получает бронирования участника
func (r *BookingRepository) GetByMemberID(ctx context.Context, memberID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.GetByMemberID"); err != nil {
		return nil, fmt.Errorf("%w: GetByMemberID - execute query: %w", bookingRepo.ErrExecQuery, err)
	}

	return r.filter(func(b domain.Booking) bool {
		return b.MemberID == memberID && (status == nil || b.Status == *status)
	}), nil
}

// GetStaffBookings получает подтверждённые бронирования тренера, пересекающиеся с [from, to)
func (r *BookingRepository) GetStaffBookings(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.GetStaffBookings"); err != nil {
		return nil, fmt.Errorf("%w: GetStaffBookings - execute query: %w", bookingRepo.ErrExecQuery, err)
	}

	return r.filter(func(b domain.Booking) bool {
		return b.StaffID == staffID && b.IsActive() && b.Overlaps(from, to)
	}), nil
}

// GetConfirmedStartingBetween получает подтверждённые бронирования с началом в [from, to)
func (r *BookingRepository) GetConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.GetConfirmedStartingBetween"); err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedStartingBetween - execute query: %w", bookingRepo.ErrExecQuery, err)
	}

	return r.filter(func(b domain.Booking) bool {
		return b.IsActive() && !b.StartTime.Before(from) && b.StartTime.Before(to)
	}), nil
}

// CountQuotaBookings считает бронирования, расходующие квоту, с началом в [from, to)
func (r *BookingRepository) CountQuotaBookings(ctx context.Context, memberID int64, from, to time.Time) (int, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.CountQuotaBookings"); err != nil {
		return 0, fmt.Errorf("%w: CountQuotaBookings - scan count: %w", bookingRepo.ErrScanRow, err)
	}

	count := 0
	for _, b := range r.s.st.bookings {
		if b.MemberID == memberID && b.ConsumesQuota() && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			count++
		}
	}
	return count, nil
}

// HasReliefCancellation проверяет наличие отмены cancelled с причиной SICKNESS/BEREAVEMENT в [from, to)
func (r *BookingRepository) HasReliefCancellation(ctx context.Context, memberID int64, from, to time.Time) (bool, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.HasReliefCancellation"); err != nil {
		return false, fmt.Errorf("%w: HasReliefCancellation - scan row: %w", bookingRepo.ErrScanRow, err)
	}

	for _, b := range r.s.st.bookings {
		if b.MemberID != memberID || b.Status != domain.StatusCancelled {
			continue
		}
		if b.CancellationReason == nil || !b.CancellationReason.QualifiesForRelief() {
			continue
		}
		if b.CancelledAt != nil && !b.CancelledAt.Before(from) && b.CancelledAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

// Cancel переводит подтверждённое бронирование в терминальный статус
func (r *BookingRepository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason domain.CancellationReason, reliefApplied bool, cancelledAt time.Time) error {
	defer r.s.lock(ctx)()

	if err := r.s.failure("bookings.Cancel"); err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", bookingRepo.ErrExecQuery, err)
	}

	b, ok := r.s.st.bookings[id]
	if !ok || b.Status != domain.StatusConfirmed {
		return bookingRepo.ErrBookingNotConfirmed
	}

	at := cancelledAt
	b.Status = status
	b.CancellationReason = &reason
	b.ReliefApplied = reliefApplied
	b.CancelledAt = &at
	b.UpdatedAt = cancelledAt
	r.s.st.bookings[id] = b

	return nil
}
