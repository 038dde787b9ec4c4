package cancel_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/cache/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/events"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

var now = time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newUseCase(store *memory.Store) *UseCase {
	uc := NewUseCase(
		store.Bookings(),
		store.Members(),
		store.TxManager(),
		availability.Nop{},
		events.Nop{},
		metrics.NewWithRegistry(prometheus.NewRegistry(), "test"),
		Settings{Location: time.UTC, MinNotice: 24 * time.Hour},
		logger.Discard(),
	)
	uc.timeProvider = fixedClock{now: now}
	return uc
}

func seed(store *memory.Store, balance int64) domain.Member {
	store.AddStaff(domain.Staff{ID: 1, Name: "Yuji", UnitPrice: 6050, IsActive: true})
	return store.AddMember(domain.Member{Name: "Aiko", Plan: domain.PlanDigitalPrepaid, ContractedSessions: 8, PrepaidBalance: balance})
}

func addBooking(store *memory.Store, memberID int64, start time.Time, paid int64) domain.Booking {
	return store.AddBooking(domain.Booking{
		MemberID:        memberID,
		StaffID:         1,
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		Status:          domain.StatusConfirmed,
		PaidFromPrepaid: paid,
	})
}

func reason(r domain.CancellationReason) *domain.CancellationReason {
	return &r
}

func TestExecute_EarlyCancellationRefunds(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(48*time.Hour), 3000)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{BookingID: b.ID, MemberID: m.ID})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "NORMAL", resp.Reason)
	assert.False(t, resp.ReliefApplied)
	assert.Equal(t, int64(3000), resp.Refunded)
	require.NotNil(t, resp.BalanceAfter)
	assert.Equal(t, int64(3000), *resp.BalanceAfter)

	stored, _ := store.Booking(b.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)
	assert.True(t, stored.CancelledAt.Equal(now))
	assert.Equal(t, int64(3000), stored.PaidFromPrepaid, "paidFromPrepaid is immutable")
}

func TestExecute_ExactlyAtNoticeIsNotLate(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(24*time.Hour), 0)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{BookingID: b.ID, MemberID: m.ID})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
}

func TestExecute_LateCancellationKeepsDebit(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(23*time.Hour), 3000)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{BookingID: b.ID, MemberID: m.ID})

	require.NoError(t, err)
	assert.Equal(t, "cancelled_late", resp.Status)
	assert.Equal(t, "OTHER", resp.Reason)
	assert.Zero(t, resp.Refunded)
	assert.Nil(t, resp.BalanceAfter)

	stored, _ := store.Member(m.ID)
	assert.Zero(t, stored.PrepaidBalance)
}

func TestExecute_LateNormalReasonGetsNoRelief(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(2*time.Hour), 0)

	resp, err := newUseCase(store).Execute(context.Background(),
		&Request{BookingID: b.ID, MemberID: m.ID, Reason: reason(domain.ReasonNormal)})

	require.NoError(t, err)
	assert.Equal(t, "cancelled_late", resp.Status)
	assert.Equal(t, "NORMAL", resp.Reason)
}

func TestExecute_ReliefOncePerMonth(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	first := addBooking(store, m.ID, now.Add(5*time.Hour), 3000)
	second := addBooking(store, m.ID, now.Add(7*time.Hour), 3000)
	uc := newUseCase(store)

	resp, err := uc.Execute(context.Background(),
		&Request{BookingID: first.ID, MemberID: m.ID, Reason: reason(domain.ReasonSickness)})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.True(t, resp.ReliefApplied)
	assert.Equal(t, int64(3000), resp.Refunded, "relieved cancellation is refunded")

	resp, err = uc.Execute(context.Background(),
		&Request{BookingID: second.ID, MemberID: m.ID, Reason: reason(domain.ReasonBereavement)})
	require.NoError(t, err)
	assert.Equal(t, "cancelled_late", resp.Status)
	assert.False(t, resp.ReliefApplied)
	assert.Equal(t, "BEREAVEMENT", resp.Reason)
	assert.Zero(t, resp.Refunded)
}

func TestExecute_ReliefFromPreviousMonthDoesNotCount(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	lastMonth := time.Date(2026, 9, 30, 18, 0, 0, 0, time.UTC)
	store.AddBooking(domain.Booking{
		MemberID:           m.ID,
		StaffID:            1,
		StartTime:          lastMonth.Add(3 * time.Hour),
		EndTime:            lastMonth.Add(4 * time.Hour),
		Status:             domain.StatusCancelled,
		CancellationReason: reason(domain.ReasonSickness),
		ReliefApplied:      true,
		CancelledAt:        &lastMonth,
	})
	b := addBooking(store, m.ID, now.Add(3*time.Hour), 0)

	resp, err := newUseCase(store).Execute(context.Background(),
		&Request{BookingID: b.ID, MemberID: m.ID, Reason: reason(domain.ReasonSickness)})

	require.NoError(t, err)
	assert.True(t, resp.ReliefApplied)
}

func TestExecute_ConcurrentLateCancellationsGrantOneRelief(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	uc := newUseCase(store)

	var ids []int64
	for i := 0; i < 4; i++ {
		ids = append(ids, addBooking(store, m.ID, now.Add(time.Duration(2+i*2)*time.Hour), 0).ID)
	}

	var wg sync.WaitGroup
	results := make([]*Response, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			resp, err := uc.Execute(context.Background(),
				&Request{BookingID: id, MemberID: m.ID, Reason: reason(domain.ReasonSickness)})
			assert.NoError(t, err)
			results[i] = resp
		}(i, id)
	}
	wg.Wait()

	relieved := 0
	for _, r := range results {
		if r != nil && r.ReliefApplied {
			relieved++
		}
	}
	assert.Equal(t, 1, relieved)
}

func TestExecute_AlreadyCancelled(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(48*time.Hour), 3000)
	uc := newUseCase(store)

	_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, MemberID: m.ID})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{BookingID: b.ID, MemberID: m.ID})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	stored, _ := store.Member(m.ID)
	assert.Equal(t, int64(3000), stored.PrepaidBalance, "refund happens once")
}

func TestExecute_NotFound(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	other := store.AddMember(domain.Member{Name: "Ken", Plan: domain.PlanStandard})
	b := addBooking(store, m.ID, now.Add(48*time.Hour), 0)
	uc := newUseCase(store)

	_, err := uc.Execute(context.Background(), &Request{BookingID: b.ID, MemberID: other.ID})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = uc.Execute(context.Background(), &Request{BookingID: 9999, MemberID: m.ID})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	stored, _ := store.Booking(b.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestExecute_InvalidReason(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(48*time.Hour), 0)

	_, err := newUseCase(store).Execute(context.Background(),
		&Request{BookingID: b.ID, MemberID: m.ID, Reason: reason("HOLIDAY")})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_StoreUnavailableRollsBack(t *testing.T) {
	store := memory.NewStore()
	m := seed(store, 0)
	b := addBooking(store, m.ID, now.Add(48*time.Hour), 3000)
	store.InjectError("members.AdjustPrepaidBalance", errors.New("connection reset"))

	_, err := newUseCase(store).Execute(context.Background(), &Request{BookingID: b.ID, MemberID: m.ID})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	stored, _ := store.Booking(b.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Nil(t, stored.CancelledAt)
}

func TestDecideStatus(t *testing.T) {
	assert.Equal(t, domain.StatusCancelled, decideStatus(now.Add(24*time.Hour), now, 24*time.Hour))
	assert.Equal(t, domain.StatusCancelledLate, decideStatus(now.Add(24*time.Hour-time.Second), now, 24*time.Hour))
	assert.Equal(t, domain.StatusCancelledLate, decideStatus(now.Add(-time.Hour), now, 24*time.Hour))
}

func TestEffectiveReason(t *testing.T) {
	assert.Equal(t, domain.ReasonNormal, effectiveReason(nil, domain.StatusCancelled))
	assert.Equal(t, domain.ReasonOther, effectiveReason(nil, domain.StatusCancelledLate))
	assert.Equal(t, domain.ReasonSickness, effectiveReason(ptr.Ptr(domain.ReasonSickness), domain.StatusCancelled))
}
