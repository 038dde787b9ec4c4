package create_booking

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
	"github.com/m04kA/SMC-StudioBooking/internal/service/shifts"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
)

// понедельник, 11:00
var now = time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixture struct {
	store  *memory.Store
	uc     *UseCase
	menu   domain.ServiceMenu
	staff1 domain.Staff
	staff2 domain.Staff
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{store: store}
	f.staff1 = store.AddStaff(domain.Staff{ID: 1, Name: "Yuji", UnitPrice: 6050, IsActive: true})
	f.staff2 = store.AddStaff(domain.Staff{ID: 2, Name: "Mika", UnitPrice: 5500, IsActive: true})
	store.AddStaff(domain.Staff{ID: 3, Name: "Retired", UnitPrice: 5000, IsActive: false})
	for _, id := range []int64{1, 2, 3} {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			store.AddShift(domain.Shift{StaffID: id, DayOfWeek: wd, StartTime: "10:00", EndTime: "21:00"})
		}
	}
	f.menu = store.AddMenu(domain.ServiceMenu{ID: 100, Name: "Personal 60", DurationMinutes: 60, Price: 8000, IsActive: true})

	f.uc = NewUseCase(
		store.Members(),
		store.Menus(),
		store.Staff(),
		store.Bookings(),
		shifts.NewService(store.Staff(), logger.Discard()),
		store.TxManager(),
		availability.Nop{},
		events.Nop{},
		metrics.NewWithRegistry(prometheus.NewRegistry(), "test"),
		Settings{Location: time.UTC, MinNotice: 24 * time.Hour},
		logger.Discard(),
	)
	f.uc.timeProvider = fixedClock{now: now}
	return f
}

func (f *fixture) member(plan domain.Plan, sessions int, balance int64) domain.Member {
	return f.store.AddMember(domain.Member{Name: "Aiko", Plan: plan, ContractedSessions: sessions, PrepaidBalance: balance})
}

func (f *fixture) book(memberID int64, start time.Time, staffID *int64) (*Response, error) {
	return f.uc.Execute(context.Background(), &Request{
		MemberID:      memberID,
		ServiceMenuID: f.menu.ID,
		StartTime:     start,
		StaffID:       staffID,
	})
}

func TestExecute_NoticeBoundary(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)

	_, err := f.book(m.ID, now.Add(24*time.Hour-time.Minute), nil)
	assert.ErrorIs(t, err, ErrNoticeTooShort)

	resp, err := f.book(m.ID, now.Add(24*time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, now.Add(25*time.Hour), resp.EndTime)
}

func TestExecute_Lookahead(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)

	// STANDARD: 14 дней + 1 день буфера от начала сегодняшних суток = 2026-11-03 00:00
	_, err := f.book(m.ID, time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC), nil)
	assert.ErrorIs(t, err, ErrLookaheadExceeded)

	_, err = f.book(m.ID, time.Date(2026, 11, 2, 20, 0, 0, 0, time.UTC), nil)
	assert.NoError(t, err)
}

func TestExecute_LookaheadPremium(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanPremium, 8, 0)

	_, err := f.book(m.ID, time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC), nil)
	assert.NoError(t, err)
}

func TestExecute_QuotaAndRebookAfterCancel(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 3, 0)
	tuesday := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	var ids []int64
	for _, hour := range []int{11, 13, 15} {
		resp, err := f.book(m.ID, tuesday.Add(time.Duration(hour)*time.Hour), nil)
		require.NoError(t, err)
		ids = append(ids, resp.ID)
	}

	_, err := f.book(m.ID, tuesday.Add(17*time.Hour), nil)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// поздняя отмена по-прежнему расходует квоту
	require.NoError(t, f.store.Bookings().Cancel(context.Background(), ids[0], domain.StatusCancelledLate, domain.ReasonOther, false, now))
	_, err = f.book(m.ID, tuesday.Add(17*time.Hour), nil)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, f.store.Bookings().Cancel(context.Background(), ids[1], domain.StatusCancelled, domain.ReasonNormal, false, now))
	_, err = f.book(m.ID, tuesday.Add(17*time.Hour), nil)
	assert.NoError(t, err)
}

func TestExecute_QuotaIsPerCalendarMonth(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanPremium, 1, 0)

	_, err := f.book(m.ID, time.Date(2026, 10, 30, 12, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	_, err = f.book(m.ID, time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC), nil)
	assert.NoError(t, err)
}

func TestExecute_PrepaidDebit(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanDigitalPrepaid, 8, 3000)

	resp, err := f.book(m.ID, now.Add(26*time.Hour), ptr.Ptr(f.staff1.ID))
	require.NoError(t, err)

	assert.Equal(t, int64(3000), resp.PaidFromPrepaid)
	require.NotNil(t, resp.BalanceAfter)
	assert.Equal(t, int64(0), *resp.BalanceAfter)

	stored, _ := f.store.Member(m.ID)
	assert.Equal(t, int64(0), stored.PrepaidBalance)

	txs, err := f.store.Members().GetTransactions(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxBookingDebit, txs[0].Kind)
	assert.Equal(t, int64(-3000), txs[0].Amount)
}

func TestExecute_NonPrepaidPlanIsNotDebited(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 3000)

	resp, err := f.book(m.ID, now.Add(26*time.Hour), nil)
	require.NoError(t, err)

	assert.Zero(t, resp.PaidFromPrepaid)
	assert.Nil(t, resp.BalanceAfter)
	stored, _ := f.store.Member(m.ID)
	assert.Equal(t, int64(3000), stored.PrepaidBalance)
}

func TestExecute_AutoAssignSkipsBusyStaff(t *testing.T) {
	f := newFixture(t)
	other := f.member(domain.PlanStandard, 8, 0)
	m := f.member(domain.PlanStandard, 8, 0)
	start := now.Add(26 * time.Hour)

	first, err := f.book(other.ID, start, nil)
	require.NoError(t, err)
	assert.Equal(t, f.staff1.ID, first.StaffID, "lowest id wins when everyone is free")
	assert.True(t, first.AutoAssigned)

	second, err := f.book(m.ID, start.Add(30*time.Minute), nil)
	require.NoError(t, err)
	assert.Equal(t, f.staff2.ID, second.StaffID)

	_, err = f.book(f.member(domain.PlanStandard, 8, 0).ID, start, nil)
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
}

func TestExecute_RequestedStaff(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)
	start := now.Add(26 * time.Hour)

	resp, err := f.book(m.ID, start, ptr.Ptr(f.staff2.ID))
	require.NoError(t, err)
	assert.Equal(t, f.staff2.ID, resp.StaffID)
	assert.False(t, resp.AutoAssigned)

	_, err = f.book(f.member(domain.PlanStandard, 8, 0).ID, start, ptr.Ptr(f.staff2.ID))
	assert.ErrorIs(t, err, ErrNoStaffAvailable, "requested staff is busy, no fallback")

	_, err = f.book(m.ID, start.Add(2*time.Hour), ptr.Ptr(int64(3)))
	assert.ErrorIs(t, err, ErrNoStaffAvailable, "inactive staff")

	_, err = f.book(m.ID, start.Add(2*time.Hour), ptr.Ptr(int64(99)))
	assert.ErrorIs(t, err, ErrNoStaffAvailable, "unknown staff")
}

func TestExecute_OutsideShift(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)

	// 20:30 + 60 минут выходит за конец смены 21:00
	_, err := f.book(m.ID, time.Date(2026, 10, 20, 20, 30, 0, 0, time.UTC), nil)
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
}

func TestExecute_StartMustBeOnSlotGrid(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)
	wednesday := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

	// Смена покрывает 07:00-23:00, но сетка студии 10:00-21:00
	f.store.AddOverride(domain.ShiftOverride{StaffID: 1, Date: wednesday, StartTime: "07:00", EndTime: "23:00"})

	for name, start := range map[string]time.Time{
		"off grid minute":  wednesday.Add(10*time.Hour + 7*time.Minute),
		"off grid seconds": wednesday.Add(10*time.Hour + 30*time.Second),
		"before opening":   wednesday.Add(9*time.Hour + 45*time.Minute),
		"after closing":    wednesday.Add(21*time.Hour + 15*time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.book(m.ID, start, ptr.Ptr(f.staff1.ID))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.store.AllBookings())

	resp, err := f.book(m.ID, wednesday.Add(10*time.Hour+15*time.Minute), nil)
	require.NoError(t, err)
	assert.Equal(t, wednesday.Add(11*time.Hour+15*time.Minute), resp.EndTime)
}

func TestValidateSlot_StudioTimezone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	settings := Settings{Location: tokyo, OpenTime: "10:00", CloseTime: "21:00", SlotStepMinutes: 15}

	// 01:30 UTC = 10:30 JST
	start := time.Date(2026, 10, 20, 1, 30, 0, 0, time.UTC).In(tokyo)
	assert.NoError(t, validateSlot(start, settings))

	// 10:30 UTC = 19:30 JST, а 12:30 UTC = 21:30 JST уже после закрытия
	assert.NoError(t, validateSlot(time.Date(2026, 10, 20, 10, 30, 0, 0, time.UTC).In(tokyo), settings))
	assert.ErrorIs(t, validateSlot(time.Date(2026, 10, 20, 12, 30, 0, 0, time.UTC).In(tokyo), settings), ErrInvalidInput)
}

func TestExecute_LostRaceMovesToNextStaff(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)
	f.store.InjectError("bookings.Create", txmanager.ErrConflict)

	resp, err := f.book(m.ID, now.Add(26*time.Hour), nil)

	require.NoError(t, err)
	assert.Equal(t, f.staff2.ID, resp.StaffID)
}

func TestExecute_StoreUnavailableLeavesNoPartialState(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanDigitalPrepaid, 8, 3000)
	f.store.InjectError("members.AdjustPrepaidBalance", errors.New("connection reset"))

	_, err := f.book(m.ID, now.Add(26*time.Hour), nil)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Empty(t, f.store.AllBookings())
	stored, _ := f.store.Member(m.ID)
	assert.Equal(t, int64(3000), stored.PrepaidBalance)
}

func TestExecute_CommitFailure(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)
	f.store.InjectError("tx.Commit", errors.New("disk full"))

	_, err := f.book(m.ID, now.Add(26*time.Hour), nil)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Empty(t, f.store.AllBookings())
}

func TestExecute_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	m := f.member(domain.PlanStandard, 8, 0)
	f.store.AddMenu(domain.ServiceMenu{ID: 200, Name: "Old", DurationMinutes: 45, IsActive: false})
	start := now.Add(26 * time.Hour)

	_, err := f.book(404, start, nil)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{MemberID: m.ID, ServiceMenuID: 200, StartTime: start})
	assert.ErrorIs(t, err, ErrMenuInvalid)

	_, err = f.uc.Execute(context.Background(), &Request{MemberID: m.ID, ServiceMenuID: 999, StartTime: start})
	assert.ErrorIs(t, err, ErrMenuInvalid)

	_, err = f.uc.Execute(context.Background(), &Request{MemberID: m.ID, ServiceMenuID: f.menu.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ConcurrentAdmissionNeverDoubleBooks(t *testing.T) {
	f := newFixture(t)
	start := now.Add(26 * time.Hour)

	const attempts = 10
	members := make([]domain.Member, attempts)
	for i := range members {
		members[i] = f.member(domain.PlanStandard, 8, 0)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, m := range members {
		wg.Add(1)
		go func(memberID int64) {
			defer wg.Done()
			_, err := f.book(memberID, start, nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, ErrNoStaffAvailable)
		}(m.ID)
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded, "one booking per active staff")

	all := f.store.AllBookings()
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].StaffID == all[j].StaffID {
				assert.False(t, all[i].Overlaps(all[j].StartTime, all[j].EndTime))
			}
		}
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeQuotaExceeded, ErrorCode(ErrQuotaExceeded))
	assert.Equal(t, CodeNoticeTooShort, ErrorCode(errors.Join(ErrNoticeTooShort)))
	assert.Equal(t, CodeStoreUnavailable, ErrorCode(errors.New("boom")))
}
