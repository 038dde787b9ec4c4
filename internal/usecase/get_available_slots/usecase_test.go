package get_available_slots

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	cache "github.com/m04kA/SMC-StudioBooking/internal/infra/cache/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/service/shifts"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// 2026-10-19 - понедельник
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func seedStudio() *memory.Store {
	store := memory.NewStore()
	store.AddStaff(domain.Staff{ID: 1, Name: "Yuji", IsActive: true})
	store.AddStaff(domain.Staff{ID: 2, Name: "Mika", IsActive: true})
	store.AddStaff(domain.Staff{ID: 3, Name: "Retired", IsActive: false})
	store.AddShift(domain.Shift{StaffID: 1, DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "19:00"})
	store.AddShift(domain.Shift{StaffID: 2, DayOfWeek: time.Monday, StartTime: "18:00", EndTime: "21:00"})
	store.AddShift(domain.Shift{StaffID: 3, DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "21:00"})
	store.AddMenu(domain.ServiceMenu{ID: 100, Name: "Personal 60", DurationMinutes: 60, IsActive: true})
	store.AddMenu(domain.ServiceMenu{ID: 200, Name: "Old", DurationMinutes: 60, IsActive: false})
	return store
}

func newUseCase(store *memory.Store, c Cache) *UseCase {
	return NewUseCase(
		store.Menus(),
		store.Staff(),
		store.Bookings(),
		shifts.NewService(store.Staff(), logger.Discard()),
		c,
		Settings{Location: time.UTC, OpenTime: "10:00", CloseTime: "21:00", SlotStepMinutes: 15},
		logger.Discard(),
	)
}

func times(slots []Slot) []types.TimeString {
	out := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func TestExecute_AggregatesStaff(t *testing.T) {
	store := seedStudio()
	store.AddBooking(domain.Booking{
		MemberID:  10,
		StaffID:   1,
		StartTime: monday.Add(10 * time.Hour),
		EndTime:   monday.Add(17 * time.Hour),
		Status:    domain.StatusConfirmed,
	})

	resp, err := newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: monday, ServiceMenuID: 100})
	require.NoError(t, err)

	assert.Equal(t, []types.TimeString{"17:00", "17:15", "17:30", "17:45", "18:00"}, resp.StaffSlots[1])
	assert.Len(t, resp.StaffSlots[2], 9) // 18:00..20:00
	assert.NotContains(t, resp.StaffSlots, int64(3), "inactive staff is not considered")

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, types.TimeString("17:00"), resp.Slots[0].StartTime)
	assert.Equal(t, []int64{1, 2}, resp.Slots[4].StaffIDs) // 18:00
	assert.True(t, resp.Slots[4].AnyStaffFree)
	assert.Equal(t, types.TimeString("20:00"), resp.Slots[len(resp.Slots)-1].StartTime)
	assert.Equal(t, 60, resp.DurationMinutes)
}

func TestExecute_ClosedOverrideHidesRecurringShift(t *testing.T) {
	store := seedStudio()
	store.AddOverride(domain.ShiftOverride{StaffID: 1, Date: monday, IsClosed: true})

	resp, err := newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: monday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(1))})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.Empty(t, resp.StaffSlots[1])
}

func TestExecute_StaffFilter(t *testing.T) {
	store := seedStudio()

	resp, err := newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: monday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(2))})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, resp.Slots[0].StaffIDs)
	assert.Len(t, resp.StaffSlots, 1)

	resp, err = newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: monday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(3))})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots, "inactive staff has no availability")
}

func TestExecute_CancelledBookingsDoNotBlock(t *testing.T) {
	store := seedStudio()
	store.AddBooking(domain.Booking{
		MemberID:  10,
		StaffID:   2,
		StartTime: monday.Add(18 * time.Hour),
		EndTime:   monday.Add(21 * time.Hour),
		Status:    domain.StatusCancelled,
	})

	resp, err := newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: monday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(2))})

	require.NoError(t, err)
	assert.Len(t, resp.Slots, 9)
}

func TestExecute_NoticeIsNotApplied(t *testing.T) {
	store := seedStudio()
	yesterday := domain.StartOfDay(time.Now().UTC()).AddDate(0, 0, -1)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		store.AddShift(domain.Shift{StaffID: 2, DayOfWeek: wd, StartTime: "10:00", EndTime: "12:00"})
	}

	resp, err := newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: yesterday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(2))})

	require.NoError(t, err)
	assert.Contains(t, times(resp.Slots), types.TimeString("10:00"))
}

func TestExecute_InvalidMenu(t *testing.T) {
	store := seedStudio()
	uc := newUseCase(store, cache.Nop{})

	_, err := uc.Execute(context.Background(), &Request{Date: monday, ServiceMenuID: 200})
	assert.ErrorIs(t, err, ErrMenuInvalid)

	_, err = uc.Execute(context.Background(), &Request{Date: monday, ServiceMenuID: 999})
	assert.ErrorIs(t, err, ErrMenuInvalid)

	_, err = uc.Execute(context.Background(), &Request{ServiceMenuID: 100})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_StoreError(t *testing.T) {
	store := seedStudio()
	store.InjectError("bookings.GetStaffBookings", errors.New("timeout"))

	_, err := newUseCase(store, cache.Nop{}).Execute(context.Background(),
		&Request{Date: monday, ServiceMenuID: 100})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestExecute_CacheHitAndInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := seedStudio()
	redisCache := cache.NewCache(client, time.Minute)
	uc := newUseCase(store, redisCache)
	req := &Request{Date: monday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(2))}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// Запись в обход use case: кэш продолжает отдавать старый снимок
	store.AddBooking(domain.Booking{
		MemberID:  10,
		StaffID:   2,
		StartTime: monday.Add(18 * time.Hour),
		EndTime:   monday.Add(21 * time.Hour),
		Status:    domain.StatusConfirmed,
	})

	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, times(first.Slots), times(second.Slots))

	require.NoError(t, redisCache.Invalidate(context.Background(), monday))

	third, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Empty(t, third.Slots)
}

// commitDuringRead имитирует бронирование, зафиксированное сразу после того,
// как расчёт прочитал бронирования тренера
type commitDuringRead struct {
	BookingRepository
	once   sync.Once
	commit func()
}

func (r *commitDuringRead) GetStaffBookings(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error) {
	bookings, err := r.BookingRepository.GetStaffBookings(ctx, staffID, from, to)
	r.once.Do(r.commit)
	return bookings, err
}

func TestExecute_InvalidationDuringComputeIsNotMasked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := seedStudio()
	redisCache := cache.NewCache(client, time.Minute)
	bookings := &commitDuringRead{
		BookingRepository: store.Bookings(),
		commit: func() {
			store.AddBooking(domain.Booking{
				MemberID:  10,
				StaffID:   2,
				StartTime: monday.Add(18 * time.Hour),
				EndTime:   monday.Add(21 * time.Hour),
				Status:    domain.StatusConfirmed,
			})
			assert.NoError(t, redisCache.Invalidate(context.Background(), monday))
		},
	}
	uc := NewUseCase(
		store.Menus(),
		store.Staff(),
		bookings,
		shifts.NewService(store.Staff(), logger.Discard()),
		redisCache,
		Settings{Location: time.UTC, OpenTime: "10:00", CloseTime: "21:00", SlotStepMinutes: 15},
		logger.Discard(),
	)
	req := &Request{Date: monday, ServiceMenuID: 100, StaffID: ptr.Ptr(int64(2))}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, first.Slots, 9, "computed before the booking was visible")

	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Cached, "snapshot computed before invalidation must not be served")
	assert.Empty(t, second.Slots)

	third, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, third.Cached)
	assert.Empty(t, third.Slots)
}
