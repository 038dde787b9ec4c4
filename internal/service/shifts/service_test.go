package shifts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

// 2026-10-19 - понедельник
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestResolve_RecurringShift(t *testing.T) {
	store := memory.NewStore()
	store.AddShift(domain.Shift{StaffID: 1, DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "19:00"})
	store.AddShift(domain.Shift{StaffID: 1, DayOfWeek: time.Tuesday, StartTime: "12:00", EndTime: "20:00"})
	svc := NewService(store.Staff(), logger.Discard())

	got, err := svc.Resolve(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.Equal(t, []domain.WorkingInterval{{Start: "10:00", End: "19:00"}}, got)
}

func TestResolve_ClosedOverrideWins(t *testing.T) {
	store := memory.NewStore()
	store.AddShift(domain.Shift{StaffID: 1, DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "19:00"})
	store.AddOverride(domain.ShiftOverride{StaffID: 1, Date: monday, IsClosed: true})
	svc := NewService(store.Staff(), logger.Discard())

	got, err := svc.Resolve(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.Empty(t, got)

	nextMonday, err := svc.Resolve(context.Background(), 1, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, nextMonday, 1, "override applies to its exact date only")
}

func TestResolve_OverrideReplacesShift(t *testing.T) {
	store := memory.NewStore()
	store.AddShift(domain.Shift{StaffID: 1, DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "19:00"})
	store.AddOverride(domain.ShiftOverride{StaffID: 1, Date: monday, StartTime: "15:00", EndTime: "21:00"})
	svc := NewService(store.Staff(), logger.Discard())

	got, err := svc.Resolve(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.Equal(t, []domain.WorkingInterval{{Start: "15:00", End: "21:00"}}, got)
}

func TestResolve_UnknownStaff(t *testing.T) {
	svc := NewService(memory.NewStore().Staff(), logger.Discard())

	got, err := svc.Resolve(context.Background(), 42, monday)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_StoreError(t *testing.T) {
	store := memory.NewStore()
	store.InjectError("staff.GetOverrides", errors.New("timeout"))
	svc := NewService(store.Staff(), logger.Discard())

	_, err := svc.Resolve(context.Background(), 1, monday)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]domain.WorkingInterval{
		{Start: "15:00", End: "18:00"},
		{Start: "10:00", End: "12:00"},
		{Start: "12:00", End: "13:00"},
		{Start: "16:00", End: "17:00"},
		{Start: "20:00", End: "19:00"},
		{Start: "bad", End: "21:00"},
	})

	assert.Equal(t, []domain.WorkingInterval{
		{Start: "10:00", End: "13:00"},
		{Start: "15:00", End: "18:00"},
	}, got)
}
