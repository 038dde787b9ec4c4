package send_reminders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type messengerMock struct {
	mock.Mock
}

func (m *messengerMock) PushText(ctx context.Context, to, text string) error {
	args := m.Called(ctx, to, text)
	return args.Error(0)
}

func TestExecute(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 19:00 по Токио, 10:00 UTC
	now := time.Date(2026, 10, 19, 19, 0, 0, 0, tokyo)
	tomorrow := time.Date(2026, 10, 20, 0, 0, 0, 0, tokyo)

	store := memory.NewStore()
	store.AddStaff(domain.Staff{ID: 1, Name: "Yuji", IsActive: true})
	menu := store.AddMenu(domain.ServiceMenu{Name: "Personal 60", DurationMinutes: 60, IsActive: true})
	withLine := store.AddMember(domain.Member{Name: "Aiko", LineUserID: ptr.Ptr("U-aiko")})
	failing := store.AddMember(domain.Member{Name: "Ren", LineUserID: ptr.Ptr("U-ren")})
	noLine := store.AddMember(domain.Member{Name: "Ken"})

	add := func(memberID int64, start time.Time, status domain.BookingStatus) domain.Booking {
		return store.AddBooking(domain.Booking{
			MemberID:      memberID,
			StaffID:       1,
			ServiceMenuID: ptr.Ptr(menu.ID),
			StartTime:     start,
			EndTime:       start.Add(time.Hour),
			Status:        status,
		})
	}
	b1 := add(withLine.ID, tomorrow.Add(10*time.Hour), domain.StatusConfirmed)
	b2 := add(failing.ID, tomorrow.Add(12*time.Hour), domain.StatusConfirmed)
	b3 := add(noLine.ID, tomorrow.Add(14*time.Hour), domain.StatusConfirmed)
	add(withLine.ID, tomorrow.Add(16*time.Hour), domain.StatusCancelled)
	add(withLine.ID, tomorrow.Add(34*time.Hour), domain.StatusConfirmed) // послезавтра
	add(withLine.ID, now.Add(time.Hour), domain.StatusConfirmed)         // сегодня

	messenger := new(messengerMock)
	messenger.On("PushText", mock.Anything, "U-aiko", mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "明日 10:00") && strings.Contains(text, "Personal 60") && strings.Contains(text, "Yuji")
	})).Return(nil)
	messenger.On("PushText", mock.Anything, "U-ren", mock.Anything).Return(errors.New("line down"))

	uc := NewUseCase(store.Bookings(), messenger, metrics.NewWithRegistry(prometheus.NewRegistry(), "test"),
		Settings{Location: tokyo, Concurrency: 2}, logger.Discard())
	uc.timeProvider = fixedClock{now: now}

	resp, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Processed)
	assert.Equal(t, 1, resp.Sent)
	assert.Equal(t, []Detail{
		{BookingID: b1.ID, Recipient: "Aiko", Status: ResultSent},
		{BookingID: b2.ID, Recipient: "Ren", Status: ResultFailed},
		{BookingID: b3.ID, Recipient: "Ken", Status: ResultNoLineID},
	}, resp.Details)
	messenger.AssertExpectations(t)
}

func TestExecute_StoreError(t *testing.T) {
	store := memory.NewStore()
	store.InjectError("bookings.GetConfirmedStartingBetween", errors.New("timeout"))

	uc := NewUseCase(store.Bookings(), new(messengerMock), metrics.NewWithRegistry(prometheus.NewRegistry(), "test"),
		Settings{}, logger.Discard())

	_, err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestBuildMessage_DefaultMenuName(t *testing.T) {
	msg := buildMessage(&domain.Booking{
		StartTime: time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC),
		StaffName: "Mika",
	})

	assert.Contains(t, msg, "明日 09:30")
	assert.Contains(t, msg, "ご予約")
	assert.Contains(t, msg, "Mika")
}
