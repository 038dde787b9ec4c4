package send_reminders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sendReminders "github.com/m04kA/SMC-StudioBooking/internal/usecase/send_reminders"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context) (*sendReminders.Response, error) {
	args := m.Called(ctx)
	if resp, ok := args.Get(0).(*sendReminders.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandle(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything).Return(&sendReminders.Response{
		Date:      time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Processed: 2,
		Sent:      1,
		Details: []sendReminders.Detail{
			{BookingID: 1, Recipient: "Aiko", Status: sendReminders.ResultSent},
			{BookingID: 2, Recipient: "Ken", Status: sendReminders.ResultNoLineID},
		},
	}, nil)

	w := httptest.NewRecorder()
	NewHandler(uc, logger.Discard()).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/internal/cron/reminders", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp RemindersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2026-10-20", resp.Date)
	assert.Equal(t, 1, resp.Sent)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, sendReminders.ResultNoLineID, resp.Details[1].Status)
}

func TestHandle_StoreUnavailable(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything).Return(nil, sendReminders.ErrStoreUnavailable)

	w := httptest.NewRecorder()
	NewHandler(uc, logger.Discard()).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/internal/cron/reminders", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
