package get_member_bookings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

func setup(t *testing.T) (*mux.Router, domain.Member) {
	t.Helper()

	store := memory.NewStore()
	member := store.AddMember(domain.Member{Name: "Sato", Plan: domain.PlanStandard, ContractedSessions: 4})
	other := store.AddMember(domain.Member{Name: "Ito", Plan: domain.PlanStandard, ContractedSessions: 4})
	staff := store.AddStaff(domain.Staff{Name: "Kenji", UnitPrice: 6000, IsActive: true})

	start := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	store.AddBooking(domain.Booking{MemberID: member.ID, StaffID: staff.ID, StartTime: start.Add(24 * time.Hour),
		EndTime: start.Add(25 * time.Hour), Status: domain.StatusConfirmed})
	store.AddBooking(domain.Booking{MemberID: member.ID, StaffID: staff.ID, StartTime: start,
		EndTime: start.Add(time.Hour), Status: domain.StatusConfirmed})
	store.AddBooking(domain.Booking{MemberID: member.ID, StaffID: staff.ID, StartTime: start.Add(48 * time.Hour),
		EndTime: start.Add(49 * time.Hour), Status: domain.StatusCancelled})
	store.AddBooking(domain.Booking{MemberID: other.ID, StaffID: staff.ID, StartTime: start.Add(2 * time.Hour),
		EndTime: start.Add(3 * time.Hour), Status: domain.StatusConfirmed})

	service := bookings.NewService(store.Bookings(), store.Menus(), store.Members(), logger.Discard())
	router := mux.NewRouter()
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/members/{memberId}/bookings", NewHandler(service, logger.Discard()).Handle).Methods(http.MethodGet)
	return router, member
}

func get(router *mux.Router, path string, callerID string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set(middleware.UserIDHeader, callerID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_DefaultsToConfirmedSortedByStart(t *testing.T) {
	router, member := setup(t)

	w := get(router, "/members/1/bookings", "1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp []models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, member.ID, resp[0].MemberID)
	assert.True(t, resp[0].StartTime < resp[1].StartTime)
	for _, b := range resp {
		assert.Equal(t, string(domain.StatusConfirmed), b.Status)
	}
}

func TestHandle_StatusFilter(t *testing.T) {
	router, _ := setup(t)

	w := get(router, "/members/1/bookings?status=all", "1")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	w = get(router, "/members/1/bookings?status=cancelled", "1")
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled []models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Len(t, cancelled, 1)

	w = get(router, "/members/1/bookings?status=pending", "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandle_OtherMember(t *testing.T) {
	router, _ := setup(t)

	assert.Equal(t, http.StatusForbidden, get(router, "/members/2/bookings", "1").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/members/1/bookings", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/members/x/bookings", "1").Code)
}
