package bookings

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
)

// Service сервис чтения бронирований и каталога услуг
type Service struct {
	bookingRepo BookingRepository
	menuRepo    MenuRepository
	memberRepo  MemberRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	menuRepo MenuRepository,
	memberRepo MemberRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		menuRepo:    menuRepo,
		memberRepo:  memberRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Участник видит только свои бронирования
func (s *Service) GetByID(ctx context.Context, id int64, memberID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for member=%d", id, memberID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.MemberID != memberID {
		s.logger.Warn("GetByID: member=%d requested booking id=%d of member=%d", memberID, id, booking.MemberID)
		return nil, ErrBookingNotFound
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetMemberBookings получает бронирования участника, отсортированные по времени начала
// По умолчанию возвращаются только подтверждённые
func (s *Service) GetMemberBookings(ctx context.Context, req *models.GetMemberBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetMemberBookings: fetching bookings for member=%d, status=%v", req.MemberID, req.Status)

	if req.CallerID != req.MemberID {
		s.logger.Warn("GetMemberBookings: access denied for caller=%d to member=%d", req.CallerID, req.MemberID)
		return nil, ErrAccessDenied
	}

	status, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("GetMemberBookings: invalid status=%v for member=%d", req.Status, req.MemberID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByMemberID(ctx, req.MemberID, status)
	if err != nil {
		s.logger.Error("GetMemberBookings: repository error for member=%d: %v", req.MemberID, err)
		return nil, fmt.Errorf("%w: GetMemberBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetMemberBookings: successfully fetched %d bookings for member=%d", len(bookings), req.MemberID)
	return models.FromDomainBookingList(bookings), nil
}

// ListServiceMenus возвращает активные меню, отсортированные по длительности
func (s *Service) ListServiceMenus(ctx context.Context) (*models.ServiceMenuListResponse, error) {
	menus, err := s.menuRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("ListServiceMenus: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListServiceMenus - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainMenuList(menus), nil
}

// GetPrepaidTransactions возвращает журнал движения предоплаченного баланса участника (сначала новые)
func (s *Service) GetPrepaidTransactions(ctx context.Context, callerID, memberID int64) (*models.PrepaidTransactionListResponse, error) {
	if callerID != memberID {
		s.logger.Warn("GetPrepaidTransactions: access denied for caller=%d to member=%d", callerID, memberID)
		return nil, ErrAccessDenied
	}

	txs, err := s.memberRepo.GetTransactions(ctx, memberID)
	if err != nil {
		s.logger.Error("GetPrepaidTransactions: repository error for member=%d: %v", memberID, err)
		return nil, fmt.Errorf("%w: GetPrepaidTransactions - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTransactionList(txs), nil
}
