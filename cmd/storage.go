package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-StudioBooking/internal/config"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	chatRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/chat"
	memberRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/member"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	menuRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/servicemenu"
	staffRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/staff"
	bookingsService "github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
	chatService "github.com/m04kA/SMC-StudioBooking/internal/service/chat"
	shiftsService "github.com/m04kA/SMC-StudioBooking/internal/service/shifts"
	cancelBookingUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots"
	sendRemindersUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/send_reminders"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

type memberStore interface {
	createBookingUC.MemberRepository
	cancelBookingUC.MemberRepository
	chatService.MemberRepository
	bookingsService.MemberRepository
}

type bookingStore interface {
	createBookingUC.BookingRepository
	cancelBookingUC.BookingRepository
	getAvailableSlotsUC.BookingRepository
	sendRemindersUC.BookingRepository
	bookingsService.BookingRepository
}

type staffStore interface {
	createBookingUC.StaffRepository
	getAvailableSlotsUC.StaffRepository
	shiftsService.StaffRepository
}

type menuStore interface {
	createBookingUC.MenuRepository
	bookingsService.MenuRepository
}

// storage набор репозиториев выбранного драйвера
type storage struct {
	members  memberStore
	bookings bookingStore
	staff    staffStore
	menus    menuStore
	chat     chatService.ChatRepository
	tx       createBookingUC.TransactionManager
	close    func() error
}

// openPostgres подключается к Postgres. collector может быть nil
func openPostgres(cfg config.DatabaseConfig, collector dbmetrics.Collector, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	var wrapped *dbmetrics.DB
	if collector != nil {
		wrapped = dbmetrics.WrapWithDefault(db, collector, cfg.DBName, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrapped = dbmetrics.Wrap(db, nil)
	}

	return &storage{
		members:  memberRepo.NewRepository(wrapped),
		bookings: bookingRepo.NewRepository(wrapped),
		staff:    staffRepo.NewRepository(wrapped),
		menus:    menuRepo.NewRepository(wrapped),
		chat:     chatRepo.NewRepository(wrapped),
		tx:       txmanager.NewTransactionManager(wrapped),
		close:    db.Close,
	}, nil
}

// openMemory создаёт хранилище в памяти с демонстрационными данными
func openMemory(log *logger.Logger) (*storage, error) {
	store := memory.NewStore()
	if err := seedDemo(store); err != nil {
		return nil, fmt.Errorf("seed demo data: %w", err)
	}
	log.Warn("Using in-memory storage: data is lost on restart")

	return &storage{
		members:  store.Members(),
		bookings: store.Bookings(),
		staff:    store.Staff(),
		menus:    store.Menus(),
		chat:     store.Chat(),
		tx:       store.TxManager(),
		close:    func() error { return nil },
	}, nil
}

func seedDemo(store *memory.Store) error {
	lineID := "U-demo"
	for _, m := range []domain.Member{
		{ID: 1, Name: "Demo Standard", Plan: domain.PlanStandard, ContractedSessions: 4, MainTrainerID: ptr.Ptr(int64(1)), LineUserID: &lineID},
		{ID: 2, Name: "Demo Premium", Plan: domain.PlanPremium, ContractedSessions: 8, MainTrainerID: ptr.Ptr(int64(2))},
		{ID: 3, Name: "Demo Prepaid", Plan: domain.PlanDigitalPrepaid, ContractedSessions: 4, PrepaidBalance: 30000},
	} {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("member id=%d: %w", m.ID, err)
		}
		store.AddMember(m)
	}

	store.AddMenu(domain.ServiceMenu{ID: 1, Name: "Personal 60", DurationMinutes: 60, Price: 8000, IsActive: true})
	store.AddMenu(domain.ServiceMenu{ID: 2, Name: "Personal 90", DurationMinutes: 90, Price: 11000, IsActive: true})

	for _, st := range []domain.Staff{
		{ID: 1, Name: "Trainer A", UnitPrice: 6000, IsActive: true},
		{ID: 2, Name: "Trainer B", UnitPrice: 6500, IsActive: true},
	} {
		store.AddStaff(st)
		for day := time.Monday; day <= time.Saturday; day++ {
			store.AddShift(domain.Shift{
				StaffID:   st.ID,
				DayOfWeek: day,
				StartTime: types.TimeString("10:00"),
				EndTime:   types.TimeString("21:00"),
			})
		}
	}
	return nil
}
