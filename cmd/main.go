package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_booking"
	getMemberBookingsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_member_bookings"
	getPrepaidTransactionsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_prepaid_transactions"
	getServiceMenusHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_service_menus"
	getUnreadCountHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_unread_count"
	sendMemberMessageHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/send_member_message"
	sendRemindersHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/send_reminders"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/config"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/cache/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/events"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/line"
	bookingsService "github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
	chatService "github.com/m04kA/SMC-StudioBooking/internal/service/chat"
	shiftsService "github.com/m04kA/SMC-StudioBooking/internal/service/shifts"
	cancelBookingUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots"
	sendRemindersUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/send_reminders"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

type availabilityCache interface {
	getAvailableSlotsUC.Cache
	createBookingUC.AvailabilityCache
}

type eventPublisher interface {
	createBookingUC.EventPublisher
	cancelBookingUC.EventPublisher
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-StudioBooking...")
	log.Info("Configuration loaded from config.toml")

	loc, err := cfg.Studio.Location()
	if err != nil {
		log.Fatal("Invalid studio timezone %q: %v", cfg.Studio.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var dbCollector dbmetrics.Collector
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbCollector = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	var store *storage
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store, err = openMemory(log)
		if err != nil {
			log.Fatal("Failed to prepare in-memory storage: %v", err)
		}
	default:
		store, err = openPostgres(cfg.Database, dbCollector, stopMetricsCh, log)
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
	}
	defer store.close()

	// Кэш доступности
	var cache availabilityCache = availability.Nop{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable (addr=%s), availability cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			cache = availability.NewCache(redisClient, cfg.Studio.AvailabilityTTL())
			log.Info("Availability cache enabled (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Studio.AvailabilityTTL())
		}
		cancel()
	}

	// Публикация событий
	var publisher eventPublisher = events.Nop{}
	if cfg.RabbitMQ.Enabled {
		p, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn("RabbitMQ is unreachable, booking events disabled: %v", err)
		} else {
			defer p.Close()
			publisher = p
			log.Info("Booking events are published to exchange=%s", cfg.RabbitMQ.Exchange)
		}
	}

	// Интеграции
	lineClient := line.NewClient(
		cfg.Line.BaseURL,
		cfg.Line.ChannelAccessToken,
		time.Duration(cfg.Line.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (LINE=%s timeout=%ds)", cfg.Line.BaseURL, cfg.Line.Timeout)

	// Инициализируем сервисы
	shiftSvc := shiftsService.NewService(store.staff, log)
	bookingSvc := bookingsService.NewService(store.bookings, store.menus, store.members, log)
	chatSvc := chatService.NewService(store.members, store.chat, lineClient, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.members,
		store.menus,
		store.staff,
		store.bookings,
		shiftSvc,
		store.tx,
		cache,
		publisher,
		metricsCollector,
		createBookingUC.Settings{
			Location:          loc,
			MinNotice:         cfg.Studio.MinNotice(),
			PlanLookaheadDays: cfg.Studio.PlanLookaheadDays,
			OpenTime:          types.TimeString(cfg.Studio.OpenTime),
			CloseTime:         types.TimeString(cfg.Studio.CloseTime),
			SlotStepMinutes:   cfg.Studio.SlotStepMinutes,
		},
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		store.bookings,
		store.members,
		store.tx,
		cache,
		publisher,
		metricsCollector,
		cancelBookingUC.Settings{
			Location:  loc,
			MinNotice: cfg.Studio.MinNotice(),
		},
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.menus,
		store.staff,
		store.bookings,
		shiftSvc,
		cache,
		getAvailableSlotsUC.Settings{
			Location:        loc,
			OpenTime:        types.TimeString(cfg.Studio.OpenTime),
			CloseTime:       types.TimeString(cfg.Studio.CloseTime),
			SlotStepMinutes: cfg.Studio.SlotStepMinutes,
		},
		log,
	)

	sendRemindersUseCase := sendRemindersUC.NewUseCase(
		store.bookings,
		lineClient,
		metricsCollector,
		sendRemindersUC.Settings{
			Location:    loc,
			Concurrency: cfg.Reminders.Concurrency,
		},
		log,
	)

	// Инициализируем handlers
	getServiceMenus := getServiceMenusHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getMemberBookings := getMemberBookingsHandler.NewHandler(bookingSvc, log)
	getPrepaidTransactions := getPrepaidTransactionsHandler.NewHandler(bookingSvc, log)
	sendMemberMessage := sendMemberMessageHandler.NewHandler(chatSvc, log)
	getUnreadCount := getUnreadCountHandler.NewHandler(chatSvc, log)
	sendReminders := sendRemindersHandler.NewHandler(sendRemindersUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Metrics middleware и endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Активные меню услуг
	api.HandleFunc("/service-menus", getServiceMenus.Handle).Methods(http.MethodGet)

	// Свободные слоты на дату
	api.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// STAFF ROUTES (Authorization: Bearer <cron_secret>)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.CronAuth(cfg.Reminders.CronSecret))

	// Напоминания о завтрашних занятиях (вызывается планировщиком)
	staff.HandleFunc("/internal/cron/reminders", sendReminders.Handle).Methods(http.MethodGet)

	// --- Чат с участниками ---
	staff.HandleFunc("/members/{memberId}/messages", sendMemberMessage.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/messages/unread-count", getUnreadCount.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований участника
	protected.HandleFunc("/members/{memberId}/bookings", getMemberBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/members/{memberId}/prepaid-transactions", getPrepaidTransactions.Handle).Methods(http.MethodGet)

	if cfg.Reminders.CronSecret == "" {
		log.Warn("reminders.cron_secret is empty: staff routes are not protected")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
