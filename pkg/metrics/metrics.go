package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus коллекторов сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbOpenConns     *prometheus.GaugeVec
	dbInUseConns    *prometheus.GaugeVec
	dbIdleConns     *prometheus.GaugeVec
	dbWaitCount     *prometheus.GaugeVec

	bookingsCreated   *prometheus.CounterVec
	bookingRejections *prometheus.CounterVec
	cancellations     *prometheus.CounterVec
	prepaidMovements  *prometheus.CounterVec
	remindersSent     *prometheus.CounterVec
}

// New создает и регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry создает метрики и регистрирует их в указанном реестре
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		dbQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbIdleConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings committed by the admission engine",
			ConstLabels: constLabels,
		}, []string{"staff_selection", "prepaid"}),
		bookingRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_rejections_total",
			Help:        "Booking attempts rejected, by taxonomy code",
			ConstLabels: constLabels,
		}, []string{"code"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cancellations_total",
			Help:        "Booking cancellations by resulting status",
			ConstLabels: constLabels,
		}, []string{"status", "relief"}),
		prepaidMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "prepaid_movements_total",
			Help:        "Prepaid balance movements (amount in currency units)",
			ConstLabels: constLabels,
		}, []string{"direction"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reminders_total",
			Help:        "Reminder dispatch results",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal, m.httpRequestDuration,
		m.dbQueriesTotal, m.dbQueryDuration,
		m.dbOpenConns, m.dbInUseConns, m.dbIdleConns, m.dbWaitCount,
		m.bookingsCreated, m.bookingRejections, m.cancellations,
		m.prepaidMovements, m.remindersSent,
	)

	return m
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueriesTotal.WithLabelValues(operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет показатели connection pool
func (m *Metrics) SetDBPoolStats(db string, open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.dbOpenConns.WithLabelValues(db).Set(float64(open))
	m.dbInUseConns.WithLabelValues(db).Set(float64(inUse))
	m.dbIdleConns.WithLabelValues(db).Set(float64(idle))
	m.dbWaitCount.WithLabelValues(db).Set(float64(waitCount))
}

// BookingCreated фиксирует созданное бронирование
func (m *Metrics) BookingCreated(autoAssigned bool, prepaid bool) {
	if m == nil {
		return
	}
	selection := "requested"
	if autoAssigned {
		selection = "auto"
	}
	m.bookingsCreated.WithLabelValues(selection, strconv.FormatBool(prepaid)).Inc()
}

// BookingRejected фиксирует отказ в бронировании
func (m *Metrics) BookingRejected(code string) {
	if m == nil {
		return
	}
	m.bookingRejections.WithLabelValues(code).Inc()
}

// BookingCancelled фиксирует отмену бронирования
func (m *Metrics) BookingCancelled(status string, relief bool) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(status, strconv.FormatBool(relief)).Inc()
}

// PrepaidMoved фиксирует движение по предоплаченному балансу
func (m *Metrics) PrepaidMoved(direction string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.prepaidMovements.WithLabelValues(direction).Add(float64(amount))
}

// ReminderDispatched фиксирует результат отправки напоминания
func (m *Metrics) ReminderDispatched(result string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(result).Inc()
}
