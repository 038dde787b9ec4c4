// Package events публикует события жизненного цикла бронирований в RabbitMQ
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Routing keys
const (
	KeyBookingCreated   = "booking.created"
	KeyBookingCancelled = "booking.cancelled"
)

// ErrPublish возвращается при ошибке публикации
var ErrPublish = errors.New("events: failed to publish")

// Channel часть *amqp.Channel, используемая издателем
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Envelope общий конверт события
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// BookingCreated событие создания бронирования
type BookingCreated struct {
	BookingID       int64     `json:"bookingId"`
	MemberID        int64     `json:"memberId"`
	StaffID         int64     `json:"staffId"`
	ServiceMenuID   *int64    `json:"serviceMenuId,omitempty"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	PaidFromPrepaid int64     `json:"paidFromPrepaid"`
}

// BookingCancelled событие отмены бронирования
type BookingCancelled struct {
	BookingID     int64     `json:"bookingId"`
	MemberID      int64     `json:"memberId"`
	StaffID       int64     `json:"staffId"`
	StartTime     time.Time `json:"startTime"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason"`
	ReliefApplied bool      `json:"reliefApplied"`
	Refunded      int64     `json:"refunded"`
}

// Publisher издатель событий в topic exchange
type Publisher struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
	now      func() time.Time
}

// NewPublisher подключается к RabbitMQ и объявляет topic exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

// NewPublisherWithChannel создает издателя поверх готового канала
func NewPublisherWithChannel(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

func (p *Publisher) publish(ctx context.Context, key string, payload interface{}) error {
	env := Envelope{
		ID:         uuid.NewString(),
		Type:       key,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPublish, key, err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Timestamp:    env.OccurredAt,
		Type:         key,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, key, err)
	}
	return nil
}

// PublishBookingCreated публикует booking.created
func (p *Publisher) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	return p.publish(ctx, KeyBookingCreated, BookingCreated{
		BookingID:       b.ID,
		MemberID:        b.MemberID,
		StaffID:         b.StaffID,
		ServiceMenuID:   b.ServiceMenuID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		PaidFromPrepaid: b.PaidFromPrepaid,
	})
}

// PublishBookingCancelled публикует booking.cancelled
func (p *Publisher) PublishBookingCancelled(ctx context.Context, b *domain.Booking, refunded int64) error {
	reason := ""
	if b.CancellationReason != nil {
		reason = string(*b.CancellationReason)
	}
	return p.publish(ctx, KeyBookingCancelled, BookingCancelled{
		BookingID:     b.ID,
		MemberID:      b.MemberID,
		StaffID:       b.StaffID,
		StartTime:     b.StartTime,
		Status:        string(b.Status),
		Reason:        reason,
		ReliefApplied: b.ReliefApplied,
		Refunded:      refunded,
	})
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop издатель-заглушка, когда RabbitMQ выключен
type Nop struct{}

// PublishBookingCreated ничего не делает
func (Nop) PublishBookingCreated(context.Context, *domain.Booking) error { return nil }

// PublishBookingCancelled ничего не делает
func (Nop) PublishBookingCancelled(context.Context, *domain.Booking, int64) error { return nil }
