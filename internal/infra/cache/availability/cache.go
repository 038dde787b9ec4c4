// Package availability кэширует рассчитанную доступность слотов в Redis.
// Инвалидация по дате: каждый ключ содержит версию даты, INCR версии делает
// все ранее записанные ключи этой даты недостижимыми (они истекают по TTL).
package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

const keyPrefix = "availability"

var (
	// ErrMiss возвращается, если значения нет в кэше
	ErrMiss = errors.New("availability.cache: miss")

	// ErrCache возвращается при ошибках Redis
	ErrCache = errors.New("availability.cache: redis error")
)

// Key параметры запроса доступности
type Key struct {
	Date    time.Time
	MenuID  int64
	StaffID *int64
}

// Snapshot закэшированный результат расчёта
type Snapshot struct {
	Slots      []domain.AvailableSlot       `json:"slots"`
	StaffSlots map[int64][]types.TimeString `json:"staffSlots"`
}

// Cache кэш доступности на Redis
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache создает кэш доступности
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(date time.Time) string {
	return fmt.Sprintf("%s:ver:%s", keyPrefix, date.Format(domain.DateFormat))
}

func dataKey(key Key, version int64) string {
	staff := "all"
	if key.StaffID != nil {
		staff = fmt.Sprintf("%d", *key.StaffID)
	}
	return fmt.Sprintf("%s:%s:v%d:menu:%d:staff:%s",
		keyPrefix, key.Date.Format(domain.DateFormat), version, key.MenuID, staff)
}

func (c *Cache) version(ctx context.Context, date time.Time) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get version: %w", ErrCache, err)
	}
	return v, nil
}

// Get возвращает закэшированный результат или ErrMiss вместе с версией даты,
// под которой его искали. Результат, рассчитанный после промаха, сохраняется
// через Set с этой же версией.
func (c *Cache) Get(ctx context.Context, key Key) (*Snapshot, int64, error) {
	version, err := c.version(ctx, key.Date)
	if err != nil {
		return nil, 0, err
	}

	raw, err := c.client.Get(ctx, dataKey(key, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, ErrMiss
	}
	if err != nil {
		return nil, version, fmt.Errorf("%w: get: %w", ErrCache, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, version, fmt.Errorf("%w: decode: %w", ErrCache, err)
	}
	return &snapshot, version, nil
}

// Set сохраняет результат расчёта под версией, прочитанной до расчёта.
// Если дату инвалидировали, пока шёл расчёт, запись попадает в устаревшую
// версию и читателям не видна.
func (c *Cache) Set(ctx context.Context, key Key, version int64, snapshot *Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrCache, err)
	}

	if err := c.client.Set(ctx, dataKey(key, version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrCache, err)
	}
	return nil
}

// Invalidate сбрасывает все закэшированные результаты на дату
func (c *Cache) Invalidate(ctx context.Context, date time.Time) error {
	if err := c.client.Incr(ctx, versionKey(date)).Err(); err != nil {
		return fmt.Errorf("%w: incr version: %w", ErrCache, err)
	}
	return nil
}

// Nop кэш-заглушка, когда Redis выключен
type Nop struct{}

// Get всегда возвращает ErrMiss
func (Nop) Get(context.Context, Key) (*Snapshot, int64, error) { return nil, 0, ErrMiss }

// Set ничего не делает
func (Nop) Set(context.Context, Key, int64, *Snapshot) error { return nil }

// Invalidate ничего не делает
func (Nop) Invalidate(context.Context, time.Time) error { return nil }
