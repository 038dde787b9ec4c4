package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var (
	// ErrReadConfig возвращается, если файл конфигурации не удалось прочитать
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig возвращается при некорректных значениях конфигурации
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Studio    StudioConfig    `toml:"studio"`
	Redis     RedisConfig     `toml:"redis"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
	Line      LineConfig      `toml:"line"`
	Reminders RemindersConfig `toml:"reminders"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к БД
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL возвращает строку подключения в формате URL (для golang-migrate)
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// StudioConfig бизнес-настройки студии
type StudioConfig struct {
	Timezone           string         `toml:"timezone"`
	OpenTime           string         `toml:"open_time"`
	CloseTime          string         `toml:"close_time"`
	SlotStepMinutes    int            `toml:"slot_step_minutes"`
	MinNoticeHours     int            `toml:"min_notice_hours"`
	PlanLookaheadDays  map[string]int `toml:"plan_lookahead_days"`
	AvailabilityTTLSec int            `toml:"availability_ttl_seconds"`
}

// Location возвращает часовой пояс студии
func (s StudioConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// MinNotice возвращает минимальное время до начала бронирования
func (s StudioConfig) MinNotice() time.Duration {
	return time.Duration(s.MinNoticeHours) * time.Hour
}

// AvailabilityTTL время жизни кэша доступности
func (s StudioConfig) AvailabilityTTL() time.Duration {
	return time.Duration(s.AvailabilityTTLSec) * time.Second
}

// RedisConfig настройки кэша доступности
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig настройки публикации событий бронирований
type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// LineConfig настройки LINE Messaging API
type LineConfig struct {
	BaseURL            string `toml:"base_url"`
	ChannelAccessToken string `toml:"channel_access_token"`
	Timeout            int    `toml:"timeout"`
}

// RemindersConfig настройки рассылки напоминаний
type RemindersConfig struct {
	CronSecret  string `toml:"cron_secret"`
	Concurrency int    `toml:"concurrency"`
}

// Load загружает конфигурацию из toml файла.
// Перед чтением подгружается .env (если есть), секреты переопределяются переменными окружения
func Load(path string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse разбирает конфигурацию из строки (используется в тестах и утилитах)
func Parse(data string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "studio_booking",
		},
		Studio: StudioConfig{
			Timezone:           "Asia/Tokyo",
			OpenTime:           "10:00",
			CloseTime:          "21:00",
			SlotStepMinutes:    15,
			MinNoticeHours:     24,
			AvailabilityTTLSec: 60,
		},
		RabbitMQ: RabbitMQConfig{Exchange: "studio.bookings"},
		Line: LineConfig{
			BaseURL: "https://api.line.me",
			Timeout: 10,
		},
		Reminders: RemindersConfig{Concurrency: 4},
	}
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"DB_PASSWORD", &cfg.Database.Password},
		{"LINE_CHANNEL_ACCESS_TOKEN", &cfg.Line.ChannelAccessToken},
		{"REDIS_PASSWORD", &cfg.Redis.Password},
		{"RABBITMQ_URL", &cfg.RabbitMQ.URL},
		{"CRON_SECRET", &cfg.Reminders.CronSecret},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && strings.TrimSpace(v) != "" {
			*o.target = v
		}
	}
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if _, err := c.Studio.Location(); err != nil {
		return fmt.Errorf("%w: studio.timezone: %v", ErrInvalidConfig, err)
	}
	if c.Studio.SlotStepMinutes <= 0 {
		return fmt.Errorf("%w: studio.slot_step_minutes must be positive", ErrInvalidConfig)
	}
	if c.Studio.MinNoticeHours < 0 {
		return fmt.Errorf("%w: studio.min_notice_hours must not be negative", ErrInvalidConfig)
	}
	for plan, days := range c.Studio.PlanLookaheadDays {
		if days < 0 {
			return fmt.Errorf("%w: studio.plan_lookahead_days.%s must not be negative", ErrInvalidConfig, plan)
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalidConfig)
	}
	return nil
}
