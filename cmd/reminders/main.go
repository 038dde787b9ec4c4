package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-StudioBooking/internal/config"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/line"
	sendRemindersUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/send_reminders"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

// Разовая рассылка напоминаний о завтрашних занятиях, запускается планировщиком
func main() {
	configPath := flag.String("config", "config.toml", "путь к файлу конфигурации")
	timeout := flag.Duration("timeout", 5*time.Minute, "максимальное время рассылки")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	loc, err := cfg.Studio.Location()
	if err != nil {
		log.Fatal("Invalid studio timezone %q: %v", cfg.Studio.Timezone, err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	lineClient := line.NewClient(
		cfg.Line.BaseURL,
		cfg.Line.ChannelAccessToken,
		time.Duration(cfg.Line.Timeout)*time.Second,
		log,
	)

	useCase := sendRemindersUC.NewUseCase(
		bookingRepo.NewRepository(dbmetrics.Wrap(db, nil)),
		lineClient,
		nil,
		sendRemindersUC.Settings{
			Location:    loc,
			Concurrency: cfg.Reminders.Concurrency,
		},
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := useCase.Execute(ctx)
	if err != nil {
		log.Fatal("Reminders failed: %v", err)
	}

	log.Info("Reminders done: date=%s, processed=%d, sent=%d",
		result.Date.Format(domain.DateFormat), result.Processed, result.Sent)
}
