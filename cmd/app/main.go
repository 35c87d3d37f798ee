package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgcaparas/intellipark/config"
	"github.com/rgcaparas/intellipark/internal/bootstrap"
	"github.com/rgcaparas/intellipark/internal/cache"
	"github.com/rgcaparas/intellipark/internal/kafka"
	"github.com/rgcaparas/intellipark/internal/payment/xendit"
	"github.com/rgcaparas/intellipark/internal/repository"
	"github.com/rgcaparas/intellipark/internal/service/parking"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	pendingTTL := time.Duration(cfg.Booking.PendingTTLMinutes) * time.Minute
	staging := cache.NewRedisCache(cfg.Redis, pendingTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	invoiceClient := xendit.NewClient(cfg.Xendit.BaseURL, cfg.Xendit.SecretKey)

	slotRepo := repository.NewSlotRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	parkingService := parking.NewParkingService(
		slotRepo,
		reservationRepo,
		ticketRepo,
		staging,
		invoiceClient,
		producer,
		cfg.Kafka.ReservationsTopic,
		cfg.Xendit,
		time.Duration(cfg.Booking.SlotLockTTLSeconds)*time.Second,
		pendingTTL,
		parking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, parkingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
