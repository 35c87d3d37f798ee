package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgcaparas/intellipark/config"
	"github.com/rgcaparas/intellipark/internal/cache"
	"github.com/rgcaparas/intellipark/internal/email"
	"github.com/rgcaparas/intellipark/internal/kafka"
	"github.com/rgcaparas/intellipark/internal/payment/xendit"
	"github.com/rgcaparas/intellipark/internal/repository"
	"github.com/rgcaparas/intellipark/internal/service/parking"
	"github.com/rgcaparas/intellipark/monitoring"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	pendingTTL := time.Duration(cfg.Booking.PendingTTLMinutes) * time.Minute
	staging := cache.NewRedisCache(cfg.Redis, pendingTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	slotRepo := repository.NewSlotRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	parkingService := parking.NewParkingService(
		slotRepo,
		reservationRepo,
		ticketRepo,
		staging,
		xendit.NewClient(cfg.Xendit.BaseURL, cfg.Xendit.SecretKey),
		producer,
		cfg.Kafka.ReservationsTopic,
		cfg.Xendit,
		time.Duration(cfg.Booking.SlotLockTTLSeconds)*time.Second,
		pendingTTL,
		parking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ReservationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := parkingService.ExpirePendingReservations(ctx)
			if err != nil {
				log.Printf("expire reservations error: %v", err)
				continue
			}
			if len(expired) > 0 {
				monitoring.RecordExpiredReservations(len(expired))
				log.Printf("expired %d pending reservations", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
