package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"roomrental/internal/config"
	"roomrental/internal/database"
	"roomrental/internal/email"
	"roomrental/internal/kafka"
	"roomrental/internal/modules/admin"
	"roomrental/internal/repository"
)

// The worker owns the two background duties of the booking system: turning
// notification events into requester emails, and periodically pruning rows
// the API no longer needs (expired approvals, old rejections).
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	requestRepo := repository.NewRentalRequestRepository(db)
	adminService := admin.NewService(requestRepo, nil, nil)

	sender := email.NewSender(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaNotificationsTopic)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runMaintenance(ctx, adminService, requestRepo, cfg.SweepInterval, cfg.RejectedRetention)

	log.Printf("worker consuming topic %s", cfg.KafkaNotificationsTopic)
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkago.Message) error {
		var event kafka.RentalEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// A malformed message would block the partition forever; log and move on.
			log.Printf("skip malformed event at offset %d: %v", msg.Offset, err)
			return nil
		}

		if err := sender.Send(ctx, event); err != nil {
			log.Printf("send email failed: type=%s reference=%s err=%v", event.Type, event.Reference, err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}

	log.Println("worker stopped")
}

func runMaintenance(ctx context.Context, svc *admin.Service, repo *repository.RentalRequestRepository, interval, rejectedRetention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := svc.SweepExpired(ctx); err != nil {
			log.Printf("sweep expired approvals: %v", err)
		} else if n > 0 {
			log.Printf("swept %d expired approvals", n)
		}

		cutoff := time.Now().UTC().Add(-rejectedRetention)
		if n, err := repo.DeleteRejectedBefore(ctx, cutoff); err != nil {
			log.Printf("prune rejected requests: %v", err)
		} else if n > 0 {
			log.Printf("pruned %d rejected requests", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
