package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront-orders.git/internal/config"
	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/notify"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/postgres"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Repo:  &orders.Repo{DB: db},
		Redis: rdb,
		Mailer: &notify.Mailer{
			Addr:     cfg.SMTPAddr,
			From:     cfg.MailFrom,
			OpsEmail: cfg.OpsEmail,
		},
		ServiceName: cfg.ServiceName + "-notifier",
	}

	// Satu consumer per topic, handler sama (dispatch by event_type)
	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	cPlaced := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPlaced, workers)
	cStatus := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderStatusChanged, workers)

	for _, c := range []*kafkax.Consumer{cPlaced, cStatus} {
		c := c
		go func() {
			if err := c.Start(ctx, svc.HandleEvent); err != nil {
				log.Printf("consumer exit: %v", err)
				cancel()
			}
		}()
	}
	log.Printf("notifier consumers started: group=%s workers=%d", group, workers)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
