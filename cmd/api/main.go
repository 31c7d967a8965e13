package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/config"
	"github.com/ariefcatur/go-storefront-orders.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/notify"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payment"
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
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers: order.placed & order.status.changed
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)

	// Repo, service, gateway client
	repo := &orders.Repo{DB: db}
	svc := &orders.Service{
		Repo: repo,
		Notifier: &notify.EventNotifier{
			Placed:      pPlaced,
			Status:      pStatus,
			ServiceName: cfg.ServiceName,
		},
	}
	gateway := &payment.Client{
		KeyID:     cfg.GatewayKeyID,
		KeySecret: cfg.GatewayKeySecret,
		BaseURL:   cfg.GatewayBaseURL,
	}

	// Router & handlers
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Service:       svc,
		Payment:       gateway,
		Carts:         &cart.RedisStorage{RDB: rdb},
		Redis:         rdb,
		WebhookSecret: cfg.GatewayWebhookSecret,
	}
	oh.Register(router)
	ah := &httpx.AdminHandler{Service: svc, Redis: rdb, Secret: cfg.AdminSecret}
	ah.Register(router)
	sh := &httpx.StreamHandler{Orders: svc, PollInterval: cfg.StatusPollInterval}
	sh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // tutup inbox -> flush & close writer
	pStatus.Close()
	cancel() // stop producer loop
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
}
