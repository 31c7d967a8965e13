package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
)

// Lookup: subset repo yang dibutuhkan worker utk resolve order + user.
type Lookup interface {
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
	GetUser(ctx context.Context, userID int64) (*orders.User, error)
}

// Service: handler consumer. Satu handler utk dua topic; dispatch by
// event_type. Gagal kirim email di-log lalu tetap commit offset -- mutasi
// ordernya sudah lama commit, retry tanpa batas tidak ada gunanya.
type Service struct {
	Repo        Lookup
	Redis       *redis.Client
	Mailer      orders.Notifier
	ServiceName string
}

func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		return s.handlePlaced(ctx, env)
	case orders.EventOrderStatusChanged:
		return s.handleStatusChanged(ctx, env)
	default:
		return nil // ignore
	}
}

func (s *Service) handlePlaced(ctx context.Context, env orders.Envelope) error {
	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}
	o, u, err := s.resolve(ctx, p.OrderID)
	if err != nil {
		log.Printf("notify placed order=%s: %v", p.OrderID, err)
		return nil
	}
	if err := s.Mailer.OrderPlaced(ctx, o, u, p.ToOps); err != nil {
		log.Printf("mail placed order=%s to_ops=%v: %v", p.OrderID, p.ToOps, err)
	}
	return nil
}

func (s *Service) handleStatusChanged(ctx context.Context, env orders.Envelope) error {
	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	o, u, err := s.resolve(ctx, p.OrderID)
	if err != nil {
		log.Printf("notify status order=%s: %v", p.OrderID, err)
		return nil
	}
	if err := s.Mailer.StatusChanged(ctx, o, u); err != nil {
		log.Printf("mail status order=%s: %v", p.OrderID, err)
	}
	return nil
}

// resolve re-query order + user; payload sengaja ringan, state terkini
// selalu dari DB.
func (s *Service) resolve(ctx context.Context, orderID string) (*orders.Order, *orders.User, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.Repo.GetUser(ctx, o.UserID)
	if err != nil {
		return nil, nil, err
	}
	return o, u, nil
}
