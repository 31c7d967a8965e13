package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
)

// Storage menyimpan seluruh line list per session. Analog localStorage di
// browser: restore gagal parse = cart kosong, bukan error.
type Storage interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type RedisStorage struct {
	RDB *redis.Client
}

func (s *RedisStorage) Load(ctx context.Context, sessionID string) (*Cart, error) {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	b, err := s.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		// data korup -> anggap cart kosong
		log.Printf("cart restore session=%s: %v", sessionID, err)
		return &Cart{}, nil
	}
	return &c, nil
}

func (s *RedisStorage) Save(ctx context.Context, sessionID string, c *Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	return s.RDB.Set(ctx, key, b, redisx.TTLCart).Err()
}

func (s *RedisStorage) Clear(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	return s.RDB.Del(ctx, key).Err()
}
