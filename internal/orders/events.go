package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

type PlacedItem struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type OrderPlacedPayload struct {
	OrderID    string       `json:"order_id"`
	UserID     int64        `json:"user_id"`
	Items      []PlacedItem `json:"items"`
	TotalCents int          `json:"total_cents"`
	// ToOps: event yang sama dikirim dua kali, sekali utk ops sekali utk buyer.
	ToOps bool `json:"to_ops,omitempty"`
}

type OrderStatusChangedPayload struct {
	OrderID        string `json:"order_id"`
	Status         Status `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}
