package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
)

// EventNotifier: implementasi orders.Notifier di sisi API. Publish envelope
// ke kafka lewat producer async; pengiriman email-nya dikerjakan cmd/notifier.
type EventNotifier struct {
	Placed      *kafkax.Producer // topic order.placed
	Status      *kafkax.Producer // topic order.status.changed
	ServiceName string
}

func (n *EventNotifier) OrderPlaced(ctx context.Context, o *orders.Order, u *orders.User, toOps bool) error {
	payload := orders.OrderPlacedPayload{
		OrderID:    o.ID,
		UserID:     u.ID,
		TotalCents: o.TotalCents,
		ToOps:      toOps,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, orders.PlacedItem{
			ProductID: it.ProductID, Qty: it.Qty, PriceCents: it.PriceCents,
		})
	}
	n.publish(n.Placed, orders.EventOrderPlaced, o.ID, kafkax.MustMarshal(payload))
	return nil
}

func (n *EventNotifier) StatusChanged(ctx context.Context, o *orders.Order, u *orders.User) error {
	payload := orders.OrderStatusChangedPayload{
		OrderID:        o.ID,
		Status:         o.Status,
		TrackingNumber: o.TrackingNumber,
	}
	n.publish(n.Status, orders.EventOrderStatusChanged, o.ID, kafkax.MustMarshal(payload))
	return nil
}

func (n *EventNotifier) publish(p *kafkax.Producer, eventType, orderID string, payload []byte) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      n.ServiceName,
		CorrelationID: orderID,
		Payload:       payload,
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
