package redisx

import "time"

const (
	// Cart per session: cart:{session_id} -> JSON line list
	KeyCart = "cart:%s"

	// Cache status order: order_status:{order_id} -> {"status":"...","tracking_number":"..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing di notifier: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart        = 7 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
