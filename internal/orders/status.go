package orders

import "errors"

type Status string

const (
	StatusPending         Status = "pending"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusRefundRequested Status = "refund_requested"
	StatusRefunded        Status = "refunded"
	StatusCancelled       Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var validStatus = map[Status]bool{
	StatusPending:         true,
	StatusProcessing:      true,
	StatusShipped:         true,
	StatusDelivered:       true,
	StatusRefundRequested: true,
	StatusRefunded:        true,
	StatusCancelled:       true,
}

// ValidStatus: admin boleh set status apapun (koreksi operasional),
// asal nilainya enum yang dikenal.
func ValidStatus(s Status) bool { return validStatus[s] }

// Jalur buyer & refund di-gate ketat, beda dengan jalur admin:
//   delivered -> refund_requested  (buyer, wajib reason)
//   refund_requested -> refunded   (admin process refund)

var (
	ErrNotFound           = errors.New("order not found")
	ErrStaleCart          = errors.New("some products in your cart are no longer available")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrNotDelivered       = errors.New("refund can only be requested for delivered orders")
	ErrEmptyReason        = errors.New("refund reason is required")
	ErrNotRefundRequested = errors.New("refund can only be processed for refund requested orders")
)

// CanRequestRefund: precondition jalur buyer.
func CanRequestRefund(current Status) bool { return current == StatusDelivered }

// CanProcessRefund: precondition jalur admin refund.
func CanProcessRefund(current Status) bool { return current == StatusRefundRequested }
