package orders

import "time"

type Product struct {
	ID         int64
	Name       string
	PriceCents int
	ImageURL   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type User struct {
	ID       int64
	Username string
	Email    string
}

type Order struct {
	ID             string        `json:"id"`
	UserID         int64         `json:"user_id"`
	Status         Status        `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	TotalCents     int           `json:"total_cents"` // immutable setelah create
	TrackingNumber string        `json:"tracking_number,omitempty"`
	RefundReason   string        `json:"refund_reason,omitempty"`
	OrderDate      time.Time     `json:"order_date"`
	Items          []OrderItem   `json:"items,omitempty"`
}

// OrderItem tidak pernah di-mutate setelah create. product_id cuma referensi;
// product boleh dihapus belakangan karena qty+harga sudah di-snapshot.
type OrderItem struct {
	ID         int64  `json:"id"`
	OrderID    string `json:"order_id"`
	ProductID  int64  `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type Payment struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"`
	Method           string    `json:"payment_method"`
	AmountCents      int       `json:"amount_cents"` // harus == Order.TotalCents
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	TransactionID    string    `json:"transaction_id"` // unique per transaksi external
	GatewayOrderID   string    `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	GatewaySignature string    `json:"gateway_signature,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

const MethodGateway = "razorpay"

const DefaultCurrency = "INR"
