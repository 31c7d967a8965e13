package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutItem = satu cart line yang disubmit ke order writer.
type CheckoutItem struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

// GatewayRef: correlation id dari callback sukses gateway. Kosong utk cash.
type GatewayRef struct {
	OrderID   string `json:"gateway_order_id"`
	PaymentID string `json:"gateway_payment_id"`
	Signature string `json:"gateway_signature"`
}

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx: validasi product ids lalu tulis Order + OrderItems + Payment
// dalam SATU transaksi. Ada product id yang hilang -> ErrStaleCart, nol row
// tertulis. Total TIDAK dihitung ulang: harga sudah di-snapshot di cart.
func (r *Repo) CreateOrderTx(ctx context.Context, userID int64, items []CheckoutItem, totalCents int, method string, ref GatewayRef) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// re-resolve semua product id ke katalog (hard gate, bukan best-effort)
	ids := make([]any, 0, len(items))
	params := ""
	for i, it := range items {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		ids = append(ids, it.ProductID)
	}
	rows, err := tx.Query(ctx, `SELECT id FROM products WHERE id IN (`+params+`)`, ids...)
	if err != nil {
		return nil, err
	}
	existing := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, it := range items {
		if !existing[it.ProductID] {
			return nil, ErrStaleCart
		}
	}

	payStatus := PaymentPending
	if method == MethodGateway {
		payStatus = PaymentPaid
	}

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        StatusPending,
		PaymentStatus: payStatus,
		TotalCents:    totalCents,
		OrderDate:     time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, payment_status, total_cents, order_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.UserID, o.Status, o.PaymentStatus, o.TotalCents, o.OrderDate)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4)`,
			o.ID, it.ProductID, it.Qty, it.PriceCents); err != nil {
			return nil, err
		}
	}

	txnID := ref.PaymentID
	if txnID == "" {
		txnID = fmt.Sprintf("cash_%d", time.Now().UnixMilli())
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO payments(id, order_id, payment_method, amount_cents, currency,
		                     status, transaction_id, gateway_order_id, gateway_payment_id, gateway_signature)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		uuid.NewString(), o.ID, method, totalCents, DefaultCurrency,
		string(payStatus), txnID, nullable(ref.OrderID), nullable(ref.PaymentID), nullable(ref.Signature))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	var tracking, reason *string
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, status, payment_status, total_cents, tracking_number, refund_reason, order_date
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.TotalCents, &tracking, &reason, &o.OrderDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if tracking != nil {
		o.TrackingNumber = *tracking
	}
	if reason != nil {
		o.RefundReason = *reason
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, qty, price_cents
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, payment_status, total_cents, tracking_number, refund_reason, order_date
		FROM orders WHERE user_id=$1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var tracking, reason *string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.TotalCents, &tracking, &reason, &o.OrderDate); err != nil {
			return nil, err
		}
		if tracking != nil {
			o.TrackingNumber = *tracking
		}
		if reason != nil {
			o.RefundReason = *reason
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) GetUser(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `SELECT id, username, email FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateStatus: jalur admin, bebas any->any (validasi enum di service).
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetTracking(ctx context.Context, orderID, trackingNumber string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET tracking_number=$2 WHERE id=$1`, orderID, trackingNumber)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RequestRefund: guard status lama di WHERE, biar request kedua pada order
// yang sama kalah tanpa perlu locking.
func (r *Repo) RequestRefund(ctx context.Context, orderID, reason string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, refund_reason=$3
		WHERE id=$1 AND status=$4`,
		orderID, StatusRefundRequested, reason, StatusDelivered)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotDelivered
	}
	return nil
}

// ProcessRefund: sama, refund dobel tidak mungkin commit dua kali.
func (r *Repo) ProcessRefund(ctx context.Context, orderID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2
		WHERE id=$1 AND status=$3`,
		orderID, StatusRefunded, StatusRefundRequested)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotRefundRequested
	}
	return nil
}
