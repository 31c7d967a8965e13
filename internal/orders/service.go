package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Repository dipakai Service; *Repo memenuhinya.
type Repository interface {
	CreateOrderTx(ctx context.Context, userID int64, items []CheckoutItem, totalCents int, method string, ref GatewayRef) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	SetTracking(ctx context.Context, orderID, trackingNumber string) error
	RequestRefund(ctx context.Context, orderID, reason string) error
	ProcessRefund(ctx context.Context, orderID string) error
}

// Notifier: outbound push ke buyer/ops. Gagal kirim tidak pernah
// membatalkan mutasi yang sudah commit.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order, u *User, toOps bool) error
	StatusChanged(ctx context.Context, o *Order, u *User) error
}

type Service struct {
	Repo     Repository
	Notifier Notifier
}

type CheckoutInput struct {
	UserID     int64
	Items      []CheckoutItem
	TotalCents int
	Method     string // MethodGateway atau "cash"
	Ref        GatewayRef
}

// Checkout mengubah cart yang sudah dibayar jadi Order persisted.
// Validasi dan CreateOrderTx gagal -> tidak ada state berubah; notifikasi
// setelah commit best-effort saja.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	sum := 0
	for _, it := range in.Items {
		if it.Qty <= 0 {
			return nil, fmt.Errorf("invalid qty for product %d", it.ProductID)
		}
		if it.PriceCents < 0 {
			return nil, fmt.Errorf("invalid price for product %d", it.ProductID)
		}
		sum += it.Qty * it.PriceCents
	}
	if sum != in.TotalCents {
		return nil, fmt.Errorf("total mismatch: submitted %d, lines sum to %d", in.TotalCents, sum)
	}

	o, err := s.Repo.CreateOrderTx(ctx, in.UserID, in.Items, in.TotalCents, in.Method, in.Ref)
	if err != nil {
		return nil, err
	}

	// fan-out setelah commit: ke ops lalu ke buyer, gagal cuma di-log
	full, err := s.Repo.GetOrder(ctx, o.ID)
	if err != nil {
		log.Printf("order placed notify: fetch order %s: %v", o.ID, err)
		return o, nil
	}
	u, err := s.Repo.GetUser(ctx, in.UserID)
	if err != nil {
		log.Printf("order placed notify: fetch user %d: %v", in.UserID, err)
		return o, nil
	}
	if err := s.Notifier.OrderPlaced(ctx, full, u, true); err != nil {
		log.Printf("order placed notify ops: %v", err)
	}
	if err := s.Notifier.OrderPlaced(ctx, full, u, false); err != nil {
		log.Printf("order placed notify buyer: %v", err)
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.Repo.GetOrder(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// AdminSetStatus: any -> any asal enum valid; operator perlu bisa koreksi.
// Satu attempt notifikasi ke buyer per edit, apapun hasil kirimnya.
func (s *Service) AdminSetStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.Repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o := s.notifyStatus(ctx, orderID)
	return o, nil
}

func (s *Service) AdminSetTracking(ctx context.Context, orderID, trackingNumber string) (*Order, error) {
	if err := s.Repo.SetTracking(ctx, orderID, trackingNumber); err != nil {
		return nil, err
	}
	o := s.notifyStatus(ctx, orderID)
	return o, nil
}

// notifyStatus: ambil order+user lalu satu kali StatusChanged. Semua
// kegagalan di sini di-log dan ditelan; update-nya sendiri sudah commit.
func (s *Service) notifyStatus(ctx context.Context, orderID string) *Order {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		log.Printf("status notify: fetch order %s: %v", orderID, err)
		return nil
	}
	u, err := s.Repo.GetUser(ctx, o.UserID)
	if err != nil {
		log.Printf("status notify: fetch user %d: %v", o.UserID, err)
		return o
	}
	if err := s.Notifier.StatusChanged(ctx, o, u); err != nil {
		log.Printf("status notify order %s: %v", orderID, err)
	}
	return o
}

// RequestRefund: jalur buyer, gate ketat. Hanya dari delivered, wajib
// reason, dan order harus milik buyer yang minta. Tidak ada notifikasi
// di sini; admin yang harus menindaklanjuti.
func (s *Service) RequestRefund(ctx context.Context, orderID string, userID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		// jangan bocorkan keberadaan order orang lain
		return ErrNotFound
	}
	if !CanRequestRefund(o.Status) {
		return ErrNotDelivered
	}
	return s.Repo.RequestRefund(ctx, orderID, reason)
}

// ProcessRefund: jalur admin, hanya dari refund_requested.
func (s *Service) ProcessRefund(ctx context.Context, orderID string) error {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanProcessRefund(o.Status) {
		return ErrNotRefundRequested
	}
	return s.Repo.ProcessRefund(ctx, orderID)
}
