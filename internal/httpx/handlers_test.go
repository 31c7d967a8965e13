package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
)

type stubService struct {
	checkoutFunc      func(ctx context.Context, in orders.CheckoutInput) (*orders.Order, error)
	getOrderFunc      func(ctx context.Context, orderID string) (*orders.Order, error)
	listOrdersFunc    func(ctx context.Context, userID int64) ([]orders.Order, error)
	requestRefundFunc func(ctx context.Context, orderID string, userID int64, reason string) error
	setStatusFunc     func(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error)
	setTrackingFunc   func(ctx context.Context, orderID, tracking string) (*orders.Order, error)
	processRefundFunc func(ctx context.Context, orderID string) error
}

func (s *stubService) Checkout(ctx context.Context, in orders.CheckoutInput) (*orders.Order, error) {
	return s.checkoutFunc(ctx, in)
}
func (s *stubService) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.getOrderFunc(ctx, orderID)
}
func (s *stubService) ListOrders(ctx context.Context, userID int64) ([]orders.Order, error) {
	return s.listOrdersFunc(ctx, userID)
}
func (s *stubService) RequestRefund(ctx context.Context, orderID string, userID int64, reason string) error {
	return s.requestRefundFunc(ctx, orderID, userID, reason)
}
func (s *stubService) AdminSetStatus(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error) {
	return s.setStatusFunc(ctx, orderID, status)
}
func (s *stubService) AdminSetTracking(ctx context.Context, orderID, tracking string) (*orders.Order, error) {
	return s.setTrackingFunc(ctx, orderID, tracking)
}
func (s *stubService) ProcessRefund(ctx context.Context, orderID string) error {
	return s.processRefundFunc(ctx, orderID)
}

type memStorage struct {
	m map[string]*cart.Cart
}

func newMemStorage() *memStorage { return &memStorage{m: map[string]*cart.Cart{}} }

func (s *memStorage) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if c, ok := s.m[sessionID]; ok {
		cp := *c
		return &cp, nil
	}
	return &cart.Cart{}, nil
}
func (s *memStorage) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	cp := *c
	s.m[sessionID] = &cp
	return nil
}
func (s *memStorage) Clear(ctx context.Context, sessionID string) error {
	delete(s.m, sessionID)
	return nil
}

// redis di test menunjuk ke port mati; semua op cache best-effort dan
// errornya memang ditelan handler
func newTestOrdersHandler(svc OrderService, store cart.Storage) (*OrdersHandler, *chi.Mux) {
	h := &OrdersHandler{
		Service: svc,
		Carts:   store,
		Redis:   redisx.New("127.0.0.1:1"),
	}
	r := NewRouter()
	h.Register(r)
	return h, r
}

func doJSON(r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutHandler(t *testing.T) {
	placed := &orders.Order{ID: "ord-1", UserID: 7, Status: orders.StatusPending, TotalCents: 9000}

	t.Run("success_clears_cart_session", func(t *testing.T) {
		store := newMemStorage()
		_ = store.Save(context.Background(), "sess-1", &cart.Cart{Lines: []cart.Line{{ProductID: 5, Qty: 3, PriceCents: 3000}}})
		svc := &stubService{
			checkoutFunc: func(ctx context.Context, in orders.CheckoutInput) (*orders.Order, error) {
				assert.Equal(t, int64(7), in.UserID)
				assert.Equal(t, orders.MethodGateway, in.Method)
				return placed, nil
			},
		}
		_, r := newTestOrdersHandler(svc, store)

		rec := doJSON(r, "POST", "/checkout", map[string]any{
			"user_id":     7,
			"session_id":  "sess-1",
			"items":       []map[string]any{{"product_id": 5, "qty": 3, "price_cents": 3000}},
			"total_cents": 9000,
		}, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		c, _ := store.Load(context.Background(), "sess-1")
		assert.Empty(t, c.Lines, "cart session harus bersih setelah order jadi")
	})

	t.Run("stale_cart_conflict", func(t *testing.T) {
		svc := &stubService{
			checkoutFunc: func(ctx context.Context, in orders.CheckoutInput) (*orders.Order, error) {
				return nil, orders.ErrStaleCart
			},
		}
		_, r := newTestOrdersHandler(svc, newMemStorage())

		rec := doJSON(r, "POST", "/checkout", map[string]any{
			"user_id":     7,
			"items":       []map[string]any{{"product_id": 9, "qty": 1, "price_cents": 500}},
			"total_cents": 500,
		}, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "no longer available")
	})

	t.Run("bad_signature_rejected_before_service", func(t *testing.T) {
		called := false
		svc := &stubService{
			checkoutFunc: func(ctx context.Context, in orders.CheckoutInput) (*orders.Order, error) {
				called = true
				return placed, nil
			},
		}
		h, r := newTestOrdersHandler(svc, newMemStorage())
		h.WebhookSecret = "whsec"

		rec := doJSON(r, "POST", "/checkout", map[string]any{
			"user_id":            7,
			"items":              []map[string]any{{"product_id": 5, "qty": 1, "price_cents": 3000}},
			"total_cents":        3000,
			"gateway_order_id":   "order_abc",
			"gateway_payment_id": "pay_xyz",
			"gateway_signature":  "bogus",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, called, "signature gagal -> order writer tidak boleh jalan")
	})

	t.Run("missing_fields", func(t *testing.T) {
		_, r := newTestOrdersHandler(&stubService{}, newMemStorage())
		rec := doJSON(r, "POST", "/checkout", map[string]any{"user_id": 7}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRequestRefundHandler(t *testing.T) {
	tests := []struct {
		name     string
		header   map[string]string
		svcErr   error
		wantCode int
	}{
		{"no_identity", nil, nil, http.StatusUnauthorized},
		{"not_found", map[string]string{"X-User-ID": "7"}, orders.ErrNotFound, http.StatusNotFound},
		{"not_delivered", map[string]string{"X-User-ID": "7"}, orders.ErrNotDelivered, http.StatusBadRequest},
		{"empty_reason", map[string]string{"X-User-ID": "7"}, orders.ErrEmptyReason, http.StatusBadRequest},
		{"ok", map[string]string{"X-User-ID": "7"}, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				requestRefundFunc: func(ctx context.Context, orderID string, userID int64, reason string) error {
					return tt.svcErr
				},
			}
			_, r := newTestOrdersHandler(svc, newMemStorage())
			rec := doJSON(r, "POST", "/orders/ord-1/refund-request", map[string]string{"reason": "wrong size"}, tt.header)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestCartEndpoints(t *testing.T) {
	_, r := newTestOrdersHandler(&stubService{}, newMemStorage())

	add := func(size string, qty int) *httptest.ResponseRecorder {
		return doJSON(r, "POST", "/cart/sess-9/items", map[string]any{
			"product": map[string]any{"id": 5, "name": "Gym Shirt", "price_cents": 3000},
			"qty":     qty, "size": size, "color": "red",
		}, nil)
	}

	rec := add("M", 2)
	assert.Equal(t, http.StatusOK, rec.Code)

	// merge ke line yang sama
	rec = add("M", 1)
	var resp CartResp
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Len(t, resp.Lines, 1)
	assert.Equal(t, 3, resp.Lines[0].Qty)
	assert.Equal(t, 9000, resp.TotalCents)

	// varian lain jadi line terpisah
	rec = add("L", 1)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Len(t, resp.Lines, 2)

	// update qty pakai key lengkap
	rec = doJSON(r, "PUT", "/cart/sess-9/items", map[string]any{
		"product_id": 5, "size": "M", "color": "red", "qty": 1,
	}, nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, 1, resp.Lines[0].Qty)
	assert.Equal(t, 1, resp.Lines[1].Qty)

	// qty 0 = remove line itu saja
	rec = doJSON(r, "PUT", "/cart/sess-9/items", map[string]any{
		"product_id": 5, "size": "M", "color": "red", "qty": 0,
	}, nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Len(t, resp.Lines, 1)
	assert.Equal(t, "L", resp.Lines[0].Size)

	// remove by product id buang semua varian
	rec = doJSON(r, "DELETE", "/cart/sess-9/items/5", nil, nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, 0, resp.TotalCents)
	assert.Equal(t, 0, resp.ItemCount)
}

func newTestAdminHandler(svc OrderService, secret string) *chi.Mux {
	h := &AdminHandler{Service: svc, Redis: redisx.New("127.0.0.1:1"), Secret: secret}
	r := NewRouter()
	h.Register(r)
	return r
}

func TestAdminHandlers(t *testing.T) {
	shipped := &orders.Order{ID: "ord-1", UserID: 7, Status: orders.StatusShipped}

	t.Run("secret_required", func(t *testing.T) {
		r := newTestAdminHandler(&stubService{}, "topsecret")
		rec := doJSON(r, "PUT", "/admin/orders/ord-1/status", map[string]string{"status": "shipped"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("set_status_ok", func(t *testing.T) {
		svc := &stubService{
			setStatusFunc: func(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error) {
				assert.Equal(t, orders.StatusShipped, status)
				return shipped, nil
			},
		}
		r := newTestAdminHandler(svc, "topsecret")
		rec := doJSON(r, "PUT", "/admin/orders/ord-1/status",
			map[string]string{"status": "shipped"},
			map[string]string{"X-Admin-Secret": "topsecret"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"shipped"`)
	})

	t.Run("set_status_invalid_enum", func(t *testing.T) {
		svc := &stubService{
			setStatusFunc: func(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error) {
				return nil, orders.ErrInvalidStatus
			},
		}
		r := newTestAdminHandler(svc, "")
		rec := doJSON(r, "PUT", "/admin/orders/ord-1/status", map[string]string{"status": "teleported"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("set_tracking_ok", func(t *testing.T) {
		svc := &stubService{
			setTrackingFunc: func(ctx context.Context, orderID, tracking string) (*orders.Order, error) {
				assert.Equal(t, "AWB123", tracking)
				return shipped, nil
			},
		}
		r := newTestAdminHandler(svc, "")
		rec := doJSON(r, "PUT", "/admin/orders/ord-1/tracking", map[string]string{"tracking_number": "AWB123"}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("process_refund_gating", func(t *testing.T) {
		svc := &stubService{
			processRefundFunc: func(ctx context.Context, orderID string) error {
				return orders.ErrNotRefundRequested
			},
		}
		r := newTestAdminHandler(svc, "")
		rec := doJSON(r, "POST", "/admin/orders/ord-1/process-refund", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "refund requested")
	})

	t.Run("process_refund_ok", func(t *testing.T) {
		svc := &stubService{
			processRefundFunc: func(ctx context.Context, orderID string) error { return nil },
		}
		r := newTestAdminHandler(svc, "")
		rec := doJSON(r, "POST", "/admin/orders/ord-1/process-refund", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
