package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payment"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
)

// OrderService: surface yang dipakai handler; *orders.Service memenuhinya.
type OrderService interface {
	Checkout(ctx context.Context, in orders.CheckoutInput) (*orders.Order, error)
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]orders.Order, error)
	RequestRefund(ctx context.Context, orderID string, userID int64, reason string) error
	AdminSetStatus(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error)
	AdminSetTracking(ctx context.Context, orderID, trackingNumber string) (*orders.Order, error)
	ProcessRefund(ctx context.Context, orderID string) error
}

type OrdersHandler struct {
	Service OrderService
	Payment *payment.Client
	Carts   cart.Storage
	Redis   *redis.Client
	// Kosong = callback signature tidak diverifikasi (perilaku flow lama).
	WebhookSecret string
}

type IntentReq struct {
	AmountCents int    `json:"amount_cents"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

type CheckoutReq struct {
	UserID        int64                 `json:"user_id"`
	SessionID     string                `json:"session_id"`
	Items         []orders.CheckoutItem `json:"items"`
	TotalCents    int                   `json:"total_cents"`
	PaymentMethod string                `json:"payment_method"`
	payment.Callback
}

type RefundReq struct {
	Reason string `json:"reason"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/payment/intent", h.createIntent)
		r.Post("/checkout", h.checkout)
		r.Get("/orders/{id}", h.getOrder)
		r.Get("/orders/{id}/status", h.getOrderStatus)
		r.Post("/orders/{id}/refund-request", h.requestRefund)
		r.Get("/users/{userID}/orders", h.listOrders)

		r.Get("/cart/{session}", h.getCart)
		r.Post("/cart/{session}/items", h.addCartItem)
		r.Put("/cart/{session}/items", h.updateCartQty)
		r.Delete("/cart/{session}/items/{productID}", h.removeCartItem)
		r.Delete("/cart/{session}", h.clearCart)
	})
}

// createIntent: provider-side order sebelum authorization UI dibuka.
// Gagal di sini -> checkout belum mulai, buyer disuruh coba lagi.
func (h *OrdersHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req IntentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.AmountCents <= 0 {
		writeErr(w, http.StatusBadRequest, "amount is required")
		return
	}
	in, err := h.Payment.CreateIntent(r.Context(), req.AmountCents, req.Currency, req.Receipt)
	if err != nil {
		writeErr(w, http.StatusBadGateway, "payment failed, try again")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == 0 || len(req.Items) == 0 {
		writeErr(w, http.StatusBadRequest, "missing fields")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = orders.MethodGateway
	}

	if req.PaymentMethod == orders.MethodGateway && h.WebhookSecret != "" {
		if !payment.VerifySignature(h.WebhookSecret, req.Callback) {
			writeErr(w, http.StatusBadRequest, "invalid payment signature")
			return
		}
	}

	o, err := h.Service.Checkout(r.Context(), orders.CheckoutInput{
		UserID:     req.UserID,
		Items:      req.Items,
		TotalCents: req.TotalCents,
		Method:     req.PaymentMethod,
		Ref: orders.GatewayRef{
			OrderID:   req.GatewayOrderID,
			PaymentID: req.GatewayPaymentID,
			Signature: req.GatewaySignature,
		},
	})
	if err != nil {
		if errors.Is(err, orders.ErrStaleCart) {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	// cart session bersih + cache status awal; dua-duanya best-effort
	if req.SessionID != "" {
		if err := h.Carts.Clear(r.Context(), req.SessionID); err != nil {
			log.Printf("clear cart session=%s: %v", req.SessionID, err)
		}
	}
	h.cacheStatus(r.Context(), o)

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus: cache dulu, fallback DB (lalu isi cache lagi).
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	h.cacheStatus(r.Context(), o)
	writeJSON(w, http.StatusOK, statusBody(o))
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user id")
		return
	}
	list, err := h.Service.ListOrders(r.Context(), userID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// requestRefund: identitas buyer diasumsikan sudah diverifikasi layer luar;
// di sini tinggal dibawa lewat header.
func (h *OrdersHandler) requestRefund(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID == 0 {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req RefundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	err = h.Service.RequestRefund(r.Context(), chi.URLParam(r, "id"), userID, req.Reason)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, orders.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	case errors.Is(err, orders.ErrEmptyReason), errors.Is(err, orders.ErrNotDelivered):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "failed to request refund")
	}
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	if o == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(statusBody(o))
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func statusBody(o *orders.Order) map[string]any {
	body := map[string]any{"status": o.Status}
	if o.TrackingNumber != "" {
		body["tracking_number"] = o.TrackingNumber
	}
	return body
}

// ---- cart session endpoints ----

type AddItemReq struct {
	Product cart.Product `json:"product"`
	Qty     int          `json:"qty"`
	Size    string       `json:"size"`
	Color   string       `json:"color"`
}

type UpdateQtyReq struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Qty       int    `json:"qty"`
}

type CartResp struct {
	Lines      []cart.Line `json:"lines"`
	TotalCents int         `json:"total_cents"`
	ItemCount  int         `json:"item_count"`
}

func cartResp(c *cart.Cart) CartResp {
	return CartResp{Lines: c.Lines, TotalCents: c.TotalCents(), ItemCount: c.ItemCount()}
}

func (h *OrdersHandler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Load(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cartResp(c))
}

func (h *OrdersHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Product.ID == 0 || req.Qty <= 0 {
		writeErr(w, http.StatusBadRequest, "missing fields")
		return
	}
	h.mutateCart(w, r, func(c *cart.Cart) {
		c.Add(req.Product, req.Qty, req.Size, req.Color)
	})
}

func (h *OrdersHandler) updateCartQty(w http.ResponseWriter, r *http.Request) {
	var req UpdateQtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == 0 {
		writeErr(w, http.StatusBadRequest, "missing fields")
		return
	}
	h.mutateCart(w, r, func(c *cart.Cart) {
		c.UpdateQty(cart.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}, req.Qty)
	})
}

func (h *OrdersHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	h.mutateCart(w, r, func(c *cart.Cart) {
		c.Remove(productID)
	})
}

func (h *OrdersHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), chi.URLParam(r, "session")); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cartResp(&cart.Cart{}))
}

// mutateCart: load -> mutate -> persist seluruh line list (pola yang sama
// dengan localStorage di web lama).
func (h *OrdersHandler) mutateCart(w http.ResponseWriter, r *http.Request, fn func(*cart.Cart)) {
	session := chi.URLParam(r, "session")
	c, err := h.Carts.Load(r.Context(), session)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	fn(c)
	if err := h.Carts.Save(r.Context(), session, c); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cartResp(c))
}
