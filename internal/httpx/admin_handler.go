package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
)

// AdminHandler: mutasi status/tracking/refund dari back office. Authorization
// sebenarnya urusan layer luar; shared-secret header di sini cuma pagar
// minimum, state machine-nya sendiri percaya caller sudah authorized.
type AdminHandler struct {
	Service OrderService
	Redis   *redis.Client
	Secret  string
}

type SetStatusReq struct {
	Status orders.Status `json:"status"`
}

type SetTrackingReq struct {
	TrackingNumber string `json:"tracking_number"`
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(h.requireSecret)
		r.Put("/admin/orders/{id}/status", h.setStatus)
		r.Put("/admin/orders/{id}/tracking", h.setTracking)
		r.Post("/admin/orders/{id}/process-refund", h.processRefund)
	})
}

func (h *AdminHandler) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Secret != "" && r.Header.Get("X-Admin-Secret") != h.Secret {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Status == "" {
		writeErr(w, http.StatusBadRequest, "status is required")
		return
	}
	o, err := h.Service.AdminSetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	switch {
	case err == nil:
		h.refreshCache(r, o, chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, map[string]any{"order": o})
	case errors.Is(err, orders.ErrInvalidStatus):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	default:
		writeErr(w, http.StatusInternalServerError, "failed to update order status")
	}
}

func (h *AdminHandler) setTracking(w http.ResponseWriter, r *http.Request) {
	var req SetTrackingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.Service.AdminSetTracking(r.Context(), chi.URLParam(r, "id"), req.TrackingNumber)
	switch {
	case err == nil:
		h.refreshCache(r, o, chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, map[string]any{"order": o})
	case errors.Is(err, orders.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	default:
		writeErr(w, http.StatusInternalServerError, "failed to update tracking number")
	}
}

func (h *AdminHandler) processRefund(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	err := h.Service.ProcessRefund(r.Context(), orderID)
	switch {
	case err == nil:
		h.refreshCache(r, nil, orderID)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, orders.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	case errors.Is(err, orders.ErrNotRefundRequested):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "failed to process refund")
	}
}

// refreshCache: update cache kalau order-nya ada di tangan, kalau tidak
// cukup invalidate; reader berikutnya ambil dari DB.
func (h *AdminHandler) refreshCache(r *http.Request, o *orders.Order, orderID string) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if o == nil {
		_ = h.Redis.Del(r.Context(), key).Err()
		return
	}
	b, _ := json.Marshal(statusBody(o))
	_ = h.Redis.Set(r.Context(), key, b, redisx.TTLStatusCache).Err()
}
