package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
)

type OrderGetter interface {
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
}

// StreamHandler: live status stream (SSE). Desainnya poll-and-forward:
// emit status sekarang, lalu re-read tiap interval dan emit lagi. Client
// tinggal replace nilai terakhir, tidak ada diffing. Status order jarang
// berubah, jadi staleness satu interval itu murah.
type StreamHandler struct {
	Orders       OrderGetter
	PollInterval time.Duration
}

type statusEvent struct {
	Status orders.Status `json:"status"`
}

func (h *StreamHandler) Register(r *chi.Mux) {
	// tanpa timeout middleware: koneksi ini memang long-lived
	r.Get("/orders/{id}/status/stream", h.stream)
}

func (h *StreamHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	orderID := chi.URLParam(r, "id")
	ctx := r.Context()

	// order tidak ada -> tutup stream tanpa event apapun, ticker belum
	// sempat dibuat jadi tidak ada yang bocor
	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sendEvent(w, flusher, statusEvent{Status: o.Status})

	interval := h.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// client disconnect; cleanup via defer
			return
		case <-ticker.C:
			cur, err := h.Orders.GetOrder(ctx, orderID)
			if err != nil {
				// lookup gagal di tengah jalan: skip emit, coba lagi
				// di tick berikutnya (perilaku flow lama)
				continue
			}
			sendEvent(w, flusher, statusEvent{Status: cur.Status})
		}
	}
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, ev statusEvent) {
	b, _ := json.Marshal(ev)
	fmt.Fprintf(w, "data: %s\n\n", b)
	flusher.Flush()
}
