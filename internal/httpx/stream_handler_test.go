package httpx

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
)

type fakeGetter struct {
	statuses []orders.Status // urutan status per panggilan; terakhir diulang
	calls    int
	err      error
}

func (f *fakeGetter) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.calls++
	return &orders.Order{ID: orderID, Status: f.statuses[i]}, nil
}

func streamRequest(t *testing.T, h *StreamHandler, timeout time.Duration) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req := httptest.NewRequest("GET", "/orders/ord-1/status/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func events(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			out = append(out, strings.TrimPrefix(line, "data: "))
		}
	}
	return out
}

func TestStreamEmitsCurrentStatusImmediately(t *testing.T) {
	h := &StreamHandler{
		Orders:       &fakeGetter{statuses: []orders.Status{orders.StatusShipped}},
		PollInterval: time.Hour, // tick pertama tidak akan kejadian
	}
	rec := streamRequest(t, h, 50*time.Millisecond)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	evs := events(rec.Body.String())
	assert.Len(t, evs, 1, "tepat satu event langsung saat subscribe")
	assert.JSONEq(t, `{"status":"shipped"}`, evs[0])
}

func TestStreamMissingOrderClosesWithZeroEvents(t *testing.T) {
	h := &StreamHandler{
		Orders:       &fakeGetter{err: orders.ErrNotFound},
		PollInterval: time.Millisecond,
	}
	rec := streamRequest(t, h, 50*time.Millisecond)

	assert.Empty(t, events(rec.Body.String()))
}

func TestStreamPicksUpStatusChangeWithinOneInterval(t *testing.T) {
	h := &StreamHandler{
		Orders:       &fakeGetter{statuses: []orders.Status{orders.StatusPending, orders.StatusShipped}},
		PollInterval: 5 * time.Millisecond,
	}
	rec := streamRequest(t, h, 60*time.Millisecond)

	evs := events(rec.Body.String())
	assert.GreaterOrEqual(t, len(evs), 2)
	assert.JSONEq(t, `{"status":"pending"}`, evs[0])
	assert.JSONEq(t, `{"status":"shipped"}`, evs[len(evs)-1])
}

func TestStreamStopsOnClientDisconnect(t *testing.T) {
	g := &fakeGetter{statuses: []orders.Status{orders.StatusPending}}
	h := &StreamHandler{Orders: g, PollInterval: 5 * time.Millisecond}

	done := make(chan struct{})
	go func() {
		streamRequest(t, h, 30*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
		// handler balik setelah ctx selesai; ticker ikut berhenti via defer
	case <-time.After(2 * time.Second):
		t.Fatal("stream tidak berhenti setelah disconnect")
	}
}
