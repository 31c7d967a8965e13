package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client bicara ke satu provider (Razorpay-style API). Amount selalu dalam
// minor unit (paise), jadi tidak ada konversi desimal di sini.
type Client struct {
	KeyID      string
	KeySecret  string
	BaseURL    string
	HTTPClient *http.Client
}

type Intent struct {
	ID          string `json:"id"`
	AmountCents int    `json:"amount"`
	Currency    string `json:"currency"`
}

// Callback: hasil authorization UI provider di sisi client.
// Disimpan verbatim ke row Payment.
type Callback struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// CreateIntent bikin provider-side order sebelum authorization UI dibuka.
// Gagal di sini = seluruh checkout gagal, belum ada yang tertulis.
func (c *Client) CreateIntent(ctx context.Context, amountCents int, currency, receipt string) (Intent, error) {
	if amountCents <= 0 {
		return Intent{}, fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	if currency == "" {
		currency = "INR"
	}
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	}

	body, err := json.Marshal(map[string]any{
		"amount":   amountCents,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("gateway create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Intent{}, fmt.Errorf("gateway create order: status %d: %s", resp.StatusCode, b)
	}

	var in Intent
	if err := json.NewDecoder(resp.Body).Decode(&in); err != nil {
		return Intent{}, fmt.Errorf("gateway create order: decode: %w", err)
	}
	return in, nil
}

// VerifySignature cek HMAC-SHA256 hex atas "orderID|paymentID".
// Flow lama tidak verifikasi sama sekali; dipakai hanya kalau webhook
// secret dikonfigurasi.
func VerifySignature(secret string, cb Callback) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(cb.GatewayOrderID + "|" + cb.GatewayPaymentID))
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(cb.GatewaySignature))
}
