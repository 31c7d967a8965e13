package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 9000, body["amount"])
		assert.Equal(t, "INR", body["currency"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "order_abc123", "amount": 9000, "currency": "INR",
		})
	}))
	defer srv.Close()

	c := &Client{KeyID: "key_test", KeySecret: "secret_test", BaseURL: srv.URL}
	in, err := c.CreateIntent(context.Background(), 9000, "", "receipt_1")

	assert.NoError(t, err)
	assert.Equal(t, Intent{ID: "order_abc123", AmountCents: 9000, Currency: "INR"}, in)
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	c := &Client{BaseURL: "http://unused"}
	_, err := c.CreateIntent(context.Background(), 0, "INR", "")
	assert.Error(t, err)
}

func TestCreateIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"auth failed"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	_, err := c.CreateIntent(context.Background(), 100, "INR", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestVerifySignature(t *testing.T) {
	secret := "webhook_secret"
	cb := Callback{GatewayOrderID: "order_abc", GatewayPaymentID: "pay_xyz"}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("order_abc|pay_xyz"))
	cb.GatewaySignature = hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(secret, cb))

	cb.GatewaySignature = "deadbeef"
	assert.False(t, VerifySignature(secret, cb))

	assert.False(t, VerifySignature("wrong_secret", cb))
}
