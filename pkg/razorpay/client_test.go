package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/orchardlabs/storefront-backend/pkg/config"
)

func testConfig() config.RazorpayConfig {
	return config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "super-secret",
		WebhookSecret: "hook-secret",
		Currency:      "INR",
		Timeout:       5 * time.Second,
	}
}

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewWithKeysRequiresPair(t *testing.T) {
	cfg := testConfig()

	if _, err := NewWithKeys("", "secret", cfg); err == nil {
		t.Fatal("expected error for missing key id")
	}
	if _, err := NewWithKeys("key", "  ", cfg); err == nil {
		t.Fatal("expected error for missing secret")
	}
	c, err := NewWithKeys("key", "secret", cfg)
	if err != nil {
		t.Fatalf("NewWithKeys: %v", err)
	}
	if c.KeyID() != "key" {
		t.Fatalf("expected key id 'key', got %q", c.KeyID())
	}
	if c.Currency() != "INR" {
		t.Fatalf("expected currency INR, got %q", c.Currency())
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	client, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	orderID := "order_abc123"
	paymentID := "pay_xyz789"
	valid := sign(orderID+"|"+paymentID, "super-secret")

	if !client.VerifyPaymentSignature(orderID, paymentID, valid) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifyPaymentSignature(orderID, paymentID, sign(orderID+"|"+paymentID, "wrong-secret")) {
		t.Fatal("expected signature from wrong secret to fail")
	}
	if client.VerifyPaymentSignature(orderID, "pay_other", valid) {
		t.Fatal("expected signature over different payload to fail")
	}
	if client.VerifyPaymentSignature(orderID, paymentID, "") {
		t.Fatal("expected empty signature to fail")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte(`{"event":"payment.captured"}`)
	valid := sign(string(body), "hook-secret")

	if !client.VerifyWebhookSignature(body, valid) {
		t.Fatal("expected valid webhook signature to verify")
	}
	if client.VerifyWebhookSignature([]byte(`{"event":"payment.failed"}`), valid) {
		t.Fatal("expected tampered body to fail verification")
	}
}

func TestRemoteOrderFromBody(t *testing.T) {
	order, err := remoteOrderFromBody(map[string]interface{}{
		"id":       "order_123",
		"amount":   float64(250000),
		"currency": "INR",
	})
	if err != nil {
		t.Fatalf("remoteOrderFromBody: %v", err)
	}
	if order.ID != "order_123" {
		t.Fatalf("expected id order_123, got %q", order.ID)
	}
	if order.AmountMinor != 250000 {
		t.Fatalf("expected amount 250000, got %d", order.AmountMinor)
	}

	if _, err := remoteOrderFromBody(map[string]interface{}{"amount": float64(100)}); err == nil {
		t.Fatal("expected error for missing id")
	}
}
