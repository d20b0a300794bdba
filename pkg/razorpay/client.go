package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/orchardlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
)

var (
	errKeyPairRequired = errors.New("razorpay key id and secret are required")
)

// Client wraps the Razorpay SDK with centralized credential handling,
// logging and signature verification. A platform-level client is built from
// config; store-scoped clients are built from the store's own key pair.
type Client struct {
	api           *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	logger        *logger.Logger
}

// New initializes the platform Razorpay client and validates the credentials.
func New(cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	c, err := NewWithKeys(cfg.KeyID, cfg.KeySecret, cfg)
	if err != nil {
		return nil, err
	}
	c.webhookSecret = strings.TrimSpace(cfg.WebhookSecret)
	c.logger = logg
	if logg != nil {
		logg.Info(context.Background(), "razorpay client initialized")
	}
	return c, nil
}

// NewWithKeys builds a client from an explicit key pair, inheriting currency
// and timeout from the platform config. Used for stores with their own
// gateway account.
func NewWithKeys(keyID, keySecret string, cfg config.RazorpayConfig) (*Client, error) {
	keyID = strings.TrimSpace(keyID)
	keySecret = strings.TrimSpace(keySecret)
	if keyID == "" || keySecret == "" {
		return nil, errKeyPairRequired
	}

	api := razorpay.NewClient(keyID, keySecret)
	if cfg.Timeout > 0 {
		api.SetTimeout(int16(cfg.Timeout.Seconds()))
	}

	currency := strings.TrimSpace(cfg.Currency)
	if currency == "" {
		currency = "INR"
	}

	return &Client{
		api:       api,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
	}, nil
}

// KeyID returns the public key identifier the storefront embeds in its
// gateway checkout widget.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// WebhookSecret returns the platform webhook signing secret.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// OrderParams describes a remote payment order. AmountMinor is in the
// currency's minor unit (paise for INR).
type OrderParams struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]interface{}
}

// RemoteOrder is the gateway's descriptor for a minted payment order.
type RemoteOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
}

// CreateOrder mints a payment order with the gateway. The SDK call is
// bounded by the configured timeout; failures map to dependency errors.
func (c *Client) CreateOrder(ctx context.Context, params OrderParams) (*RemoteOrder, error) {
	if c == nil || c.api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "razorpay client not configured")
	}
	if params.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay order aborted")
	}

	currency := params.Currency
	if currency == "" {
		currency = c.currency
	}

	data := map[string]interface{}{
		"amount":   params.AmountMinor,
		"currency": currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	if c.logger != nil {
		lctx := c.logger.WithFields(ctx, map[string]any{
			"amount_minor": params.AmountMinor,
			"currency":     currency,
			"receipt":      params.Receipt,
		})
		c.logger.Info(lctx, "razorpay.order.create")
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create razorpay order")
	}

	order, err := remoteOrderFromBody(body)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func remoteOrderFromBody(body map[string]interface{}) (*RemoteOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay order response missing id")
	}

	order := &RemoteOrder{ID: id}
	switch amount := body["amount"].(type) {
	case float64:
		order.AmountMinor = int64(amount)
	case int64:
		order.AmountMinor = amount
	case int:
		order.AmountMinor = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok {
		order.Currency = currency
	}
	return order, nil
}

// VerifyPaymentSignature checks the checkout callback signature: an
// HMAC-SHA256 over "orderID|paymentID" keyed with the account secret. The
// comparison is constant time.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	payload := fmt.Sprintf("%s|%s", orderID, paymentID)
	return verifyHMAC([]byte(payload), c.keySecret, signature)
}

// VerifyWebhookSignature checks the webhook signature header against the
// raw request body using the platform webhook secret.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c == nil {
		return false
	}
	return verifyHMAC(body, c.webhookSecret, signature)
}

func verifyHMAC(payload []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
