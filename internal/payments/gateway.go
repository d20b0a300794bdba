package payments

import (
	"github.com/orchardlabs/storefront-backend/internal/orders"
	"github.com/orchardlabs/storefront-backend/pkg/config"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
)

// Resolver picks the gateway account for a store: the store's own key pair
// when present, otherwise the platform account. Stores without credentials
// on a platform without credentials cannot take gateway checkouts.
type Resolver struct {
	platform *razorpay.Client
	cfg      config.RazorpayConfig
}

// NewResolver builds the per-store gateway resolver. platform may be nil
// when the platform itself carries no gateway account.
func NewResolver(platform *razorpay.Client, cfg config.RazorpayConfig) *Resolver {
	return &Resolver{platform: platform, cfg: cfg}
}

// ClientForStore returns the full gateway client for the store.
func (r *Resolver) ClientForStore(store *models.Store) (*razorpay.Client, error) {
	if store.HasGatewayCredentials() {
		client, err := razorpay.NewWithKeys(*store.GatewayKeyID, *store.GatewayKeySecret, r.cfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store gateway credentials are invalid")
		}
		return client, nil
	}
	if r.platform != nil {
		return r.platform, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation,
		"gateway checkout unavailable: neither the store nor the platform has gateway credentials")
}

// VerifierForStore returns the signature verifier bound to the credentials
// that minted the store's orders.
func (r *Resolver) VerifierForStore(store *models.Store) (paymentVerifier, error) {
	client, err := r.ClientForStore(store)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ForStore adapts ClientForStore to the order coordinator's surface.
func (r *Resolver) ForStore(store *models.Store) (orders.Gateway, error) {
	client, err := r.ClientForStore(store)
	if err != nil {
		return nil, err
	}
	return client, nil
}
