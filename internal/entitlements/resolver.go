package entitlements

import (
	"fmt"
	"time"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
)

// CanCreate decides whether the entitlement admits creating one more of the
// given resource. The decision is pure: expiry is evaluated against the
// supplied clock and the record is never mutated on read.
//
// Denials are forbidden errors; -1 quotas always admit.
func CanCreate(resource enums.Resource, record *models.Entitlement, currentCount int, now time.Time) error {
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "no entitlement record; subscribe to a plan first")
	}
	if !record.IsSubscribed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "an active subscription is required")
	}
	if record.SubscriptionEndDate != nil && !now.Before(*record.SubscriptionEndDate) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "subscription has expired; renew to continue")
	}

	quota, err := quotaFor(resource, record)
	if err != nil {
		return err
	}
	if quota == models.UnlimitedQuota {
		return nil
	}
	if currentCount >= quota {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("%s limit reached for plan %s (%d of %d used)", resource, record.PlanName, currentCount, quota))
	}
	return nil
}

// IsActive reports whether the entitlement is subscribed and unexpired at
// the supplied instant.
func IsActive(record *models.Entitlement, now time.Time) bool {
	if record == nil || !record.IsSubscribed {
		return false
	}
	if record.SubscriptionEndDate != nil && !now.Before(*record.SubscriptionEndDate) {
		return false
	}
	return true
}

func quotaFor(resource enums.Resource, record *models.Entitlement) (int, error) {
	switch resource {
	case enums.ResourceStore:
		return record.StoresAllowed, nil
	case enums.ResourceProduct:
		return record.ProductsAllowed, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown entitlement resource %q", resource))
	}
}
