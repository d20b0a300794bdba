package subscriptions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
)

// billingMonth approximates a calendar month for subscription windows.
// Renewal prompts absorb the drift, so the cheap fixed period is fine here.
const billingMonth = 30 * 24 * time.Hour

// Plan is a purchasable subscription tier. Prices are in rupees; quotas use
// models.UnlimitedQuota for uncapped resources.
type Plan struct {
	Name            enums.PlanName  `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DurationMonths  int             `json:"duration_months"`
	StoresAllowed   int             `json:"stores_allowed"`
	ProductsAllowed int             `json:"products_allowed"`
}

var catalog = []Plan{
	{
		Name:            enums.PlanTrial,
		Price:           decimal.NewFromInt(30),
		DurationMonths:  6,
		StoresAllowed:   1,
		ProductsAllowed: 10,
	},
	{
		Name:            enums.PlanBasic,
		Price:           decimal.NewFromInt(2000),
		DurationMonths:  12,
		StoresAllowed:   models.UnlimitedQuota,
		ProductsAllowed: models.UnlimitedQuota,
	},
	{
		Name:            enums.PlanAdvanced,
		Price:           decimal.NewFromInt(6000),
		DurationMonths:  12,
		StoresAllowed:   models.UnlimitedQuota,
		ProductsAllowed: models.UnlimitedQuota,
	},
}

// Plans returns the purchasable catalog. Free is excluded: it is the signup
// default, never bought.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByName looks up a purchasable plan, case-sensitively.
func PlanByName(name enums.PlanName) (Plan, bool) {
	for _, p := range catalog {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}

// PeriodEnd computes the subscription window end for a plan purchased at
// start.
func (p Plan) PeriodEnd(start time.Time) time.Time {
	return start.Add(time.Duration(p.DurationMonths) * billingMonth)
}
