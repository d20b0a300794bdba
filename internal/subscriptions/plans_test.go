package subscriptions

import (
	"testing"
	"time"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
)

func TestPlanCatalog(t *testing.T) {
	t.Parallel()

	plans := Plans()
	if len(plans) != 3 {
		t.Fatalf("expected 3 purchasable plans, got %d", len(plans))
	}

	trial, ok := PlanByName(enums.PlanTrial)
	if !ok {
		t.Fatal("Trial plan missing")
	}
	if trial.StoresAllowed != 1 || trial.ProductsAllowed != 10 {
		t.Fatalf("unexpected Trial quotas: %d stores, %d products", trial.StoresAllowed, trial.ProductsAllowed)
	}
	if trial.DurationMonths != 6 {
		t.Fatalf("unexpected Trial duration %d", trial.DurationMonths)
	}
	if got := razorpay.AmountMinor(trial.Price); got != 3000 {
		t.Fatalf("Trial should cost 3000 paise, got %d", got)
	}

	for _, name := range []enums.PlanName{enums.PlanBasic, enums.PlanAdvanced} {
		plan, ok := PlanByName(name)
		if !ok {
			t.Fatalf("%s plan missing", name)
		}
		if plan.StoresAllowed != models.UnlimitedQuota || plan.ProductsAllowed != models.UnlimitedQuota {
			t.Fatalf("%s should be uncapped", name)
		}
		if plan.DurationMonths != 12 {
			t.Fatalf("%s should run 12 months, got %d", name, plan.DurationMonths)
		}
	}

	basic, _ := PlanByName(enums.PlanBasic)
	if got := razorpay.AmountMinor(basic.Price); got != 200000 {
		t.Fatalf("Basic should cost 200000 paise, got %d", got)
	}
	advanced, _ := PlanByName(enums.PlanAdvanced)
	if got := razorpay.AmountMinor(advanced.Price); got != 600000 {
		t.Fatalf("Advanced should cost 600000 paise, got %d", got)
	}
}

func TestPlanByNameRejectsFree(t *testing.T) {
	t.Parallel()

	if _, ok := PlanByName(enums.PlanFree); ok {
		t.Fatal("Free must not be purchasable")
	}
	if _, ok := PlanByName(enums.PlanName("Gold")); ok {
		t.Fatal("unknown plans must not resolve")
	}
}

func TestPeriodEndUsesFixedMonths(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	trial, _ := PlanByName(enums.PlanTrial)
	if got, want := trial.PeriodEnd(start), start.Add(6*30*24*time.Hour); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	basic, _ := PlanByName(enums.PlanBasic)
	if got, want := basic.PeriodEnd(start), start.Add(12*30*24*time.Hour); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPlansReturnsCopy(t *testing.T) {
	t.Parallel()

	plans := Plans()
	plans[0].DurationMonths = 99
	fresh, _ := PlanByName(plans[0].Name)
	if fresh.DurationMonths == 99 {
		t.Fatal("mutating the returned slice must not touch the catalog")
	}
}
