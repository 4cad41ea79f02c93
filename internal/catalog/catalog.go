package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
)

// CreditPackage is a purchasable bundle of credits. DiscountPercent is a
// marketing label shown next to the price; the credits granted come only from
// CreditsGranted and the buyer's subscription.
type CreditPackage struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	CreditsGranted  int64           `json:"credits_granted"`
	PriceCHF        decimal.Decimal `json:"price_chf"`
	DiscountPercent *int            `json:"discount_percent,omitempty"`
	PremiumOnly     bool            `json:"premium_only"`
}

// Plan is a premium subscription a business can take out.
type Plan struct {
	ID                      string             `json:"id"`
	Name                    string             `json:"name"`
	BillingCycle            enums.BillingCycle `json:"billing_cycle"`
	PriceCHF                decimal.Decimal    `json:"price_chf"`
	PurchaseDiscountPercent int                `json:"purchase_discount_percent"`
}

// Catalog is the read-only list of packages and plans.
type Catalog struct {
	packages []CreditPackage
	plans    []Plan
}

func New(packages []CreditPackage, plans []Plan) *Catalog {
	return &Catalog{
		packages: append([]CreditPackage(nil), packages...),
		plans:    append([]Plan(nil), plans...),
	}
}

// Default returns the packages and plans sold on the platform.
func Default() *Catalog {
	return New(defaultPackages(), defaultPlans())
}

func percent(v int) *int { return &v }

func defaultPackages() []CreditPackage {
	return []CreditPackage{
		{ID: "starter_10", Name: "Starter", CreditsGranted: 10, PriceCHF: decimal.RequireFromString("49.00")},
		{ID: "standard_25", Name: "Standard", CreditsGranted: 25, PriceCHF: decimal.RequireFromString("115.00"), DiscountPercent: percent(8)},
		{ID: "pro_50", Name: "Pro", CreditsGranted: 50, PriceCHF: decimal.RequireFromString("215.00"), DiscountPercent: percent(12)},
		{ID: "business_100", Name: "Business", CreditsGranted: 100, PriceCHF: decimal.RequireFromString("390.00"), DiscountPercent: percent(20), PremiumOnly: true},
	}
}

func defaultPlans() []Plan {
	return []Plan{
		{ID: "premium_monthly", Name: "Premium (monthly)", BillingCycle: enums.BillingCycleMonthly, PriceCHF: decimal.RequireFromString("29.00"), PurchaseDiscountPercent: 15},
		{ID: "premium_yearly", Name: "Premium (yearly)", BillingCycle: enums.BillingCycleYearly, PriceCHF: decimal.RequireFromString("290.00"), PurchaseDiscountPercent: 20},
	}
}

// Packages returns the packages visible to a business. Premium-only packages
// are hidden unless premium is true.
func (c *Catalog) Packages(premium bool) []CreditPackage {
	out := make([]CreditPackage, 0, len(c.packages))
	for _, pkg := range c.packages {
		if pkg.PremiumOnly && !premium {
			continue
		}
		out = append(out, pkg)
	}
	return out
}

func (c *Catalog) Package(id string) (CreditPackage, bool) {
	for _, pkg := range c.packages {
		if pkg.ID == id {
			return pkg, true
		}
	}
	return CreditPackage{}, false
}

func (c *Catalog) Plans() []Plan {
	return append([]Plan(nil), c.plans...)
}

func (c *Catalog) Plan(id string) (Plan, bool) {
	for _, plan := range c.plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}
