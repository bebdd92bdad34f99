package domain

import (
	"time"
)

// BillingCycle is how often a subscription renews.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Valid reports whether b is a known billing cycle.
func (b BillingCycle) Valid() bool {
	return b == BillingMonthly || b == BillingYearly
}

// SubscriptionStatus is the lifecycle state of a subscription row.
type SubscriptionStatus string

const (
	SubActive    SubscriptionStatus = "active"
	SubPaused    SubscriptionStatus = "paused"
	SubCancelled SubscriptionStatus = "cancelled"
	SubExpired   SubscriptionStatus = "expired"
)

// Subscription is one billing period for a user. A user accumulates
// historical rows; only the most recent one is "current".
type Subscription struct {
	ID                    uint               `gorm:"primaryKey" json:"id"`
	UserID                uint               `gorm:"not null;index" json:"userId"`
	PlanID                string             `gorm:"not null" json:"planId"`
	PlanName              string             `gorm:"not null" json:"planName"`
	PlanPrice             float64            `gorm:"not null" json:"planPrice"`
	BillingCycle          BillingCycle       `gorm:"not null" json:"billingCycle"`
	Status                SubscriptionStatus `gorm:"default:active" json:"status"`
	StartedAt             time.Time          `json:"startedAt"`
	ExpiresAt             time.Time          `gorm:"not null" json:"expiresAt"`
	AutoRenew             bool               `gorm:"default:true" json:"autoRenew"`
	PaymentMethod         string             `json:"paymentMethod,omitempty"`
	GatewaySubscriptionID string             `gorm:"index" json:"-"`
	CreatedAt             time.Time          `json:"createdAt"`
}

// EffectiveStatus derives the status visible to callers: a row still marked
// active whose expiry has passed is reported as expired. Persisting that
// transition is the job of the background sweep, not of reads.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubActive && now.After(s.ExpiresAt) {
		return SubExpired
	}
	return s.Status
}

// DaysUntilExpiry returns whole days remaining, floored at zero.
func (s *Subscription) DaysUntilExpiry(now time.Time) int {
	d := int(s.ExpiresAt.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Plan is a subscription tier. Price is the monthly base; a yearly cycle is
// billed at twelve months with a 20% discount.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	Features     []string `json:"features"`
	TargetRole   Role     `json:"targetUserType"`
	MaxAthletes  int      `json:"maxAthletes,omitempty"` // -1 = unlimited
	MaxClients   int      `json:"maxClients,omitempty"`
}

// YearlyDiscount is applied to twelve monthly payments on a yearly cycle.
const YearlyDiscount = 0.8

// PriceFor returns the charge for one billing period of the plan.
func (p Plan) PriceFor(cycle BillingCycle) float64 {
	if cycle == BillingYearly {
		return p.Price * 12 * YearlyDiscount
	}
	return p.Price
}

// Plans is the static tier catalog.
var Plans = []Plan{
	{
		ID:         "trainer_basic",
		Name:       "Trainer Basic",
		Price:      49.90,
		Currency:   "BRL",
		TargetRole: RoleTrainer,
		Features: []string{
			"Up to 10 athletes",
			"Custom workout templates",
			"Progress tracking",
			"Email support",
		},
		MaxAthletes: 10,
	},
	{
		ID:         "trainer_pro",
		Name:       "Trainer Pro",
		Price:      89.90,
		Currency:   "BRL",
		TargetRole: RoleTrainer,
		Features: []string{
			"Up to 25 athletes",
			"Custom workout templates",
			"Basic nutrition plans",
			"Advanced reports",
			"Priority support",
		},
		MaxAthletes: 25,
	},
	{
		ID:         "trainer_enterprise",
		Name:       "Trainer Enterprise",
		Price:      149.90,
		Currency:   "BRL",
		TargetRole: RoleTrainer,
		Features: []string{
			"Unlimited athletes",
			"Custom workout templates",
			"Full nutrition plans",
			"Advanced reports",
			"API access",
			"24/7 support",
		},
		MaxAthletes: -1,
	},
	{
		ID:         "nutritionist_basic",
		Name:       "Nutritionist Basic",
		Price:      59.90,
		Currency:   "BRL",
		TargetRole: RoleNutritionist,
		Features: []string{
			"Up to 15 clients",
			"Custom nutrition plans",
			"Full food database",
			"Automatic macro totals",
			"Email support",
		},
		MaxClients: 15,
	},
	{
		ID:         "nutritionist_pro",
		Name:       "Nutritionist Pro",
		Price:      99.90,
		Currency:   "BRL",
		TargetRole: RoleNutritionist,
		Features: []string{
			"Up to 40 clients",
			"Custom nutrition plans",
			"Full food database",
			"Automatic macro totals",
			"Nutrition reports",
			"Workout integration",
			"Priority support",
		},
		MaxClients: 40,
	},
}

// PlanByID looks a plan up in the catalog.
func PlanByID(id string) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlansForRole filters the catalog by target role; an empty role returns
// every plan.
func PlansForRole(role Role) []Plan {
	if role == "" {
		return Plans
	}
	out := make([]Plan, 0, len(Plans))
	for _, p := range Plans {
		if p.TargetRole == role {
			out = append(out, p)
		}
	}
	return out
}
