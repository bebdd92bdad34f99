package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalog(t *testing.T) {
	t.Parallel()

	for _, p := range Plans {
		assert.NotEmpty(t, p.ID)
		assert.Greater(t, p.Price, 0.0)
		assert.Contains(t, []Role{RoleTrainer, RoleNutritionist}, p.TargetRole)
	}

	plan, ok := PlanByID("trainer_enterprise")
	require.True(t, ok)
	assert.Equal(t, -1, plan.MaxAthletes)

	_, ok = PlanByID("athlete_gold")
	assert.False(t, ok)

	assert.Len(t, PlansForRole(RoleTrainer), 3)
	assert.Len(t, PlansForRole(RoleNutritionist), 2)
	assert.Len(t, PlansForRole(""), len(Plans))
}

func TestPlanPriceFor(t *testing.T) {
	t.Parallel()

	plan, ok := PlanByID("trainer_basic")
	require.True(t, ok)

	assert.Equal(t, plan.Price, plan.PriceFor(BillingMonthly))
	assert.InDelta(t, plan.Price*12*YearlyDiscount, plan.PriceFor(BillingYearly), 0.001)
}

func TestBillingCycleValid(t *testing.T) {
	t.Parallel()
	assert.True(t, BillingMonthly.Valid())
	assert.True(t, BillingYearly.Valid())
	assert.False(t, BillingCycle("weekly").Valid())
}

func TestSubscriptionEffectiveStatus(t *testing.T) {
	t.Parallel()
	now := time.Now()

	active := Subscription{Status: SubActive, ExpiresAt: now.Add(72 * time.Hour)}
	assert.Equal(t, SubActive, active.EffectiveStatus(now))
	assert.Equal(t, 3, active.DaysUntilExpiry(now))

	overdue := Subscription{Status: SubActive, ExpiresAt: now.Add(-time.Hour)}
	assert.Equal(t, SubExpired, overdue.EffectiveStatus(now))
	assert.Equal(t, 0, overdue.DaysUntilExpiry(now))

	// Cancelled rows keep their stored status even past expiry.
	cancelled := Subscription{Status: SubCancelled, ExpiresAt: now.Add(-time.Hour)}
	assert.Equal(t, SubCancelled, cancelled.EffectiveStatus(now))
}
