// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"fmt"
	"time"

	"formfill-server/models"
)

// Entitlement is what a paid plan grants: a form quota and an expiry policy.
// DurationDays == 0 means the grant never expires.
type Entitlement struct {
	FormLimit    uint
	DurationDays int
}

// purchaseEntitlements maps one-off purchase plan names to their grants.
// Plan names are matched exactly as the vendor checkout sends them.
var purchaseEntitlements = map[string]Entitlement{
	"Per Form":  {FormLimit: 1, DurationDays: 0},
	"Daily":     {FormLimit: 10, DurationDays: 1},
	"Weekly":    {FormLimit: 100, DurationDays: 7},
	"Monthly":   {FormLimit: 400, DurationDays: 30},
	"Quarterly": {FormLimit: 1500, DurationDays: 90},
	"Yearly":    {FormLimit: 10000, DurationDays: 365},
}

// renewalEntitlements is the quota table for the subscription-renewal flow.
// It deliberately differs from purchaseEntitlements and must stay a separate
// table; unifying the two is a product decision, not an engineering one.
var renewalEntitlements = map[string]Entitlement{
	"Weekly":    {FormLimit: 50, DurationDays: 7},
	"Monthly":   {FormLimit: 100, DurationDays: 30},
	"Quarterly": {FormLimit: 300, DurationDays: 90},
	"Yearly":    {FormLimit: 1200, DurationDays: 365},
}

// defaultRenewalEntitlement backs unrecognized plan names on renewal. The
// renewal flow is lenient where the purchase flow is strict: a renewal for an
// unknown plan still grants the default quota rather than failing the payment.
var defaultRenewalEntitlement = Entitlement{FormLimit: 100, DurationDays: 30}

var planTypes = map[string]models.PlanType{
	"Per Form":  models.PerFormPlan,
	"Daily":     models.DailyPlan,
	"Weekly":    models.WeeklyPlan,
	"Monthly":   models.MonthlyPlan,
	"Quarterly": models.QuarterlyPlan,
	"Yearly":    models.YearlyPlan,
}

func ResolvePurchaseEntitlement(planName string) (Entitlement, error) {
	entitlement, ok := purchaseEntitlements[planName]
	if !ok {
		return Entitlement{}, fmt.Errorf("%w: %q", ErrUnknownPlan, planName)
	}
	return entitlement, nil
}

func ResolveRenewalEntitlement(planName string) Entitlement {
	if entitlement, ok := renewalEntitlements[planName]; ok {
		return entitlement
	}
	return defaultRenewalEntitlement
}

func PlanTypeFor(planName string) models.PlanType {
	if planType, ok := planTypes[planName]; ok {
		return planType
	}
	return models.FreePlan
}

// RenewalPlanTypeFor maps a renewal plan name to the account plan type. An
// unrecognized name is recorded as DEFAULT rather than FREE so the account
// state reflects the lenient fallback, not a downgrade.
func RenewalPlanTypeFor(planName string) models.PlanType {
	if _, ok := renewalEntitlements[planName]; ok {
		return PlanTypeFor(planName)
	}
	return models.DefaultPlan
}

// ExpiryFrom computes the entitlement's expiry relative to now using calendar
// day arithmetic, so 30 and 90 day grants track month boundaries the way the
// vendor's plan periods do. A zero duration means the grant never expires.
func (e Entitlement) ExpiryFrom(now time.Time) *time.Time {
	if e.DurationDays == 0 {
		return nil
	}
	expiry := now.AddDate(0, 0, e.DurationDays)
	return &expiry
}

// PurchasePlanNames lists the one-off plan names in catalog order, used by the
// plan seed migration.
func PurchasePlanNames() []string {
	return []string{"Per Form", "Daily", "Weekly", "Monthly", "Quarterly", "Yearly"}
}

// PurchaseEntitlement returns the one-off grant for a known plan name; it
// panics on unknown names and is only for static catalog data.
func PurchaseEntitlement(planName string) Entitlement {
	entitlement, ok := purchaseEntitlements[planName]
	if !ok {
		panic("billing: no purchase entitlement for plan " + planName)
	}
	return entitlement
}
