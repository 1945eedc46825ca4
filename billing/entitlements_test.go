// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"errors"
	"testing"
	"time"

	"formfill-server/models"
)

func TestResolvePurchaseEntitlement(t *testing.T) {
	cases := []struct {
		planName     string
		formLimit    uint
		durationDays int
	}{
		{"Per Form", 1, 0},
		{"Daily", 10, 1},
		{"Weekly", 100, 7},
		{"Monthly", 400, 30},
		{"Quarterly", 1500, 90},
		{"Yearly", 10000, 365},
	}

	for _, tc := range cases {
		entitlement, err := ResolvePurchaseEntitlement(tc.planName)
		if err != nil {
			t.Fatalf("ResolvePurchaseEntitlement(%q) returned error: %v", tc.planName, err)
		}
		if entitlement.FormLimit != tc.formLimit {
			t.Errorf("Expected %q form limit %d, got %d", tc.planName, tc.formLimit, entitlement.FormLimit)
		}
		if entitlement.DurationDays != tc.durationDays {
			t.Errorf("Expected %q duration %d days, got %d", tc.planName, tc.durationDays, entitlement.DurationDays)
		}
	}
}

func TestResolvePurchaseEntitlementUnknownPlan(t *testing.T) {
	for _, planName := range []string{"Biweekly", "monthly", "MONTHLY", "", "Monthly "} {
		if _, err := ResolvePurchaseEntitlement(planName); !errors.Is(err, ErrUnknownPlan) {
			t.Errorf("Expected ErrUnknownPlan for %q, got %v", planName, err)
		}
	}
}

func TestResolveRenewalEntitlement(t *testing.T) {
	cases := []struct {
		planName  string
		formLimit uint
	}{
		{"Weekly", 50},
		{"Monthly", 100},
		{"Quarterly", 300},
		{"Yearly", 1200},
	}

	for _, tc := range cases {
		entitlement := ResolveRenewalEntitlement(tc.planName)
		if entitlement.FormLimit != tc.formLimit {
			t.Errorf("Expected %q renewal form limit %d, got %d", tc.planName, tc.formLimit, entitlement.FormLimit)
		}
	}
}

func TestResolveRenewalEntitlementFallsBackToDefault(t *testing.T) {
	// Renewals are lenient: an unrecognized plan still gets the default
	// quota rather than failing the payment.
	for _, planName := range []string{"Biweekly", "Per Form", "Daily", ""} {
		entitlement := ResolveRenewalEntitlement(planName)
		if entitlement != defaultRenewalEntitlement {
			t.Errorf("Expected default renewal entitlement for %q, got %+v", planName, entitlement)
		}
	}
}

func TestRenewalPlanTypeFor(t *testing.T) {
	cases := []struct {
		planName string
		planType models.PlanType
	}{
		{"Weekly", models.WeeklyPlan},
		{"Monthly", models.MonthlyPlan},
		{"Quarterly", models.QuarterlyPlan},
		{"Yearly", models.YearlyPlan},
		// Unrecognized names take the default quota and must be recorded as
		// DEFAULT, not FREE.
		{"Biweekly", models.DefaultPlan},
		{"Per Form", models.DefaultPlan},
		{"", models.DefaultPlan},
	}

	for _, tc := range cases {
		if planType := RenewalPlanTypeFor(tc.planName); planType != tc.planType {
			t.Errorf("Expected %q renewal plan type %s, got %s", tc.planName, tc.planType, planType)
		}
	}
}

func TestRenewalQuotasDifferFromPurchaseQuotas(t *testing.T) {
	// The two tables intentionally grant different quotas for the same
	// plan name; a change that unifies them silently is a regression.
	for _, planName := range []string{"Weekly", "Monthly", "Quarterly", "Yearly"} {
		purchase, err := ResolvePurchaseEntitlement(planName)
		if err != nil {
			t.Fatalf("ResolvePurchaseEntitlement(%q) returned error: %v", planName, err)
		}
		renewal := ResolveRenewalEntitlement(planName)
		if purchase.FormLimit == renewal.FormLimit {
			t.Errorf("Expected %q purchase and renewal quotas to differ, both are %d", planName, purchase.FormLimit)
		}
	}
}

func TestExpiryFrom(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	entitlement := Entitlement{FormLimit: 400, DurationDays: 30}
	expiry := entitlement.ExpiryFrom(now)
	if expiry == nil {
		t.Fatal("Expected non-nil expiry for 30 day entitlement")
	}
	expected := time.Date(2025, 2, 14, 10, 30, 0, 0, time.UTC)
	if !expiry.Equal(expected) {
		t.Errorf("Expected expiry %v, got %v", expected, expiry)
	}
}

func TestExpiryFromNeverExpires(t *testing.T) {
	entitlement := Entitlement{FormLimit: 1, DurationDays: 0}
	if expiry := entitlement.ExpiryFrom(time.Now()); expiry != nil {
		t.Errorf("Expected nil expiry for zero duration entitlement, got %v", expiry)
	}
}

func TestExpiryFromUsesCalendarDays(t *testing.T) {
	// Calendar arithmetic must survive a DST transition without drifting
	// by an hour the way 30*24h would.
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, loc)

	entitlement := Entitlement{FormLimit: 400, DurationDays: 30}
	expiry := entitlement.ExpiryFrom(now)
	if expiry == nil {
		t.Fatal("Expected non-nil expiry")
	}
	if expiry.Hour() != 12 {
		t.Errorf("Expected expiry to keep wall clock hour 12, got %d", expiry.Hour())
	}
	if expiry.Day() != 14 || expiry.Month() != time.April {
		t.Errorf("Expected expiry on April 14, got %v", expiry)
	}
}
