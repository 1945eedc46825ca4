// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

type PlanType string

const (
	FreePlan      PlanType = "FREE"
	PerFormPlan   PlanType = "PER_FORM"
	DailyPlan     PlanType = "DAILY"
	WeeklyPlan    PlanType = "WEEKLY"
	MonthlyPlan   PlanType = "MONTHLY"
	QuarterlyPlan PlanType = "QUARTERLY"
	YearlyPlan    PlanType = "YEARLY"
	// DefaultPlan marks accounts whose last renewal used a plan name the
	// quota table does not recognize.
	DefaultPlan PlanType = "DEFAULT"
)

// Plan is the display catalog served to clients. The entitlement tables the
// verification flow uses are compiled into the billing package; this table only
// drives the pricing page.
type Plan struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:50;not null;uniqueIndex"`
	Price          uint   `gorm:"not null;default:0"`
	Currency       string `gorm:"size:10;not null;default:'INR'"`
	FormLimit      uint   `gorm:"not null;default:0"`
	DurationInDays uint   `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func init() {
	AllModels = append(AllModels, &Plan{})
}
