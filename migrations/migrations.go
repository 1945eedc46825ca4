// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"

	"formfill-server/billing"
	"formfill-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_seed_plan_catalog",
			Migrate: func(tx *gorm.DB) error {
				// Prices are in paise; the entitlement tables in the billing
				// package stay the source of truth for quotas and durations.
				prices := map[string]uint{
					"Per Form":  900,
					"Daily":     4900,
					"Weekly":    19900,
					"Monthly":   49900,
					"Quarterly": 119900,
					"Yearly":    349900,
				}

				for _, name := range billing.PurchasePlanNames() {
					entitlement := billing.PurchaseEntitlement(name)
					plan := models.Plan{
						Name:           name,
						Price:          prices[name],
						Currency:       "INR",
						FormLimit:      entitlement.FormLimit,
						DurationInDays: uint(entitlement.DurationDays),
					}
					if err := tx.Where("name = ?", name).FirstOrCreate(&plan).Error; err != nil {
						return fmt.Errorf("failed to seed plan %s: %w", name, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Unscoped().Where("1 = 1").Delete(&models.Plan{}).Error
			},
		},
		{
			ID: "002_backfill_free_accounts",
			Migrate: func(tx *gorm.DB) error {
				// Accounts created before the entitlement columns existed get
				// the signup trial quota.
				return tx.Model(&models.User{}).
					Where("plan_type = ? AND form_limit = 0", models.FreePlan).
					Update("form_limit", models.FreeFormLimit).Error
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	}
}
